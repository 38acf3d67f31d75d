// Package component describes what an area mounts.
//
// A Descriptor is a tagged union over the five shapes of renderable thing
// the router accepts:
//
//	component.Tag("public-page")              // resolved through a Registry at mount time
//	component.Ctor("users-page", NewUsers)    // instantiated directly
//	component.Instance(el)                    // reused as-is
//	component.Inline(tmpl)                    // rendered inline
//	component.FromLazy(loader)                // loaded on first use, cached afterwards
//
// Mount is the single dispatch point that turns any descriptor into an
// Element. Prepare performs the asynchronous part (lazy loading) ahead of
// time so that mounting after a successful navigation never blocks.
package component
