// Package area routes named viewports ("areas") independently of each other.
//
// An area hosts exactly one active component at a time. Components are
// chosen either through the area's route table or mounted directly:
//
//	r := area.New()
//	r.Define("main",
//	    route.Definition{When: "public-page", Component: component.Ctor("public-page", NewPublicPage)},
//	    route.Definition{When: "protected-page", Component: component.Tag("protected-page"), Guard: loggedIn},
//	)
//
//	// Table-driven: the tag name matches a When key.
//	r.Push(ctx, area.Request{Area: "main", Component: component.Tag("public-page")})
//
//	// Direct: any other descriptor is mounted as is.
//	r.Push(ctx, area.Request{Area: "overlays", Component: component.Instance(panel)})
//
// Every navigation runs the same pipeline: resolve the target, evaluate
// its guard, load lazy components, then commit. A denied guard leaves the
// area untouched and publishes a Redirect. A failed lazy load leaves the
// area at its previous entry. When two navigations of one area overlap,
// the one issued last wins and the older returns ErrSuperseded.
//
// # Observing
//
// Current emits a Snapshot of all areas after every commit. On(area) is a
// per-area view that emits only when that area's entry changes, and nil
// when the area becomes idle:
//
//	sub := r.On("main").Subscribe(reactive.Func(func(e *area.Entry) {
//	    if e != nil {
//	        mount(e.Component, e.Params)
//	    }
//	}))
//	defer sub.Unsubscribe()
//
// # History
//
// Each area keeps its own back/forward stack. Pop restores the previous
// entry and runs its guard again; Forward re-applies an entry left by Pop.
package area
