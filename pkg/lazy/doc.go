// Package lazy defers loading a component until it is first needed.
//
// A Loader wraps a load function and memoizes its result:
//
//	users := lazy.Component(func(ctx context.Context) (component.Constructor, error) {
//	    return fetchUsersModule(ctx)
//	})
//
//	users.Preload()                       // warm up without navigating
//	ctor, err := users.Load(ctx)          // waits for the same attempt
//	ctor, ok := users.Get()               // synchronous once loaded
//
// The load function runs at most once while an attempt is in flight or has
// succeeded; concurrent callers share the attempt. A failed attempt is
// reported to every waiter and then forgotten, so the next Load retries.
//
// Attempts run on their own context: a caller that stops waiting does not
// cancel the load for the others. Use WithTimeout to bound an attempt.
package lazy
