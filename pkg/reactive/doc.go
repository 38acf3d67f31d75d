// Package reactive provides the push-based streams the area router is built on.
//
// The router publishes its state as observables: one stream of snapshots for
// every area, per-area views derived from it, and a stream of denied
// navigations. Guards consume observables of booleans.
//
// # Core Types
//
// Subject[T] is a hot multicast stream without replay:
//
//	s := reactive.NewSubject[string]()
//	sub := s.Subscribe(reactive.Func(func(v string) { fmt.Println(v) }))
//	s.Next("hello")
//	sub.Unsubscribe()
//
// BehaviorSubject[T] remembers its latest value and replays it to new
// subscribers:
//
//	auth := reactive.NewBehaviorSubject(false)
//	auth.Next(true)
//	auth.Value() // true
//
// Operators (Map, Filter, DistinctUntilChanged) derive new observables, and
// First waits for the first value of any observable.
//
// # Delivery
//
// Each subject delivers through a queue drained by whichever goroutine is
// emitting. Values reach subscribers in emission order, and a subscriber may
// emit into the same subject from its callback without deadlocking: the
// nested value is delivered once the current callback returns. When another
// goroutine is already draining, Next returns before delivery completes.
//
// Subscribing is never deferred this way. A BehaviorSubject hands its latest
// value to a new subscriber before Subscribe returns, even from inside one
// of its own callbacks, so First on it never waits for a later emission.
//
// # Disconnecting
//
// SubscribeContext ties a subscription to a context; cancelling the context
// unsubscribes. Components use their connection context as the "disconnecting"
// signal.
package reactive
