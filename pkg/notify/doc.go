// Package notify publishes host notifications such as "saved" or
// "access denied" messages.
//
// The router itself never shows anything when a navigation is denied; it
// reports a Redirect and lets the host react. A typical reaction is to
// tell the user and send them somewhere they may go:
//
//	n := notify.New()
//	r := area.New()
//	r.OnRedirect(notify.RedirectTo(ctx, r, n, "Please sign in first", area.Request{Route: "login"}))
//
// Notifications are delivered on Events. Rendering them (toasts, banners,
// a devtools stream) is up to the subscriber.
package notify
