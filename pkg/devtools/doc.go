// Package devtools serves an HTTP inspector for a running area router.
//
// The handler exposes the state of every area, lets a developer push, pop
// and forward areas by hand, lists the open dialogs and streams router
// activity over a WebSocket:
//
//	GET  /areas                  snapshot of all areas
//	GET  /areas/{area}           one area with its state and routes
//	POST /areas/{area}/push      {"route": "...", "tag": "...", "params": {...}}
//	POST /areas/{area}/pop
//	POST /areas/{area}/forward
//	GET  /dialogs                open dialogs, bottom to top
//	POST /dialogs/dismiss        dismiss the top dialog
//	POST /dialogs/{id}/resolve   {"result": true}
//	GET  /flags                  guard flags and their values
//	PUT  /flags/{name}           {"value": true}
//	GET  /metrics                Prometheus metrics
//	GET  /ws                     snapshot, redirect, dialogs and notification messages
//
// Mount it next to the application:
//
//	tools := devtools.New(r, devtools.WithDialogs(dialogs), devtools.WithNotifier(n))
//	stop := tools.Start()
//	defer stop()
//	mux.Mount("/_area", tools.Handler())
//
// The WebSocket only accepts same-origin upgrades (see SameOriginCheck).
// Each client has its own send queue, so a slow client is dropped instead
// of holding up router delivery.
package devtools
