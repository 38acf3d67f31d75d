package notify

import (
	"context"
	"fmt"

	"github.com/vango-dev/area/pkg/area"
)

// Pusher navigates areas. *area.Router implements it.
type Pusher interface {
	Push(ctx context.Context, req area.Request) (area.Entry, error)
}

// RedirectTo returns a redirect handler that publishes an error
// notification and navigates to fallback. An empty fallback area means
// the area of the denied navigation. An empty message is replaced by a
// generic one naming the route.
//
// A denied navigation to the fallback itself is only notified, so a
// guarded fallback cannot loop.
func RedirectTo(ctx context.Context, p Pusher, n *Notifier, message string, fallback area.Request) func(area.Redirect) {
	return func(rd area.Redirect) {
		msg := message
		if msg == "" {
			msg = fmt.Sprintf("You cannot open %q", rd.Route)
		}
		n.Publish(Notification{Level: LevelError, Message: msg, Area: rd.Area})

		req := fallback
		if req.Area == "" {
			req.Area = rd.Area
		}
		if req.Area == rd.Area && target(req) == rd.Route {
			return
		}
		if _, err := p.Push(ctx, req); err != nil {
			n.logger.Warn("redirect failed", "area", req.Area, "route", target(req), "error", err)
		}
	}
}

func target(req area.Request) string {
	if req.Route != "" {
		return req.Route
	}
	return req.Component.Name
}
