package devtools

import (
	"time"

	"github.com/vango-dev/area/pkg/area"
	"github.com/vango-dev/area/pkg/dialog"
	"github.com/vango-dev/area/pkg/notify"
)

// EntryView is the JSON form of an area entry.
type EntryView struct {
	Area      string            `json:"area"`
	Route     string            `json:"route,omitempty"`
	Pattern   string            `json:"pattern,omitempty"`
	Rest      string            `json:"rest,omitempty"`
	Component string            `json:"component"`
	Kind      string            `json:"kind"`
	Params    map[string]string `json:"params,omitempty"`
	Seq       uint64            `json:"seq"`
}

func entryView(e area.Entry) EntryView {
	return EntryView{
		Area:      e.Area,
		Route:     e.Route,
		Pattern:   e.Pattern,
		Rest:      e.Rest,
		Component: e.Component.String(),
		Kind:      e.Component.Kind.String(),
		Params:    e.Params,
		Seq:       e.Seq,
	}
}

// SnapshotView is the JSON form of a router snapshot.
type SnapshotView struct {
	Areas []EntryView `json:"areas"`
}

func snapshotView(s area.Snapshot) SnapshotView {
	v := SnapshotView{Areas: make([]EntryView, 0, s.Len())}
	for _, name := range s.Areas() {
		e, _ := s.Get(name)
		v.Areas = append(v.Areas, entryView(e))
	}
	return v
}

// AreaView describes one area.
type AreaView struct {
	Name   string     `json:"name"`
	State  string     `json:"state"`
	Entry  *EntryView `json:"entry,omitempty"`
	Routes []string   `json:"routes"`
}

// RedirectView is the JSON form of a denied navigation.
type RedirectView struct {
	Area   string `json:"area"`
	Route  string `json:"route"`
	From   string `json:"from,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func redirectView(rd area.Redirect) RedirectView {
	v := RedirectView{Area: rd.Area, Route: rd.Route, From: rd.From}
	if rd.Reason != nil {
		v.Reason = rd.Reason.Error()
	}
	return v
}

// MessageType identifies a WebSocket message.
type MessageType string

const (
	MessageSnapshot     MessageType = "snapshot"
	MessageRedirect     MessageType = "redirect"
	MessageDialogs      MessageType = "dialogs"
	MessageNotification MessageType = "notification"
)

// Message is sent to WebSocket clients. Exactly one payload is set.
type Message struct {
	Type         MessageType          `json:"type"`
	Time         time.Time            `json:"time"`
	Snapshot     *SnapshotView        `json:"snapshot,omitempty"`
	Redirect     *RedirectView        `json:"redirect,omitempty"`
	Dialogs      []dialog.Info        `json:"dialogs,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

// PushRequest is the body of a push.
type PushRequest struct {
	Route   string            `json:"route,omitempty"`
	Tag     string            `json:"tag,omitempty"`
	Params  map[string]string `json:"params,omitempty"`
	Replace bool              `json:"replace,omitempty"`
}

// ResolveRequest is the body of a dialog resolution.
type ResolveRequest struct {
	Result bool `json:"result"`
}

// FlagRequest is the body of a flag update.
type FlagRequest struct {
	Value bool `json:"value"`
}
