package dialog

import (
	"context"
	"time"

	"github.com/vango-dev/area/pkg/component"
)

// Kind is the kind of a dialog.
type Kind string

const (
	KindConfirm   Kind = "confirm"
	KindComponent Kind = "component"
)

// ConfirmOptions configures a confirm dialog.
type ConfirmOptions struct {
	Title       string
	Message     string
	ConfirmText string
	CancelText  string
}

// Options configures a component dialog.
type Options struct {
	Title string

	// HideActions hides the title bar and buttons. Actions are hidden
	// unless HideActions is explicitly false.
	HideActions *bool
}

// ShowActions returns Options with actions shown.
func ShowActions(title string) Options {
	hide := false
	return Options{Title: title, HideActions: &hide}
}

// Info describes an open dialog.
type Info struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Title       string    `json:"title,omitempty"`
	Message     string    `json:"message,omitempty"`
	ConfirmText string    `json:"confirmText,omitempty"`
	CancelText  string    `json:"cancelText,omitempty"`
	ShowActions bool      `json:"showActions"`
	OpenedAt    time.Time `json:"openedAt"`

	// Content is what a component dialog renders.
	Content component.Descriptor `json:"-"`
}

// Dialog is the handle of one open call.
type Dialog struct {
	svc    *Service
	info   Info
	done   chan struct{}
	result bool
}

// ID returns the dialog's unique identifier.
func (d *Dialog) ID() string { return d.info.ID }

// Kind returns the dialog's kind.
func (d *Dialog) Kind() Kind { return d.info.Kind }

// Info returns the dialog's description.
func (d *Dialog) Info() Info { return d.info }

// Confirm clicks the confirm button. It fails with ErrNotTop when another
// dialog is stacked above this one.
func (d *Dialog) Confirm() error {
	return d.svc.resolve(d, true, true)
}

// Cancel clicks the cancel button. It fails with ErrNotTop when another
// dialog is stacked above this one.
func (d *Dialog) Cancel() error {
	return d.svc.resolve(d, false, true)
}

// Done is closed when the dialog closes.
func (d *Dialog) Done() <-chan struct{} {
	return d.done
}

// Result waits for the dialog to close and returns true if it was
// confirmed.
func (d *Dialog) Result(ctx context.Context) (bool, error) {
	select {
	case <-d.done:
		return d.result, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Closed reports whether the dialog has closed.
func (d *Dialog) Closed() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}
