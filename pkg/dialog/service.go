package dialog

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/area/internal/errors"
	"github.com/vango-dev/area/pkg/component"
	"github.com/vango-dev/area/pkg/reactive"
)

var (
	// ErrEmpty is returned when an operation needs an open dialog.
	ErrEmpty = errors.New("A040")

	// ErrNotTop is returned for button clicks on a dialog that is not
	// the topmost one.
	ErrNotTop = errors.New("A041")

	// ErrClosed is returned for dialogs that have already closed.
	ErrClosed = errors.New("A042")
)

// Surface draws dialogs. Its methods are called in stack order and must
// not call back into the Service synchronously.
type Surface interface {
	Open(info Info)
	Close(id string)
}

// Option configures a Service.
type Option func(*Service)

// WithSurface sets the surface dialogs are drawn on.
func WithSurface(s Surface) Option {
	return func(svc *Service) {
		svc.surface = s
	}
}

// WithLogger sets the service's logger.
func WithLogger(l *slog.Logger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.logger = l
		}
	}
}

// Service is the dialog stack.
type Service struct {
	mu    sync.Mutex
	stack []*Dialog

	// surfaceMu orders surface calls like the stack changes they reflect.
	surfaceMu sync.Mutex
	surface   Surface

	infos  *reactive.BehaviorSubject[[]Info]
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates an empty dialog stack.
func NewService(opts ...Option) *Service {
	s := &Service{
		infos:  reactive.NewBehaviorSubject[[]Info](nil),
		logger: slog.Default().With("component", "dialog"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Confirm opens a dialog with a title, a message and two buttons.
func (s *Service) Confirm(opts ConfirmOptions) *Dialog {
	if opts.ConfirmText == "" {
		opts.ConfirmText = "Confirm"
	}
	if opts.CancelText == "" {
		opts.CancelText = "Cancel"
	}
	return s.open(Info{
		Kind:        KindConfirm,
		Title:       opts.Title,
		Message:     opts.Message,
		ConfirmText: opts.ConfirmText,
		CancelText:  opts.CancelText,
		ShowActions: true,
	})
}

// Component opens a dialog rendering content. It has no title bar or
// buttons unless opts.HideActions is explicitly false.
func (s *Service) Component(content component.Descriptor, opts Options) *Dialog {
	info := Info{
		Kind:        KindComponent,
		Title:       opts.Title,
		Content:     content,
		ShowActions: opts.HideActions != nil && !*opts.HideActions,
	}
	if info.ShowActions {
		info.ConfirmText = "Confirm"
		info.CancelText = "Cancel"
	}
	return s.open(info)
}

// Simple is an alias for Component.
func (s *Service) Simple(content component.Descriptor, opts Options) *Dialog {
	return s.Component(content, opts)
}

func (s *Service) open(info Info) *Dialog {
	info.ID = uuid.NewString()
	info.OpenedAt = s.now()
	d := &Dialog{svc: s, info: info, done: make(chan struct{})}

	s.mu.Lock()
	s.stack = append(s.stack, d)
	depth := len(s.stack)
	s.surfaceMu.Lock()
	s.mu.Unlock()

	if s.surface != nil {
		s.surface.Open(info)
	}
	s.surfaceMu.Unlock()

	s.logger.Debug("dialog opened", "id", info.ID, "kind", string(info.Kind), "depth", depth)
	s.publish()
	return d
}

// Dismiss closes the topmost dialog with a false result. It returns false
// when no dialog is open.
func (s *Service) Dismiss() bool {
	s.mu.Lock()
	if len(s.stack) == 0 {
		s.mu.Unlock()
		return false
	}
	top := s.stack[len(s.stack)-1]
	s.mu.Unlock()

	// A concurrent close of the same dialog makes this one a no-op.
	return s.resolve(top, false, false) == nil
}

// DismissAll closes every dialog, topmost first, and returns how many
// were closed.
func (s *Service) DismissAll() int {
	n := 0
	for s.Dismiss() {
		n++
	}
	return n
}

// ResolveTop closes the topmost dialog with result, as if its confirm or
// cancel button was clicked.
func (s *Service) ResolveTop(result bool) error {
	s.mu.Lock()
	if len(s.stack) == 0 {
		s.mu.Unlock()
		return errors.New("A040")
	}
	top := s.stack[len(s.stack)-1]
	s.mu.Unlock()
	return s.resolve(top, result, true)
}

// Resolve closes the dialog with the given id. Only the topmost dialog
// can be resolved.
func (s *Service) Resolve(id string, result bool) error {
	s.mu.Lock()
	var target *Dialog
	for _, d := range s.stack {
		if d.info.ID == id {
			target = d
			break
		}
	}
	s.mu.Unlock()

	if target == nil {
		return errors.New("A042").WithDetailf("dialog %s", id)
	}
	return s.resolve(target, result, true)
}

// resolve removes d from the stack and delivers result.
func (s *Service) resolve(d *Dialog, result, onlyTop bool) error {
	s.mu.Lock()
	idx := -1
	for i, open := range s.stack {
		if open == d {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return errors.New("A042").WithDetailf("dialog %s", d.info.ID)
	}
	if onlyTop && idx != len(s.stack)-1 {
		s.mu.Unlock()
		return errors.New("A041").WithDetailf("dialog %s has %d dialog(s) above it", d.info.ID, len(s.stack)-1-idx)
	}
	s.stack = append(s.stack[:idx:idx], s.stack[idx+1:]...)
	d.result = result
	close(d.done)
	s.surfaceMu.Lock()
	s.mu.Unlock()

	if s.surface != nil {
		s.surface.Close(d.info.ID)
	}
	s.surfaceMu.Unlock()

	s.logger.Debug("dialog closed", "id", d.info.ID, "result", result)
	s.publish()
	return nil
}

// publish emits the stack as it is when the update runs, so the last
// emission always matches the final state.
func (s *Service) publish() {
	s.infos.Update(func([]Info) []Info {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.infosLocked()
	})
}

func (s *Service) infosLocked() []Info {
	out := make([]Info, len(s.stack))
	for i, d := range s.stack {
		out[i] = d.info
	}
	return out
}

// Len returns the number of open dialogs.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stack)
}

// Top returns the topmost dialog.
func (s *Service) Top() (*Dialog, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stack) == 0 {
		return nil, false
	}
	return s.stack[len(s.stack)-1], true
}

// List returns the open dialogs, bottom first.
func (s *Service) List() []Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.infosLocked()
}

// Stack emits the open dialogs, bottom first, after every change.
func (s *Service) Stack() reactive.Observable[[]Info] {
	return s.infos
}

// Close dismisses every dialog and completes Stack.
func (s *Service) Close() {
	s.DismissAll()
	s.infos.Complete()
}
