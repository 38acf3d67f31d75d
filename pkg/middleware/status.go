package middleware

import (
	"context"
	stderrors "errors"

	"github.com/vango-dev/area/internal/errors"
	"github.com/vango-dev/area/pkg/area"
)

// Status values used as the "status" label and span attribute.
const (
	StatusOK         = "ok"
	StatusDenied     = "denied"
	StatusSuperseded = "superseded"
	StatusNotFound   = "not_found"
	StatusLoadFailed = "load_failed"
	StatusCancelled  = "cancelled"
	StatusAborted    = "aborted"
	StatusError      = "error"
)

// Status categorizes the result of a navigation. The categories keep label
// cardinality bounded regardless of error messages.
func Status(err error) string {
	if err == nil {
		return StatusOK
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return StatusCancelled
	}
	switch errors.CodeOf(err) {
	case "A020":
		return StatusDenied
	case "A003":
		return StatusSuperseded
	case "A001":
		return StatusNotFound
	case "A030":
		return StatusLoadFailed
	case "A006":
		return StatusAborted
	default:
		return StatusError
	}
}

// result is Status for a navigation seen from inside the chain, where a
// later middleware may have stopped it without an error.
func result(nav *area.Navigation, err error) string {
	if err == nil && nav.Entry == nil {
		return StatusAborted
	}
	return Status(err)
}
