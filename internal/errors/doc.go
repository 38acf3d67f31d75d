// Package errors provides structured, actionable error messages for area.
//
// Every failure the router, the loaders and the dialog service can report
// has a unique code (e.g. "A001") that maps to:
//   - A category (route, guard, lazy, dialog, config, cli)
//   - A short message describing the error
//   - A detailed explanation
//
// Errors compare by code, so a freshly built error matches the exported
// sentinel of the package that owns the code:
//
//	err := errors.New("A001").WithDetailf("no route %q in area %q", key, area)
//	stderrors.Is(err, route.ErrNotFound) // true
//
// # Terminal output
//
// The CLI prints errors with Format:
//
//	ERROR A001: Route not found
//
//	  No route definition matches "reports" in area "main".
//
//	  Hint: Register a route with When "reports" or set a default for the area.
package errors
