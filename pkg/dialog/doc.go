// Package dialog coordinates modal dialogs as a LIFO stack.
//
// The service is independent of the area router. Each open call pushes a
// dialog on the stack and returns a handle whose result is delivered once
// the dialog closes:
//
//	d := svc.Confirm(dialog.ConfirmOptions{Title: "Delete", Message: "Delete this invoice?"})
//	ok, err := d.Result(ctx)
//
// Only the topmost dialog reacts to its buttons. Dismiss closes the
// topmost dialog with a false result, whatever its kind, and reports false
// when nothing is open.
//
// Drawing dialogs is left to a Surface, which is told when a dialog opens
// and closes.
package dialog
