// Package apperr defines the closed error taxonomy shared by the notification
// pipeline.
//
// Every failure that crosses a component boundary is classified with one of a
// fixed set of kinds so callers can branch on "not found" versus "forbidden"
// versus "server error" without inspecting messages:
//
//	n, err := svc.MarkRead(ctx, id)
//	switch apperr.KindOf(err) {
//	case apperr.NotFound:
//	    // ...
//	case apperr.AuthorizationDenied:
//	    // ...
//	}
//
// Errors are plain Go errors: they wrap an underlying cause that stays
// reachable through errors.Is and errors.As.
package apperr
