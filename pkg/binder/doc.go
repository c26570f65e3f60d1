// Package binder decodes HTTP request data into structs.
//
// Two binders are provided, both with the signature
// func(r *http.Request, v any) error:
//
//   - JSON() decodes a strict application/json body (unknown fields and
//     trailing data rejected, 1MB limit, strings trimmed).
//   - Query() fills fields from URL query parameters using `query` tags.
//
// Failures wrap ErrFailedToParseJSON, ErrFailedToParseQuery,
// ErrMissingContentType or ErrUnsupportedMediaType, so handlers can map them
// to a validation error with errors.Is:
//
//	var req markManyRequest
//	if err := binder.JSON()(r, &req); err != nil {
//		return apperr.New(apperr.ValidationFailed, "inbox.markMany", err)
//	}
package binder
