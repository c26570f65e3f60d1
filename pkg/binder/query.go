package binder

import "net/http"

// Query binds URL query parameters to the fields of the struct v points to.
//
// Fields are matched by the `query` tag, or by the lower-cased field name
// when the tag is absent. `query:"-"` skips a field. Supported kinds are
// string, signed and unsigned integers, bool, pointers to those, and slices
// (repeated parameters or comma-separated values).
//
//	type listRequest struct {
//		Page       int  `query:"page"`
//		Limit      int  `query:"limit"`
//		OnlyUnread bool `query:"unread"`
//	}
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", r.URL.Query(), ErrFailedToParseQuery)
	}
}
