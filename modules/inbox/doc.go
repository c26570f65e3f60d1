// Package inbox exposes the notification access layer over HTTP.
//
// Every endpoint maps to one notifications.Service operation and answers with
// the same envelope:
//
//	{"data": ..., "error": {"code": "not_found", "message": "..."}}
//
// The error code is the apperr kind and the status follows
// apperr.Kind.HTTPStatus. Routes, relative to the mount point:
//
//	GET    /               list (query: page, limit, unread, user_id)
//	GET    /unread-count   unread count (query: user_id)
//	POST   /read-all       mark every notification read (query: user_id)
//	POST   /read           mark many read, body {"ids": [...]}
//	POST   /delete         delete many, body {"ids": [...]}
//	POST   /cleanup        delete old read notifications, body {"days_to_keep": 30}
//	POST   /{id}/read      mark one read
//	DELETE /{id}           delete one
//
// The requester is resolved per request, by default from the X-User-ID and
// X-User-Role headers set by the gateway in front of the service. user_id
// defaults to the requester; only admins may name someone else.
package inbox
