package apperr

import "net/http"

// Kind classifies an error. The set is closed: new kinds must be added here
// together with their String and HTTPStatus mapping.
type Kind uint8

const (
	// OperationFailed is a generic persistence or lookup failure.
	// It is the zero value so unclassified errors fall into it.
	OperationFailed Kind = iota
	AuthenticationRequired
	AuthorizationDenied
	NotFound
	ValidationFailed
	QueueUnavailable
)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{
	OperationFailed,
	AuthenticationRequired,
	AuthorizationDenied,
	NotFound,
	ValidationFailed,
	QueueUnavailable,
}

// String returns the translation-friendly key of the kind.
func (k Kind) String() string {
	switch k {
	case OperationFailed:
		return "operation_failed"
	case AuthenticationRequired:
		return "authentication_required"
	case AuthorizationDenied:
		return "authorization_denied"
	case NotFound:
		return "not_found"
	case ValidationFailed:
		return "validation_failed"
	case QueueUnavailable:
		return "queue_unavailable"
	}
	return "unknown"
}

// HTTPStatus maps the kind to the status code used by the HTTP envelope.
func (k Kind) HTTPStatus() int {
	switch k {
	case AuthenticationRequired:
		return http.StatusUnauthorized
	case AuthorizationDenied:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case ValidationFailed:
		return http.StatusUnprocessableEntity
	case QueueUnavailable:
		return http.StatusServiceUnavailable
	case OperationFailed:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
