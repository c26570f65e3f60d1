package apperr

import (
	"errors"
	"strings"
)

// Error is a classified error. Op names the operation that failed
// (e.g. "notifications.MarkRead") and Err keeps the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind with no cause,
// which makes the package-level sentinels usable with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Err == nil && t.Op == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is checks against a kind.
var (
	ErrOperationFailed        = &Error{Kind: OperationFailed}
	ErrAuthenticationRequired = &Error{Kind: AuthenticationRequired}
	ErrAuthorizationDenied    = &Error{Kind: AuthorizationDenied}
	ErrNotFound               = &Error{Kind: NotFound}
	ErrValidationFailed       = &Error{Kind: ValidationFailed}
	ErrQueueUnavailable       = &Error{Kind: QueueUnavailable}
)

// New creates a classified error.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Wrap classifies err unless it already carries a kind, in which case the
// existing classification wins. Returns nil for a nil err.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the kind from err. Unclassified errors are OperationFailed.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return OperationFailed
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}
