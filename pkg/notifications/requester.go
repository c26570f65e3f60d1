package notifications

import "context"

// SystemUserID identifies requests made by the platform itself, such as the
// scheduled retention cleanup.
const SystemUserID = "system"

// Requester is the authenticated caller of an access-layer operation.
type Requester struct {
	UserID string
	Role   string
}

type requesterCtxKey struct{}

// WithRequester stores the requester in the context.
func WithRequester(ctx context.Context, r Requester) context.Context {
	return context.WithValue(ctx, requesterCtxKey{}, r)
}

// RequesterFromContext returns the requester stored by WithRequester. It
// reports false when there is none or its user id is empty.
func RequesterFromContext(ctx context.Context) (Requester, bool) {
	r, ok := ctx.Value(requesterCtxKey{}).(Requester)
	if !ok || r.UserID == "" {
		return Requester{}, false
	}
	return r, true
}

// SystemRequester returns the requester used for platform maintenance.
func SystemRequester(adminRole string) Requester {
	return Requester{UserID: SystemUserID, Role: adminRole}
}
