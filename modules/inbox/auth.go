package inbox

import (
	"net/http"
	"strings"

	"github.com/dmitrymomot/campusnotify/pkg/notifications"
)

// Header names read by HeaderRequester.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// RequesterFunc resolves the authenticated user of a request. It reports false
// for anonymous requests.
type RequesterFunc func(r *http.Request) (notifications.Requester, bool)

// HeaderRequester reads the requester from X-User-ID and X-User-Role.
func HeaderRequester(r *http.Request) (notifications.Requester, bool) {
	id := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if id == "" {
		return notifications.Requester{}, false
	}
	return notifications.Requester{
		UserID: id,
		Role:   strings.TrimSpace(r.Header.Get(HeaderUserRole)),
	}, true
}

// authenticate stores the resolved requester in the request context. Anonymous
// requests pass through; the service rejects them as AuthenticationRequired.
func authenticate(resolve RequesterFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if req, ok := resolve(r); ok {
				r = r.WithContext(notifications.WithRequester(r.Context(), req))
			}
			next.ServeHTTP(w, r)
		})
	}
}
