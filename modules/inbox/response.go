package inbox

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/campusnotify/pkg/apperr"
	"github.com/dmitrymomot/campusnotify/pkg/logger"
	"github.com/dmitrymomot/campusnotify/pkg/validator"
)

// Envelope is the body of every response.
type Envelope struct {
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail describes a failed operation. Fields carries per-field
// messages of validation failures.
type ErrorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *handler) ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Envelope{Data: data})
}

// fail writes err with the status of its kind. Messages of server-side
// failures are replaced by the status text and only logged.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error, data any) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()

	msg := err.Error()
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "inbox request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		logger.Error(err))

	writeJSON(w, status, Envelope{
		Data: data,
		Error: &ErrorDetail{
			Code:    kind.String(),
			Message: msg,
			Fields:  validator.ExtractValidationErrors(err).Map(),
		},
	})
}
