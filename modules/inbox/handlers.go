package inbox

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/campusnotify/pkg/apperr"
	"github.com/dmitrymomot/campusnotify/pkg/binder"
	"github.com/dmitrymomot/campusnotify/pkg/notifications"
)

type handler struct {
	svc       Service
	requester RequesterFunc
	logger    *slog.Logger
}

type listRequest struct {
	UserID     string `query:"user_id"`
	Page       int    `query:"page"`
	Limit      int    `query:"limit"`
	OnlyUnread bool   `query:"unread"`
}

type userRequest struct {
	UserID string `query:"user_id"`
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

type cleanupRequest struct {
	DaysToKeep int `json:"days_to_keep"`
}

type countResponse struct {
	Count int `json:"count"`
}

type updatedResponse struct {
	Updated int64 `json:"updated"`
}

type deletedResponse struct {
	Deleted int64 `json:"deleted"`
}

var (
	bindQuery        = binder.Query()
	bindJSON         = binder.JSON()
	bindOptionalJSON = binder.OptionalJSON()
)

func invalid(op string, err error) error {
	return apperr.New(apperr.ValidationFailed, op, err)
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if err := bindQuery(r, &req); err != nil {
		h.fail(w, r, invalid("inbox.list", err), nil)
		return
	}
	page, err := h.svc.List(r.Context(), h.targetUser(r, req.UserID), notifications.ListQuery{
		Page:       req.Page,
		Limit:      req.Limit,
		OnlyUnread: req.OnlyUnread,
	})
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.ok(w, page)
}

func (h *handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := bindQuery(r, &req); err != nil {
		h.fail(w, r, invalid("inbox.unreadCount", err), nil)
		return
	}
	n, err := h.svc.UnreadCount(r.Context(), h.targetUser(r, req.UserID))
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.ok(w, countResponse{Count: n})
}

func (h *handler) markRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.MarkRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.ok(w, n)
}

func (h *handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := bindQuery(r, &req); err != nil {
		h.fail(w, r, invalid("inbox.markAllRead", err), nil)
		return
	}
	changed, err := h.svc.MarkAllRead(r.Context(), h.targetUser(r, req.UserID))
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.ok(w, updatedResponse{Updated: changed})
}

func (h *handler) markManyRead(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := bindJSON(r, &req); err != nil {
		h.fail(w, r, invalid("inbox.markManyRead", err), nil)
		return
	}
	if err := notifications.ValidateIDs(req.IDs); err != nil {
		h.fail(w, r, invalid("inbox.markManyRead", err), nil)
		return
	}
	changed, err := h.svc.MarkManyRead(r.Context(), req.IDs)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.ok(w, updatedResponse{Updated: changed})
}

func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.ok(w, deletedResponse{Deleted: 1})
}

// deleteMany deletes one id at a time and stops at the first failure. Ids
// deleted before it stay deleted and are counted in the data of the error
// response.
func (h *handler) deleteMany(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := bindJSON(r, &req); err != nil {
		h.fail(w, r, invalid("inbox.deleteMany", err), nil)
		return
	}
	if err := notifications.ValidateIDs(req.IDs); err != nil {
		h.fail(w, r, invalid("inbox.deleteMany", err), nil)
		return
	}

	var deleted int64
	for _, id := range req.IDs {
		if err := h.svc.Delete(r.Context(), id); err != nil {
			h.fail(w, r, err, deletedResponse{Deleted: deleted})
			return
		}
		deleted++
	}
	h.ok(w, deletedResponse{Deleted: deleted})
}

func (h *handler) cleanup(w http.ResponseWriter, r *http.Request) {
	var req cleanupRequest
	if err := bindOptionalJSON(r, &req); err != nil {
		h.fail(w, r, invalid("inbox.cleanup", err), nil)
		return
	}
	if err := notifications.ValidateRetention(req.DaysToKeep); err != nil {
		h.fail(w, r, invalid("inbox.cleanup", err), nil)
		return
	}
	deleted, err := h.svc.CleanupOld(r.Context(), req.DaysToKeep)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.ok(w, deletedResponse{Deleted: deleted})
}

// targetUser is the explicit user_id, or the requester's own id. An anonymous
// request yields "" and is rejected by the service.
func (h *handler) targetUser(r *http.Request, explicit string) string {
	if explicit != "" {
		return explicit
	}
	req, _ := notifications.RequesterFromContext(r.Context())
	return req.UserID
}
