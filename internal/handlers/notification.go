package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/wastenot/apiserver/internal/services"
)

// NotificationHandler serves the caller's notification feed.
type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// NotificationRouter registers notification routes. Callers mount it
// behind the session middleware.
func NotificationRouter(r chi.Router, notificationService *services.NotificationService) {
	handler := NewNotificationHandler(notificationService)

	r.Get("/", handler.List)
	r.Post("/{notificationID}/read", handler.MarkRead)
}

// List returns the caller's notifications, newest first. The optional
// limit query parameter caps the page size.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	notifications, err := h.notificationService.List(r.Context(), session.Viewer(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

// MarkRead marks one of the caller's notifications as read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := idParam(r, "notificationID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), session.Viewer(), id); err != nil {
		if status, msg, ok := notFoundStatus(err); ok {
			writeError(w, status, msg)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}
