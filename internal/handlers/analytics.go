package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wastenot/apiserver/internal/services"
)

// AnalyticsHandler serves the dashboard metrics endpoints.
type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// AnalyticsRouter registers analytics routes. Callers mount it behind
// the session middleware.
func AnalyticsRouter(r chi.Router, analyticsService *services.AnalyticsService) {
	handler := NewAnalyticsHandler(analyticsService)

	r.Get("/summary", handler.Summary)
	r.Get("/waste-by-category", handler.WasteByCategory)
}

// Summary returns the headline dashboard metrics for the caller.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summary, err := h.analyticsService.Summary(r.Context(), session.Viewer())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// WasteByCategory returns the caller's per-category waste breakdown,
// largest share first.
func (h *AnalyticsHandler) WasteByCategory(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	shares, err := h.analyticsService.WasteByCategory(r.Context(), session.Viewer())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute breakdown")
		return
	}
	writeJSON(w, http.StatusOK, shares)
}
