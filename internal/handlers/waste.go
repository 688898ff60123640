package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wastenot/apiserver/internal/services"
	"github.com/wastenot/apiserver/types"
)

// WasteLogHandler serves the caller's waste history.
type WasteLogHandler struct {
	wasteService *services.WasteLogService
}

func NewWasteLogHandler(wasteService *services.WasteLogService) *WasteLogHandler {
	return &WasteLogHandler{wasteService: wasteService}
}

// WasteLogRouter registers waste-log routes. Callers mount it behind the
// session middleware.
func WasteLogRouter(r chi.Router, wasteService *services.WasteLogService) {
	handler := NewWasteLogHandler(wasteService)

	r.Get("/", handler.List)
	r.Post("/", handler.Create)
	r.Delete("/{logID}", handler.Delete)
}

// List returns the caller's logs, newest waste date first.
func (h *WasteLogHandler) List(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	logs, err := h.wasteService.List(r.Context(), session.Viewer())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list waste logs")
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// Create records a waste event. The waste date defaults to today when
// omitted.
func (h *WasteLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateWasteLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.ItemName = strings.TrimSpace(req.ItemName)
	if req.ItemName == "" {
		writeError(w, http.StatusBadRequest, "item name is required")
		return
	}
	quantity, err := parseNumber(req.Quantity)
	if err != nil || quantity < 0 {
		writeError(w, http.StatusBadRequest, "invalid quantity")
		return
	}

	wasteDate := time.Now()
	if strings.TrimSpace(req.WasteDate) != "" {
		wasteDate, err = parseDate(req.WasteDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid waste date")
			return
		}
	}

	log, err := h.wasteService.Create(r.Context(), session.Viewer(), types.WasteLog{
		ItemName:  req.ItemName,
		Category:  strings.TrimSpace(req.Category),
		Quantity:  quantity,
		Unit:      strings.TrimSpace(req.Unit),
		Reason:    strings.TrimSpace(req.Reason),
		WasteDate: wasteDate,
		Notes:     strings.TrimSpace(req.Notes),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create waste log")
		return
	}

	writeJSON(w, http.StatusCreated, log)
}

// Delete removes one of the caller's logs; admins may remove any log.
func (h *WasteLogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := idParam(r, "logID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid log id")
		return
	}

	if err := h.wasteService.Delete(r.Context(), session.Viewer(), id); err != nil {
		if status, msg, ok := notFoundStatus(err); ok {
			writeError(w, status, msg)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete waste log")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateWasteLogRequest is the POST /waste-logs payload.
type CreateWasteLogRequest struct {
	ItemName  string          `json:"item_name"`
	Category  string          `json:"category"`
	Quantity  json.RawMessage `json:"quantity"`
	Unit      string          `json:"unit"`
	Reason    string          `json:"reason"`
	WasteDate string          `json:"waste_date"`
	Notes     string          `json:"notes"`
}
