package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/wastenot/apiserver/internal/services"
	"github.com/wastenot/apiserver/types"
)

// InventoryHandler serves the caller's tracked food items.
type InventoryHandler struct {
	inventoryService *services.InventoryService
}

func NewInventoryHandler(inventoryService *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// InventoryRouter registers inventory routes. Callers mount it behind
// the session middleware.
func InventoryRouter(r chi.Router, inventoryService *services.InventoryService) {
	handler := NewInventoryHandler(inventoryService)

	r.Get("/", handler.List)
	r.Post("/", handler.Create)
	r.Delete("/{itemID}", handler.Delete)
}

// List returns the caller's items ordered soonest-to-expire first.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	items, err := h.inventoryService.List(r.Context(), session.Viewer())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list inventory")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Create adds an item for the caller. Quantity and purchase price accept
// numeric strings; the expiration date accepts "2006-01-02".
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateInventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	quantity, err := parseNumber(req.Quantity)
	if err != nil || quantity < 0 {
		writeError(w, http.StatusBadRequest, "invalid quantity")
		return
	}
	expiration, err := parseDate(req.ExpirationDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expiration date")
		return
	}
	price, err := parseOptionalNumber(req.PurchasePrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid purchase price")
		return
	}

	item, err := h.inventoryService.Create(r.Context(), session.Viewer(), types.InventoryItem{
		Name:            req.Name,
		Category:        strings.TrimSpace(req.Category),
		Quantity:        quantity,
		Unit:            strings.TrimSpace(req.Unit),
		ExpirationDate:  expiration,
		PurchasePrice:   price,
		StorageLocation: strings.TrimSpace(req.StorageLocation),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// Delete removes one of the caller's items; admins may remove any item.
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := idParam(r, "itemID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.inventoryService.Delete(r.Context(), session.Viewer(), id); err != nil {
		if status, msg, ok := notFoundStatus(err); ok {
			writeError(w, status, msg)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateInventoryItemRequest is the POST /inventory payload. Quantity
// and purchase_price are raw so both numbers and numeric strings decode.
type CreateInventoryItemRequest struct {
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Quantity        json.RawMessage `json:"quantity"`
	Unit            string          `json:"unit"`
	ExpirationDate  string          `json:"expiration_date"`
	PurchasePrice   json.RawMessage `json:"purchase_price"`
	StorageLocation string          `json:"storage_location"`
}
