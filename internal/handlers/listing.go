package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/wastenot/apiserver/internal/analytics"
	"github.com/wastenot/apiserver/internal/services"
	"github.com/wastenot/apiserver/types"
)

const (
	maxImageBytes    = 10 << 20
	formFieldImage   = "image"
	defaultImageType = "application/octet-stream"
)

// ListingHandler serves the shared marketplace surface.
type ListingHandler struct {
	listingService *services.ListingService
}

func NewListingHandler(listingService *services.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

// ListingRouter registers marketplace routes. Callers mount it behind the
// session middleware.
func ListingRouter(r chi.Router, listingService *services.ListingService) {
	handler := NewListingHandler(listingService)

	r.Get("/", handler.List)
	r.Post("/", handler.Create)
	r.Route("/{listingID}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.Delete("/", handler.Delete)
		r.Post("/image", handler.UploadImage)
		r.Get("/image", handler.GetImage)
	})
}

// List returns every listing, newest first, optionally filtered by
// category and a title/description search.
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	listings, err := h.listingService.List(r.Context(), category, search)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list listings")
		return
	}

	responses := make([]ListingResponse, 0, len(listings))
	for _, listing := range listings {
		responses = append(responses, listingResponse(listing))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "listingID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	listing, err := h.listingService.Get(r.Context(), id)
	if err != nil {
		if status, msg, ok := notFoundStatus(err); ok {
			writeError(w, status, msg)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch listing")
		return
	}
	writeJSON(w, http.StatusOK, listingResponse(listing))
}

// Create posts a new listing owned by the caller. Prices accept numeric
// strings; quantity is free text ("5 lbs").
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	originalPrice, err := parseNumber(req.OriginalPrice)
	if err != nil || originalPrice < 0 {
		writeError(w, http.StatusBadRequest, "invalid original price")
		return
	}
	discountedPrice, err := parseNumber(req.DiscountedPrice)
	if err != nil || discountedPrice < 0 {
		writeError(w, http.StatusBadRequest, "invalid discounted price")
		return
	}

	listing, err := h.listingService.Create(r.Context(), session.Viewer(), types.MarketplaceListing{
		Title:           req.Title,
		Description:     strings.TrimSpace(req.Description),
		OriginalPrice:   originalPrice,
		DiscountedPrice: discountedPrice,
		Quantity:        strings.TrimSpace(req.Quantity),
		Category:        strings.TrimSpace(req.Category),
		Vendor:          strings.TrimSpace(req.Vendor),
		Location:        strings.TrimSpace(req.Location),
		ExpiresIn:       strings.TrimSpace(req.ExpiresIn),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create listing")
		return
	}

	writeJSON(w, http.StatusCreated, listingResponse(listing))
}

// Delete removes one of the caller's listings; admins may remove any.
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := idParam(r, "listingID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	if err := h.listingService.Delete(r.Context(), session.Viewer(), id); err != nil {
		if status, msg, ok := notFoundStatus(err); ok {
			writeError(w, status, msg)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete listing")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage attaches a photo to the caller's listing via a multipart
// "image" field.
func (h *ListingHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := idParam(r, "listingID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile(formFieldImage)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultImageType
	}

	err = h.listingService.UploadImage(r.Context(), session.Viewer(), id, data, contentType)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrForbidden):
			writeError(w, http.StatusForbidden, "not your listing")
		case errors.Is(err, services.ErrNoStorage):
			writeError(w, http.StatusServiceUnavailable, "image storage is not configured")
		default:
			if status, msg, ok := notFoundStatus(err); ok {
				writeError(w, status, msg)
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to upload image")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "image uploaded"})
}

// GetImage streams the listing's stored image.
func (h *ListingHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "listingID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	object, err := h.listingService.OpenImage(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNoStorage) {
			writeError(w, http.StatusServiceUnavailable, "image storage is not configured")
			return
		}
		if status, msg, ok := notFoundStatus(err); ok {
			writeError(w, status, msg)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch image")
		return
	}
	defer object.Close()

	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, object)
}

// ListingResponse decorates a listing with its derived discount badge.
type ListingResponse struct {
	types.MarketplaceListing
	DiscountPercentage int `json:"discount_percentage"`
}

func listingResponse(listing types.MarketplaceListing) ListingResponse {
	return ListingResponse{
		MarketplaceListing: listing,
		DiscountPercentage: analytics.DiscountPercentage(listing.OriginalPrice, listing.DiscountedPrice),
	}
}

// CreateListingRequest is the POST /listings payload.
type CreateListingRequest struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	OriginalPrice   json.RawMessage `json:"original_price"`
	DiscountedPrice json.RawMessage `json:"discounted_price"`
	Quantity        string          `json:"quantity"`
	Category        string          `json:"category"`
	Vendor          string          `json:"vendor"`
	Location        string          `json:"location"`
	ExpiresIn       string          `json:"expires_in"`
}
