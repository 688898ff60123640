package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/wastenot/apiserver/internal/services"
	"github.com/wastenot/apiserver/internal/store"
	"github.com/wastenot/apiserver/types"
)

// ProfileHandler serves the signed-in user's profile and the admin user
// directory.
type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// ProfileRouter registers profile routes. Callers mount it behind the
// session middleware.
func ProfileRouter(r chi.Router, profileService *services.ProfileService) {
	handler := NewProfileHandler(profileService)

	r.Get("/profile", handler.Get)
	r.Put("/profile", handler.Update)
	r.With(RequireAdmin).Get("/users", handler.ListUsers)
}

// Get returns the caller's profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if session.Profile == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, session.Profile)
}

// Update changes the caller's display fields. Email, role, and password
// are managed elsewhere and ignored here.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	updated, err := h.profileService.Update(r.Context(), types.Profile{
		ID:        session.UserID,
		Username:  strings.TrimSpace(req.Username),
		FullName:  strings.TrimSpace(req.FullName),
		AvatarURL: strings.TrimSpace(req.AvatarURL),
		Website:   strings.TrimSpace(req.Website),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// ListUsers returns all profiles, optionally filtered by role or a
// name/email search. Admin only.
func (h *ProfileHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	role := strings.TrimSpace(r.URL.Query().Get("role"))
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	profiles, err := h.profileService.List(r.Context(), role, search)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

type UpdateProfileRequest struct {
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
	Website   string `json:"website"`
}
