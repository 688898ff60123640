package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/wastenot/apiserver/internal/analytics"
	"github.com/wastenot/apiserver/internal/services"
	"github.com/wastenot/apiserver/internal/store"
	"github.com/wastenot/apiserver/types"
)

const testSecret = "handlers-test-secret"

func newTestServer(t *testing.T) (*chi.Mux, *store.MemoryStore) {
	t.Helper()

	mem := store.NewMemoryStore()
	profileService := services.NewProfileService(mem.Profiles)
	inventoryService := services.NewInventoryService(mem.Inventory)
	wasteService := services.NewWasteLogService(mem.WasteLogs, nil)
	listingService := services.NewListingService(mem.Listings, nil, nil)
	notificationService := services.NewNotificationService(mem.Notifications)
	analyticsService := services.NewAnalyticsService(mem.Listings, mem.WasteLogs)

	session := RequireSession(testSecret, profileService)

	router := chi.NewRouter()
	router.Get("/healthz", Healthz)
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, profileService, testSecret)
	})
	router.Group(func(r chi.Router) {
		r.Use(session)
		ProfileRouter(r, profileService)
		r.Route("/inventory", func(r chi.Router) {
			InventoryRouter(r, inventoryService)
		})
		r.Route("/waste-logs", func(r chi.Router) {
			WasteLogRouter(r, wasteService)
		})
		r.Route("/listings", func(r chi.Router) {
			ListingRouter(r, listingService)
		})
		r.Route("/notifications", func(r chi.Router) {
			NotificationRouter(r, notificationService)
		})
		r.Route("/analytics", func(r chi.Router) {
			AnalyticsRouter(r, analyticsService)
		})
	})
	return router, mem
}

func doRequest(t *testing.T, router http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func registerUser(t *testing.T, router http.Handler, email string) (string, types.Profile) {
	t.Helper()

	rec := doRequest(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"email":     email,
		"username":  email,
		"full_name": "Test User",
		"password":  "testpass123!",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d: %s", email, rec.Code, rec.Body.String())
	}

	var resp AuthResponse
	decodeBody(t, rec, &resp)
	if resp.Token == "" {
		t.Fatalf("register %s: missing token", email)
	}
	return resp.Token, resp.Profile
}

func registerAdmin(t *testing.T, router http.Handler, mem *store.MemoryStore, email string) (string, types.Profile) {
	t.Helper()

	token, profile := registerUser(t, router, email)
	mem.Profiles.SetRole(profile.ID, types.RoleAdmin)
	return token, profile
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router, _ := newTestServer(t)
	registerUser(t, router, "dup@example.com")

	rec := doRequest(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "dup@example.com",
		"password": "another-pass",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLogin(t *testing.T) {
	router, _ := newTestServer(t)
	registerUser(t, router, "login@example.com")

	rec := doRequest(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "login@example.com",
		"password": "testpass123!",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "login@example.com",
		"password": "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", rec.Code)
	}
}

func TestMeRequiresToken(t *testing.T) {
	router, _ := newTestServer(t)

	rec := doRequest(t, router, http.MethodGet, "/auth/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	token, profile := registerUser(t, router, "me@example.com")
	rec = doRequest(t, router, http.MethodGet, "/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got types.Profile
	decodeBody(t, rec, &got)
	if got.ID != profile.ID || got.Email != "me@example.com" {
		t.Fatalf("unexpected profile: %+v", got)
	}
}

func TestUpdatePassword(t *testing.T) {
	router, _ := newTestServer(t)
	token, _ := registerUser(t, router, "pw@example.com")

	rec := doRequest(t, router, http.MethodPut, "/auth/password", token, map[string]string{
		"current_password": "wrong",
		"new_password":     "newpass456!",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong current password, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPut, "/auth/password", token, map[string]string{
		"current_password": "testpass123!",
		"new_password":     "newpass456!",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "pw@example.com",
		"password": "newpass456!",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected login with new password, got %d", rec.Code)
	}
}

func TestSessionSurvivesMissingProfile(t *testing.T) {
	router, _ := newTestServer(t)

	// A token whose subject has no profile row still authenticates; only
	// profile-dependent endpoints report the missing row.
	token, err := issueToken(999, []byte(testSecret), defaultTokenTTL)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rec := doRequest(t, router, http.MethodGet, "/auth/me", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing profile, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/inventory/", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing inventory, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/users", token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin route without profile, got %d", rec.Code)
	}
}

func TestProfileUpdate(t *testing.T) {
	router, _ := newTestServer(t)
	token, _ := registerUser(t, router, "profile@example.com")

	rec := doRequest(t, router, http.MethodPut, "/profile", token, map[string]string{
		"username":  "wastewatcher",
		"full_name": "Waste Watcher",
		"website":   "https://example.com",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got types.Profile
	decodeBody(t, rec, &got)
	if got.Username != "wastewatcher" || got.FullName != "Waste Watcher" {
		t.Fatalf("unexpected profile after update: %+v", got)
	}
	if got.Email != "profile@example.com" {
		t.Fatalf("email must not change on profile update: %q", got.Email)
	}
}

func TestListUsersIsAdminOnly(t *testing.T) {
	router, mem := newTestServer(t)
	userToken, _ := registerUser(t, router, "user@example.com")
	adminToken, _ := registerAdmin(t, router, mem, "admin@example.com")

	rec := doRequest(t, router, http.MethodGet, "/users", userToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/users", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", rec.Code, rec.Body.String())
	}

	var got []types.Profile
	decodeBody(t, rec, &got)
	if len(got) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(got))
	}
}

func TestInventoryCreateAndList(t *testing.T) {
	router, _ := newTestServer(t)
	token, _ := registerUser(t, router, "inv@example.com")

	// Quantity arrives as a string from forms; both encodings must work.
	rec := doRequest(t, router, http.MethodPost, "/inventory/", token, map[string]any{
		"name":            "Milk",
		"category":        "dairy",
		"quantity":        "2",
		"unit":            "liters",
		"expiration_date": "2026-09-15",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/inventory/", token, map[string]any{
		"name":            "Apples",
		"category":        "produce",
		"quantity":        3.5,
		"unit":            "lbs",
		"expiration_date": "2026-09-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/inventory/", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var items []types.InventoryItem
	decodeBody(t, rec, &items)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	// Soonest expiration first.
	if items[0].Name != "Apples" || items[1].Name != "Milk" {
		t.Fatalf("unexpected order: %q, %q", items[0].Name, items[1].Name)
	}
}

func TestInventoryRejectsBadQuantity(t *testing.T) {
	router, _ := newTestServer(t)
	token, _ := registerUser(t, router, "badqty@example.com")

	for _, quantity := range []any{"abc", "", -1} {
		rec := doRequest(t, router, http.MethodPost, "/inventory/", token, map[string]any{
			"name":            "Milk",
			"quantity":        quantity,
			"expiration_date": "2026-09-15",
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("quantity %v: expected 400, got %d", quantity, rec.Code)
		}
	}
}

func TestInventoryScoping(t *testing.T) {
	router, mem := newTestServer(t)
	aliceToken, _ := registerUser(t, router, "alice@example.com")
	bobToken, _ := registerUser(t, router, "bob@example.com")
	adminToken, _ := registerAdmin(t, router, mem, "inv-admin@example.com")

	rec := doRequest(t, router, http.MethodPost, "/inventory/", aliceToken, map[string]any{
		"name":            "Bread",
		"quantity":        "1",
		"expiration_date": "2026-09-10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var item types.InventoryItem
	decodeBody(t, rec, &item)

	rec = doRequest(t, router, http.MethodGet, "/inventory/", bobToken, nil)
	var bobItems []types.InventoryItem
	decodeBody(t, rec, &bobItems)
	if len(bobItems) != 0 {
		t.Fatalf("bob must not see alice's items, got %d", len(bobItems))
	}

	rec = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/inventory/%d", item.ID), bobToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 deleting another user's item, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/inventory/", adminToken, nil)
	var adminItems []types.InventoryItem
	decodeBody(t, rec, &adminItems)
	if len(adminItems) != 1 {
		t.Fatalf("admin must see all items, got %d", len(adminItems))
	}

	rec = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/inventory/%d", item.ID), adminToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for admin delete, got %d", rec.Code)
	}
}

func TestWasteLogLifecycle(t *testing.T) {
	router, _ := newTestServer(t)
	token, _ := registerUser(t, router, "waste@example.com")

	rec := doRequest(t, router, http.MethodPost, "/waste-logs/", token, map[string]any{
		"item_name":  "Lettuce",
		"category":   "produce",
		"quantity":   "1.5",
		"unit":       "lbs",
		"reason":     "expired",
		"waste_date": "2026-08-20",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/waste-logs/", token, map[string]any{
		"item_name":  "Yogurt",
		"category":   "dairy",
		"quantity":   2,
		"reason":     "expired",
		"waste_date": "2026-08-25",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/waste-logs/", token, nil)
	var logs []types.WasteLog
	decodeBody(t, rec, &logs)
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	// Newest waste date first.
	if logs[0].ItemName != "Yogurt" {
		t.Fatalf("unexpected order, first is %q", logs[0].ItemName)
	}

	rec = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/waste-logs/%d", logs[0].ID), token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestListingsAreGlobal(t *testing.T) {
	router, _ := newTestServer(t)
	aliceToken, _ := registerUser(t, router, "vendor@example.com")
	bobToken, _ := registerUser(t, router, "buyer@example.com")

	rec := doRequest(t, router, http.MethodPost, "/listings/", aliceToken, map[string]any{
		"title":            "Surplus bread",
		"description":      "Day-old sourdough",
		"original_price":   "10",
		"discounted_price": "4",
		"quantity":         "6 loaves",
		"category":         "bakery",
		"vendor":           "Corner Bakery",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var listing ListingResponse
	decodeBody(t, rec, &listing)

	// Every signed-in user sees the marketplace.
	rec = doRequest(t, router, http.MethodGet, "/listings/", bobToken, nil)
	var listings []ListingResponse
	decodeBody(t, rec, &listings)
	if len(listings) != 1 || listings[0].Title != "Surplus bread" {
		t.Fatalf("unexpected listings: %+v", listings)
	}
	if listings[0].DiscountPercentage != 60 {
		t.Fatalf("discount = %d, want 60", listings[0].DiscountPercentage)
	}

	rec = doRequest(t, router, http.MethodGet, "/listings/?category=bakery", bobToken, nil)
	decodeBody(t, rec, &listings)
	if len(listings) != 1 {
		t.Fatalf("category filter should match, got %d", len(listings))
	}

	rec = doRequest(t, router, http.MethodGet, "/listings/?category=dairy", bobToken, nil)
	decodeBody(t, rec, &listings)
	if len(listings) != 0 {
		t.Fatalf("category filter should exclude, got %d", len(listings))
	}

	rec = doRequest(t, router, http.MethodGet, "/listings/?search=sourdough", bobToken, nil)
	decodeBody(t, rec, &listings)
	if len(listings) != 1 {
		t.Fatalf("search should match description, got %d", len(listings))
	}

	// Only the owner (or an admin) can delete.
	rec = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/listings/%d", listing.ID), bobToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 deleting another user's listing, got %d", rec.Code)
	}
	rec = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/listings/%d", listing.ID), aliceToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestListingRejectsBadPrices(t *testing.T) {
	router, _ := newTestServer(t)
	token, _ := registerUser(t, router, "prices@example.com")

	rec := doRequest(t, router, http.MethodPost, "/listings/", token, map[string]any{
		"title":            "Bad listing",
		"original_price":   "abc",
		"discounted_price": "1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad original price, got %d", rec.Code)
	}
}

func TestListingImageWithoutStorage(t *testing.T) {
	router, _ := newTestServer(t)
	token, _ := registerUser(t, router, "img@example.com")

	rec := doRequest(t, router, http.MethodPost, "/listings/", token, map[string]any{
		"title":            "Pic listing",
		"original_price":   5,
		"discounted_price": 2,
	})
	var listing types.MarketplaceListing
	decodeBody(t, rec, &listing)

	rec = doRequest(t, router, http.MethodGet, fmt.Sprintf("/listings/%d/image", listing.ID), token, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without storage backend, got %d", rec.Code)
	}
}

func TestNotifications(t *testing.T) {
	router, mem := newTestServer(t)
	token, profile := registerUser(t, router, "notif@example.com")
	otherToken, otherProfile := registerUser(t, router, "other@example.com")

	ctx := context.Background()
	first, err := mem.Notifications.Create(ctx, types.Notification{
		UserID: profile.ID, Title: "Listing posted", Message: "live",
	})
	if err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	if _, err := mem.Notifications.Create(ctx, types.Notification{
		UserID: otherProfile.ID, Title: "Waste logged", Message: "recorded",
	}); err != nil {
		t.Fatalf("seed notification: %v", err)
	}

	rec := doRequest(t, router, http.MethodGet, "/notifications/", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var notifications []types.Notification
	decodeBody(t, rec, &notifications)
	if len(notifications) != 1 || notifications[0].ID != first.ID {
		t.Fatalf("feed must be scoped to the caller: %+v", notifications)
	}
	if notifications[0].IsRead {
		t.Fatalf("new notification must start unread")
	}

	// Marking another user's notification is a 404, not a silent no-op.
	rec = doRequest(t, router, http.MethodPost, fmt.Sprintf("/notifications/%d/read", first.ID), otherToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign notification, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, fmt.Sprintf("/notifications/%d/read", first.ID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/notifications/", token, nil)
	decodeBody(t, rec, &notifications)
	if len(notifications) != 1 || !notifications[0].IsRead {
		t.Fatalf("notification must be read after marking: %+v", notifications)
	}
}

func TestAnalyticsSummary(t *testing.T) {
	router, _ := newTestServer(t)
	token, _ := registerUser(t, router, "metrics@example.com")

	rec := doRequest(t, router, http.MethodPost, "/listings/", token, map[string]any{
		"title":            "Bread",
		"original_price":   10,
		"discounted_price": 4,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create listing: %d: %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(t, router, http.MethodPost, "/listings/", token, map[string]any{
		"title":            "Cheese",
		"original_price":   "20",
		"discounted_price": "15",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create listing: %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/waste-logs/", token, map[string]any{
		"item_name":  "Lettuce",
		"category":   "produce",
		"quantity":   30,
		"waste_date": "2026-08-20",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create waste log: %d: %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(t, router, http.MethodPost, "/waste-logs/", token, map[string]any{
		"item_name":  "Milk",
		"category":   "dairy",
		"quantity":   "70",
		"waste_date": "2026-08-21",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create waste log: %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/analytics/summary", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary: %d: %s", rec.Code, rec.Body.String())
	}
	var summary services.Summary
	decodeBody(t, rec, &summary)
	if summary.TotalSavings != 11 {
		t.Fatalf("total savings = %v, want 11", summary.TotalSavings)
	}
	if summary.TotalWasteDiverted != 100 {
		t.Fatalf("total waste diverted = %v, want 100", summary.TotalWasteDiverted)
	}
	if summary.CO2Reduced != 250 {
		t.Fatalf("co2 reduced = %v, want 250", summary.CO2Reduced)
	}
	if summary.ActiveListings != 2 {
		t.Fatalf("active listings = %d, want 2", summary.ActiveListings)
	}

	rec = doRequest(t, router, http.MethodGet, "/analytics/waste-by-category", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("waste-by-category: %d: %s", rec.Code, rec.Body.String())
	}
	var shares []analytics.CategoryShare
	decodeBody(t, rec, &shares)
	if len(shares) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(shares))
	}
	if shares[0].Category != "dairy" || shares[0].Percentage != 70 {
		t.Fatalf("largest share first: %+v", shares[0])
	}
	if shares[1].Category != "produce" || shares[1].Percentage != 30 {
		t.Fatalf("unexpected second share: %+v", shares[1])
	}
}
