package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wastenot/apiserver/types"
)

func TestMemoryInventoryOrderingAndScoping(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()

	later, _ := mem.Inventory.Create(ctx, types.InventoryItem{
		UserID:         1,
		Name:           "Cheese",
		ExpirationDate: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	})
	sooner, _ := mem.Inventory.Create(ctx, types.InventoryItem{
		UserID:         1,
		Name:           "Milk",
		ExpirationDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	})
	_, _ = mem.Inventory.Create(ctx, types.InventoryItem{
		UserID:         2,
		Name:           "Bread",
		ExpirationDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})

	items, err := mem.Inventory.List(ctx, 1, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items for user 1, got %d", len(items))
	}
	if items[0].ID != sooner.ID || items[1].ID != later.ID {
		t.Fatalf("expected soonest expiration first, got %q then %q", items[0].Name, items[1].Name)
	}

	all, err := mem.Inventory.List(ctx, 1, true)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("admin view must include every user, got %d", len(all))
	}
}

func TestMemoryDeleteScoping(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()

	item, _ := mem.Inventory.Create(ctx, types.InventoryItem{UserID: 1, Name: "Milk"})

	if err := mem.Inventory.Delete(ctx, item.ID, 2, false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign delete must be ErrNotFound, got %v", err)
	}
	if err := mem.Inventory.Delete(ctx, item.ID, 2, true); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if err := mem.Inventory.Delete(ctx, item.ID, 1, false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete must be ErrNotFound, got %v", err)
	}
}

func TestMemoryWasteLogOrdering(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()

	older, _ := mem.WasteLogs.Create(ctx, types.WasteLog{
		UserID:    1,
		ItemName:  "Lettuce",
		WasteDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	newer, _ := mem.WasteLogs.Create(ctx, types.WasteLog{
		UserID:    1,
		ItemName:  "Yogurt",
		WasteDate: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
	})

	logs, err := mem.WasteLogs.List(ctx, 1, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if logs[0].ID != newer.ID || logs[1].ID != older.ID {
		t.Fatalf("expected newest waste date first, got %q then %q", logs[0].ItemName, logs[1].ItemName)
	}
}

func TestMemoryListingFilters(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()

	_, _ = mem.Listings.Create(ctx, types.MarketplaceListing{
		UserID:   1,
		Title:    "Surplus sourdough",
		Category: "bakery",
	})
	_, _ = mem.Listings.Create(ctx, types.MarketplaceListing{
		UserID:      2,
		Title:       "Cheese wheel",
		Description: "Aged cheddar surplus",
		Category:    "dairy",
	})

	listings, err := mem.Listings.List(ctx, "", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("marketplace is global, expected 2 listings, got %d", len(listings))
	}

	listings, _ = mem.Listings.List(ctx, "bakery", "")
	if len(listings) != 1 || listings[0].Title != "Surplus sourdough" {
		t.Fatalf("category filter failed: %+v", listings)
	}

	listings, _ = mem.Listings.List(ctx, "", "SURPLUS")
	if len(listings) != 2 {
		t.Fatalf("search must be case-insensitive over title and description, got %d", len(listings))
	}

	listings, _ = mem.Listings.List(ctx, "dairy", "cheddar")
	if len(listings) != 1 || listings[0].Category != "dairy" {
		t.Fatalf("combined filters failed: %+v", listings)
	}
}

func TestMemoryNotificationLimitAndScope(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()

	for i := 0; i < 25; i++ {
		if _, err := mem.Notifications.Create(ctx, types.Notification{UserID: 1, Title: "n"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	_, _ = mem.Notifications.Create(ctx, types.Notification{UserID: 2, Title: "other"})

	notifications, err := mem.Notifications.List(ctx, 1, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notifications) != 20 {
		t.Fatalf("default limit is 20, got %d", len(notifications))
	}
	for i := 1; i < len(notifications); i++ {
		prev, cur := notifications[i-1], notifications[i]
		if cur.CreatedAt.After(prev.CreatedAt) {
			t.Fatalf("feed must be newest first")
		}
	}

	notifications, _ = mem.Notifications.List(ctx, 2, 5)
	if len(notifications) != 1 || notifications[0].Title != "other" {
		t.Fatalf("feed must be scoped to one user: %+v", notifications)
	}
}

func TestMemoryNotificationMarkRead(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()

	n, _ := mem.Notifications.Create(ctx, types.Notification{UserID: 1, Title: "hello"})

	if err := mem.Notifications.MarkRead(ctx, n.ID, 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign mark-read must be ErrNotFound, got %v", err)
	}
	if err := mem.Notifications.MarkRead(ctx, n.ID, 1); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	notifications, _ := mem.Notifications.List(ctx, 1, 0)
	if len(notifications) != 1 || !notifications[0].IsRead {
		t.Fatalf("notification must be read: %+v", notifications)
	}
}

func TestMemoryProfileUpdateKeepsIdentityFields(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()

	created, _ := mem.Profiles.Create(ctx, types.Profile{
		Email:        "user@example.com",
		Role:         types.RoleUser,
		PasswordHash: "hash",
	})

	updated, err := mem.Profiles.Update(ctx, types.Profile{
		ID:       created.ID,
		Username: "newname",
		FullName: "New Name",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Email != "user@example.com" || updated.Role != types.RoleUser {
		t.Fatalf("update must not touch identity fields: %+v", updated)
	}
	if updated.Username != "newname" {
		t.Fatalf("display fields must change: %+v", updated)
	}

	fetched, err := mem.Profiles.GetByEmail(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if fetched.PasswordHash != "hash" {
		t.Fatalf("password hash must survive display updates")
	}
}
