package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wastenot/apiserver/types"
)

// MemoryStore is an in-process implementation of every repository. It
// backs the fixture data mode and the handler tests, and mirrors the
// ordering and scoping behavior of the Postgres repositories.
type MemoryStore struct {
	Profiles      *MemoryProfileRepository
	Inventory     *MemoryInventoryRepository
	WasteLogs     *MemoryWasteLogRepository
	Listings      *MemoryListingRepository
	Notifications *MemoryNotificationRepository
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Profiles:      &MemoryProfileRepository{byID: map[int]types.Profile{}},
		Inventory:     &MemoryInventoryRepository{byID: map[int]types.InventoryItem{}},
		WasteLogs:     &MemoryWasteLogRepository{byID: map[int]types.WasteLog{}},
		Listings:      &MemoryListingRepository{byID: map[int]types.MarketplaceListing{}},
		Notifications: &MemoryNotificationRepository{byID: map[int]types.Notification{}},
	}
}

// MemoryProfileRepository stores profiles in a map guarded by a mutex.
type MemoryProfileRepository struct {
	mu   sync.Mutex
	byID map[int]types.Profile
	seq  int
}

func (r *MemoryProfileRepository) GetByID(ctx context.Context, id int) (types.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.byID[id]
	if !ok {
		return types.Profile{}, ErrNotFound
	}
	return profile, nil
}

func (r *MemoryProfileRepository) GetByEmail(ctx context.Context, email string) (types.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, profile := range r.byID {
		if profile.Email == email {
			return profile, nil
		}
	}
	return types.Profile{}, ErrNotFound
}

func (r *MemoryProfileRepository) Create(ctx context.Context, profile types.Profile) (types.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.seq++
	profile.ID = r.seq
	profile.CreatedAt = now
	profile.UpdatedAt = now
	r.byID[profile.ID] = profile
	return profile, nil
}

func (r *MemoryProfileRepository) Update(ctx context.Context, profile types.Profile) (types.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.byID[profile.ID]
	if !ok {
		return types.Profile{}, ErrNotFound
	}
	current.Username = profile.Username
	current.FullName = profile.FullName
	current.AvatarURL = profile.AvatarURL
	current.Website = profile.Website
	current.UpdatedAt = time.Now()
	r.byID[current.ID] = current
	return current, nil
}

func (r *MemoryProfileRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	current.PasswordHash = passwordHash
	current.UpdatedAt = time.Now()
	r.byID[id] = current
	return nil
}

func (r *MemoryProfileRepository) List(ctx context.Context, role, search string) ([]types.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profiles := make([]types.Profile, 0, len(r.byID))
	for _, profile := range r.byID {
		if role != "" && profile.Role != role {
			continue
		}
		if search != "" && !containsFold(profile.FullName, search) && !containsFold(profile.Email, search) {
			continue
		}
		profiles = append(profiles, profile)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].CreatedAt.After(profiles[j].CreatedAt)
	})
	return profiles, nil
}

// SetRole is a test/fixture helper with no SQL counterpart; role changes
// in production go through the database directly.
func (r *MemoryProfileRepository) SetRole(id int, role string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile, ok := r.byID[id]; ok {
		profile.Role = role
		r.byID[id] = profile
	}
}

// MemoryInventoryRepository stores inventory items in a map guarded by a
// mutex.
type MemoryInventoryRepository struct {
	mu   sync.Mutex
	byID map[int]types.InventoryItem
	seq  int
}

func (r *MemoryInventoryRepository) List(ctx context.Context, userID int, all bool) ([]types.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]types.InventoryItem, 0)
	for _, item := range r.byID {
		if all || item.UserID == userID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ExpirationDate.Before(items[j].ExpirationDate)
	})
	return items, nil
}

func (r *MemoryInventoryRepository) Create(ctx context.Context, item types.InventoryItem) (types.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	item.ID = r.seq
	item.CreatedAt = time.Now()
	r.byID[item.ID] = item
	return item, nil
}

func (r *MemoryInventoryRepository) Delete(ctx context.Context, id, userID int, admin bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.byID[id]
	if !ok || (!admin && item.UserID != userID) {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// MemoryWasteLogRepository stores waste logs in a map guarded by a mutex.
type MemoryWasteLogRepository struct {
	mu   sync.Mutex
	byID map[int]types.WasteLog
	seq  int
}

func (r *MemoryWasteLogRepository) List(ctx context.Context, userID int, all bool) ([]types.WasteLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	logs := make([]types.WasteLog, 0)
	for _, log := range r.byID {
		if all || log.UserID == userID {
			logs = append(logs, log)
		}
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].WasteDate.After(logs[j].WasteDate)
	})
	return logs, nil
}

func (r *MemoryWasteLogRepository) Create(ctx context.Context, log types.WasteLog) (types.WasteLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	log.ID = r.seq
	log.CreatedAt = time.Now()
	r.byID[log.ID] = log
	return log, nil
}

func (r *MemoryWasteLogRepository) Delete(ctx context.Context, id, userID int, admin bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	log, ok := r.byID[id]
	if !ok || (!admin && log.UserID != userID) {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// MemoryListingRepository stores marketplace listings in a map guarded by
// a mutex.
type MemoryListingRepository struct {
	mu   sync.Mutex
	byID map[int]types.MarketplaceListing
	seq  int
}

func (r *MemoryListingRepository) List(ctx context.Context, category, search string) ([]types.MarketplaceListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listings := make([]types.MarketplaceListing, 0, len(r.byID))
	for _, listing := range r.byID {
		if category != "" && listing.Category != category {
			continue
		}
		if search != "" && !containsFold(listing.Title, search) && !containsFold(listing.Description, search) {
			continue
		}
		listings = append(listings, listing)
	}
	sort.Slice(listings, func(i, j int) bool {
		if listings[i].CreatedAt.Equal(listings[j].CreatedAt) {
			return listings[i].ID > listings[j].ID
		}
		return listings[i].CreatedAt.After(listings[j].CreatedAt)
	})
	return listings, nil
}

func (r *MemoryListingRepository) Get(ctx context.Context, id int) (types.MarketplaceListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.byID[id]
	if !ok {
		return types.MarketplaceListing{}, ErrNotFound
	}
	return listing, nil
}

func (r *MemoryListingRepository) Create(ctx context.Context, listing types.MarketplaceListing) (types.MarketplaceListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	listing.ID = r.seq
	listing.CreatedAt = time.Now()
	r.byID[listing.ID] = listing
	return listing, nil
}

func (r *MemoryListingRepository) SetImageURL(ctx context.Context, id int, imageURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	listing.ImageURL = imageURL
	r.byID[id] = listing
	return nil
}

func (r *MemoryListingRepository) Delete(ctx context.Context, id, userID int, admin bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.byID[id]
	if !ok || (!admin && listing.UserID != userID) {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// MemoryNotificationRepository stores notifications in a map guarded by a
// mutex.
type MemoryNotificationRepository struct {
	mu   sync.Mutex
	byID map[int]types.Notification
	seq  int
}

func (r *MemoryNotificationRepository) List(ctx context.Context, userID, limit int) ([]types.Notification, error) {
	if limit < 1 {
		limit = 20
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	notifications := make([]types.Notification, 0)
	for _, n := range r.byID {
		if n.UserID == userID {
			notifications = append(notifications, n)
		}
	}
	sort.Slice(notifications, func(i, j int) bool {
		if notifications[i].CreatedAt.Equal(notifications[j].CreatedAt) {
			return notifications[i].ID > notifications[j].ID
		}
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	if len(notifications) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

func (r *MemoryNotificationRepository) Create(ctx context.Context, n types.Notification) (types.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	n.ID = r.seq
	n.CreatedAt = time.Now()
	r.byID[n.ID] = n
	return n, nil
}

func (r *MemoryNotificationRepository) MarkRead(ctx context.Context, id, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	n.IsRead = true
	r.byID[id] = n
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
