package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/wastenot/apiserver/internal/events"
	"github.com/wastenot/apiserver/internal/storage"
	"github.com/wastenot/apiserver/internal/store"
	"github.com/wastenot/apiserver/types"
)

// ErrForbidden is returned when a viewer acts on a row they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrNoStorage is returned when image operations run without a configured
// object-storage backend.
var ErrNoStorage = errors.New("object storage is not configured")

// ListingRepository defines persistence operations for marketplace
// listings.
type ListingRepository interface {
	List(ctx context.Context, category, search string) ([]types.MarketplaceListing, error)
	Get(ctx context.Context, id int) (types.MarketplaceListing, error)
	Create(ctx context.Context, listing types.MarketplaceListing) (types.MarketplaceListing, error)
	SetImageURL(ctx context.Context, id int, imageURL string) error
	Delete(ctx context.Context, id, userID int, admin bool) error
}

// ListingService encapsulates marketplace use-cases.
type ListingService struct {
	repo      ListingRepository
	storage   storage.ObjectStorage
	publisher events.Publisher
}

func NewListingService(repo ListingRepository, objects storage.ObjectStorage, publisher events.Publisher) *ListingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ListingService{repo: repo, storage: objects, publisher: publisher}
}

// List returns marketplace listings across all users; the marketplace is
// a shared surface.
func (s *ListingService) List(ctx context.Context, category, search string) ([]types.MarketplaceListing, error) {
	return s.repo.List(ctx, category, search)
}

func (s *ListingService) Get(ctx context.Context, id int) (types.MarketplaceListing, error) {
	return s.repo.Get(ctx, id)
}

func (s *ListingService) Create(ctx context.Context, viewer Viewer, listing types.MarketplaceListing) (types.MarketplaceListing, error) {
	listing.UserID = viewer.UserID
	created, err := s.repo.Create(ctx, listing)
	if err != nil {
		return types.MarketplaceListing{}, err
	}

	s.publisher.Publish(ctx, events.Event{
		Type:    events.TypeListingCreated,
		UserID:  created.UserID,
		Subject: created.Title,
	})
	return created, nil
}

func (s *ListingService) Delete(ctx context.Context, viewer Viewer, id int) error {
	return s.repo.Delete(ctx, id, viewer.UserID, viewer.Admin)
}

// UploadImage stores an image for the viewer's listing and records its
// serving path as the listing's image URL.
func (s *ListingService) UploadImage(ctx context.Context, viewer Viewer, id int, data []byte, contentType string) error {
	if s.storage == nil {
		return ErrNoStorage
	}

	listing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !viewer.Admin && listing.UserID != viewer.UserID {
		return ErrForbidden
	}

	key := imageKey(id)
	if err := s.storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return err
	}
	return s.repo.SetImageURL(ctx, id, fmt.Sprintf("/listings/%d/image", id))
}

// OpenImage streams a previously uploaded listing image.
func (s *ListingService) OpenImage(ctx context.Context, id int) (io.ReadCloser, error) {
	if s.storage == nil {
		return nil, ErrNoStorage
	}

	listing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.ImageURL == "" {
		return nil, store.ErrNotFound
	}
	return s.storage.Get(ctx, imageKey(id))
}

func imageKey(id int) string {
	return fmt.Sprintf("listings/%d/image", id)
}
