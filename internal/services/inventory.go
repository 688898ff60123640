package services

import (
	"context"

	"github.com/wastenot/apiserver/types"
)

// InventoryRepository defines persistence operations for inventory items.
type InventoryRepository interface {
	List(ctx context.Context, userID int, all bool) ([]types.InventoryItem, error)
	Create(ctx context.Context, item types.InventoryItem) (types.InventoryItem, error)
	Delete(ctx context.Context, id, userID int, admin bool) error
}

// InventoryService encapsulates inventory use-cases.
type InventoryService struct {
	repo InventoryRepository
}

func NewInventoryService(repo InventoryRepository) *InventoryService {
	return &InventoryService{repo: repo}
}

// List returns the viewer's items; admins see every user's rows.
func (s *InventoryService) List(ctx context.Context, viewer Viewer) ([]types.InventoryItem, error) {
	return s.repo.List(ctx, viewer.UserID, viewer.Admin)
}

func (s *InventoryService) Create(ctx context.Context, viewer Viewer, item types.InventoryItem) (types.InventoryItem, error) {
	item.UserID = viewer.UserID
	return s.repo.Create(ctx, item)
}

func (s *InventoryService) Delete(ctx context.Context, viewer Viewer, id int) error {
	return s.repo.Delete(ctx, id, viewer.UserID, viewer.Admin)
}
