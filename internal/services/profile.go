package services

import (
	"context"

	"github.com/wastenot/apiserver/types"
)

// Viewer identifies who is performing an operation and whether row
// scoping applies to them.
type Viewer struct {
	UserID int
	Admin  bool
}

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, id int) (types.Profile, error)
	GetByEmail(ctx context.Context, email string) (types.Profile, error)
	Create(ctx context.Context, profile types.Profile) (types.Profile, error)
	Update(ctx context.Context, profile types.Profile) (types.Profile, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	List(ctx context.Context, role, search string) ([]types.Profile, error)
}

// ProfileService encapsulates profile use-cases.
type ProfileService struct {
	repo ProfileRepository
}

func NewProfileService(repo ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

func (s *ProfileService) GetByID(ctx context.Context, id int) (types.Profile, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProfileService) GetByEmail(ctx context.Context, email string) (types.Profile, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *ProfileService) Create(ctx context.Context, profile types.Profile) (types.Profile, error) {
	if profile.Role == "" {
		profile.Role = types.RoleUser
	}
	return s.repo.Create(ctx, profile)
}

func (s *ProfileService) Update(ctx context.Context, profile types.Profile) (types.Profile, error) {
	return s.repo.Update(ctx, profile)
}

func (s *ProfileService) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

func (s *ProfileService) List(ctx context.Context, role, search string) ([]types.Profile, error) {
	return s.repo.List(ctx, role, search)
}
