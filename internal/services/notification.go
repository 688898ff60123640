package services

import (
	"context"

	"github.com/wastenot/apiserver/types"
)

const maxNotificationLimit = 100

// NotificationRepository defines persistence operations for
// notifications.
type NotificationRepository interface {
	List(ctx context.Context, userID, limit int) ([]types.Notification, error)
	Create(ctx context.Context, n types.Notification) (types.Notification, error)
	MarkRead(ctx context.Context, id, userID int) error
}

// NotificationService encapsulates notification use-cases.
type NotificationService struct {
	repo NotificationRepository
}

func NewNotificationService(repo NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List returns the viewer's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, viewer Viewer, limit int) ([]types.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	return s.repo.List(ctx, viewer.UserID, limit)
}

func (s *NotificationService) MarkRead(ctx context.Context, viewer Viewer, id int) error {
	return s.repo.MarkRead(ctx, id, viewer.UserID)
}
