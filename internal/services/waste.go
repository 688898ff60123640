package services

import (
	"context"

	"github.com/wastenot/apiserver/internal/events"
	"github.com/wastenot/apiserver/types"
)

// WasteLogRepository defines persistence operations for waste logs.
type WasteLogRepository interface {
	List(ctx context.Context, userID int, all bool) ([]types.WasteLog, error)
	Create(ctx context.Context, log types.WasteLog) (types.WasteLog, error)
	Delete(ctx context.Context, id, userID int, admin bool) error
}

// WasteLogService encapsulates waste-tracking use-cases.
type WasteLogService struct {
	repo      WasteLogRepository
	publisher events.Publisher
}

func NewWasteLogService(repo WasteLogRepository, publisher events.Publisher) *WasteLogService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &WasteLogService{repo: repo, publisher: publisher}
}

func (s *WasteLogService) List(ctx context.Context, viewer Viewer) ([]types.WasteLog, error) {
	return s.repo.List(ctx, viewer.UserID, viewer.Admin)
}

func (s *WasteLogService) Create(ctx context.Context, viewer Viewer, log types.WasteLog) (types.WasteLog, error) {
	log.UserID = viewer.UserID
	created, err := s.repo.Create(ctx, log)
	if err != nil {
		return types.WasteLog{}, err
	}

	s.publisher.Publish(ctx, events.Event{
		Type:     events.TypeWasteLogged,
		UserID:   created.UserID,
		Subject:  created.ItemName,
		Quantity: created.Quantity,
		Unit:     created.Unit,
	})
	return created, nil
}

func (s *WasteLogService) Delete(ctx context.Context, viewer Viewer, id int) error {
	return s.repo.Delete(ctx, id, viewer.UserID, viewer.Admin)
}
