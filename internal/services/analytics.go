package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/wastenot/apiserver/internal/analytics"
	"github.com/wastenot/apiserver/types"
)

// Summary is the dashboard's headline metrics payload.
type Summary struct {
	TotalSavings       float64 `json:"total_savings"`
	TotalWasteDiverted float64 `json:"total_waste_diverted"`
	CO2Reduced         float64 `json:"co2_reduced"`
	ActiveListings     int     `json:"active_listings"`
}

// AnalyticsService derives dashboard metrics from the domain rows. The
// fetches run concurrently, each landing in its own field; the math
// itself lives in the analytics package.
type AnalyticsService struct {
	listings  ListingRepository
	wasteLogs WasteLogRepository
}

func NewAnalyticsService(listings ListingRepository, wasteLogs WasteLogRepository) *AnalyticsService {
	return &AnalyticsService{listings: listings, wasteLogs: wasteLogs}
}

// Summary computes the four headline metrics for the viewer. Listings are
// a global surface; waste logs are scoped to the viewer unless they are
// an admin.
func (s *AnalyticsService) Summary(ctx context.Context, viewer Viewer) (Summary, error) {
	var (
		listings []types.MarketplaceListing
		logs     []types.WasteLog
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		listings, err = s.listings.List(gctx, "", "")
		return err
	})
	g.Go(func() error {
		var err error
		logs, err = s.wasteLogs.List(gctx, viewer.UserID, viewer.Admin)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	diverted := analytics.TotalWasteDiverted(logs)
	return Summary{
		TotalSavings:       analytics.TotalSavings(listings),
		TotalWasteDiverted: diverted,
		CO2Reduced:         analytics.CO2Reduced(diverted),
		ActiveListings:     len(listings),
	}, nil
}

// WasteByCategory returns the per-category breakdown of the viewer's
// logged waste.
func (s *AnalyticsService) WasteByCategory(ctx context.Context, viewer Viewer) ([]analytics.CategoryShare, error) {
	logs, err := s.wasteLogs.List(ctx, viewer.UserID, viewer.Admin)
	if err != nil {
		return nil, err
	}
	return analytics.WasteByCategory(logs), nil
}
