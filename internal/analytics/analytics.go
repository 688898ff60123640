// Package analytics holds the pure aggregations behind the dashboard and
// analytics views. Every function is deterministic over its input rows and
// performs no I/O.
package analytics

import (
	"math"
	"sort"

	"github.com/wastenot/apiserver/types"
)

// CO2PerUnitWaste is the emission factor applied to diverted waste:
// roughly 2.5 lbs of CO2 per lb of food waste. It is a documented
// constant, not a tunable.
const CO2PerUnitWaste = 2.5

// CategoryShare is one slice of a category breakdown.
type CategoryShare struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// CategoryAmount is the minimal row shape CategoryBreakdown groups over.
type CategoryAmount struct {
	Category string
	Quantity float64
}

// TotalSavings sums the discount spread over all listings. Empty input
// yields 0.
func TotalSavings(listings []types.MarketplaceListing) float64 {
	var total float64
	for _, listing := range listings {
		total += listing.OriginalPrice - listing.DiscountedPrice
	}
	return total
}

// TotalWasteDiverted sums the logged waste quantities. Empty input yields 0.
func TotalWasteDiverted(logs []types.WasteLog) float64 {
	var total float64
	for _, log := range logs {
		total += log.Quantity
	}
	return total
}

// CO2Reduced estimates the emission reduction for a given amount of
// diverted waste.
func CO2Reduced(totalWasteDiverted float64) float64 {
	return totalWasteDiverted * CO2PerUnitWaste
}

// DiscountPercentage returns the rounded discount of a listing in percent.
// A zero original price yields 0 rather than dividing by zero.
func DiscountPercentage(original, discounted float64) int {
	if original == 0 {
		return 0
	}
	return int(math.Round((original - discounted) / original * 100))
}

// CategoryBreakdown groups rows by their literal category value, sums the
// quantity per group, and returns the shares sorted by percentage
// descending. Missing categories form their own empty-string group; when
// the overall total is 0 every percentage is 0.
func CategoryBreakdown(rows []CategoryAmount) []CategoryShare {
	if len(rows) == 0 {
		return []CategoryShare{}
	}

	amounts := make(map[string]float64)
	for _, row := range rows {
		amounts[row.Category] += row.Quantity
	}

	var total float64
	for _, amount := range amounts {
		total += amount
	}

	shares := make([]CategoryShare, 0, len(amounts))
	for category, amount := range amounts {
		share := CategoryShare{Category: category, Amount: amount}
		if total > 0 {
			share.Percentage = amount / total * 100
		}
		shares = append(shares, share)
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Percentage == shares[j].Percentage {
			return shares[i].Category < shares[j].Category
		}
		return shares[i].Percentage > shares[j].Percentage
	})
	return shares
}

// WasteByCategory adapts waste logs into the shape CategoryBreakdown
// consumes.
func WasteByCategory(logs []types.WasteLog) []CategoryShare {
	rows := make([]CategoryAmount, 0, len(logs))
	for _, log := range logs {
		rows = append(rows, CategoryAmount{Category: log.Category, Quantity: log.Quantity})
	}
	return CategoryBreakdown(rows)
}
