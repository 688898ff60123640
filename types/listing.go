package types

import "time"

// MarketplaceListing is a surplus-food offer visible to every user.
// Quantity is free text ("5 lbs", "1 box"); prices are in the vendor's
// currency. The discounted price is not validated against the original
// price, matching the historical behavior of the dashboard.
type MarketplaceListing struct {
	ID              int       `json:"id" db:"id"`
	UserID          int       `json:"user_id" db:"user_id"`
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	OriginalPrice   float64   `json:"original_price" db:"original_price"`
	DiscountedPrice float64   `json:"discounted_price" db:"discounted_price"`
	Quantity        string    `json:"quantity" db:"quantity"`
	Category        string    `json:"category" db:"category"`
	Vendor          string    `json:"vendor" db:"vendor"`
	Location        string    `json:"location" db:"location"`
	ExpiresIn       string    `json:"expires_in" db:"expires_in"`
	ImageURL        string    `json:"image_url,omitempty" db:"image_url"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
