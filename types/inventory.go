package types

import "time"

// InventoryItem is a unit of food a user is tracking before it expires.
type InventoryItem struct {
	ID              int       `json:"id" db:"id"`
	UserID          int       `json:"user_id" db:"user_id"`
	Name            string    `json:"name" db:"name"`
	Category        string    `json:"category" db:"category"`
	Quantity        float64   `json:"quantity" db:"quantity"`
	Unit            string    `json:"unit" db:"unit"`
	ExpirationDate  time.Time `json:"expiration_date" db:"expiration_date"`
	PurchasePrice   *float64  `json:"purchase_price,omitempty" db:"purchase_price"`
	StorageLocation string    `json:"storage_location,omitempty" db:"storage_location"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
