package types

import "time"

// WasteLog records a single waste event: what was thrown out, how much,
// and why.
type WasteLog struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	ItemName  string    `json:"item_name" db:"item_name"`
	Category  string    `json:"category" db:"category"`
	Quantity  float64   `json:"quantity" db:"quantity"`
	Unit      string    `json:"unit" db:"unit"`
	Reason    string    `json:"reason" db:"reason"`
	WasteDate time.Time `json:"waste_date" db:"waste_date"`
	Notes     string    `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
