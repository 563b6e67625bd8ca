package models

import "time"

type Item struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Available   bool      `json:"available"`
	OwnerID     int64     `json:"owner_id"`
	RequestID   int64     `json:"request_id,omitempty"` // 0 when the item answers no request
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemPatch carries a partial item update; nil fields stay unchanged.
type ItemPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

// ItemDetails is the owner-facing item view: the record itself, its comments
// and, for the owner only, the nearest bookings around "now".
type ItemDetails struct {
	Item
	LastBooking *Booking  `json:"last_booking,omitempty"`
	NextBooking *Booking  `json:"next_booking,omitempty"`
	Comments    []Comment `json:"comments"`
}
