package models

import "time"

// Booking statuses. WAITING is the initial status; APPROVED and REJECTED are
// terminal — once set the status never changes again.
const (
	StatusWaiting  = "WAITING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

type Booking struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	ItemName  string    `json:"item_name,omitempty"`
	BookerID  int64     `json:"booker_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingState is the time/status filter for booking list queries.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

// ParseBookingState maps a raw filter string onto the closed BookingState
// enumeration. The second return value reports whether the input was one of
// the six known filters.
func ParseBookingState(s string) (BookingState, bool) {
	switch BookingState(s) {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return BookingState(s), true
	}
	return "", false
}
