package models

import "time"

// ItemRequest is a wish for an item that does not exist in the catalog yet.
// Items created in answer carry the request id.
type ItemRequest struct {
	ID          int64     `json:"id"`
	RequesterID int64     `json:"requester_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type ItemRequestDetails struct {
	ItemRequest
	Items []Item `json:"items"`
}
