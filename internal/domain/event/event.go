package event

import (
	"encoding/json"
	"errors"
	"time"
)

type Event struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	Capacity    int       `json:"capacity"`
	Cancelled   bool      `json:"cancelled"`
	CreatedAt   time.Time `json:"createdAt"`
}

var (
	ErrNotFound         = errors.New("event not found")
	ErrCancelled        = errors.New("event is cancelled")
	ErrAlreadyCancelled = errors.New("event already cancelled")
)

// Capacity is kept raw so both 10 and "10" can be accepted; see ParseCapacity.
type CreateEventRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	Date        string          `json:"date" validate:"required"`
	Capacity    json.RawMessage `json:"capacity" validate:"required"`
}
