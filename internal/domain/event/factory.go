package event

import "time"

// NewFromCreateRequest builds an active Event from an already-validated request.
// date and capacity are the parsed forms of req.Date and req.Capacity.
func NewFromCreateRequest(req CreateEventRequest, date time.Time, capacity int) Event {
	return Event{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Date:        NormalizeTime(date),
		Capacity:    capacity,
		Cancelled:   false,
		CreatedAt:   NormalizeTime(time.Now()),
	}
}
