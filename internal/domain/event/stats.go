package event

type Stats struct {
	EventID            int64 `json:"eventId"`
	Capacity           int   `json:"capacity"`
	Cancelled          bool  `json:"cancelled"`
	TotalRegistrations int   `json:"totalRegistrations"`
	Remaining          int   `json:"remaining"`
	IsFull             bool  `json:"isFull"`
}

// NewStats derives the capacity figures for e given its current registration count.
// remaining is floored at zero so an over-registered event still reads as full.
func NewStats(e Event, totalRegistrations int) Stats {
	remaining := max(e.Capacity-totalRegistrations, 0)

	return Stats{
		EventID:            e.ID,
		Capacity:           e.Capacity,
		Cancelled:          e.Cancelled,
		TotalRegistrations: totalRegistrations,
		Remaining:          remaining,
		IsFull:             remaining == 0,
	}
}
