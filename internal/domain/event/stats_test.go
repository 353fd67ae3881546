package event

import "testing"

func TestNewStats(t *testing.T) {
	tests := []struct {
		name          string
		capacity      int
		total         int
		wantRemaining int
		wantFull      bool
	}{
		{"empty", 3, 0, 3, false},
		{"partly_filled", 3, 2, 1, false},
		{"exactly_full", 3, 3, 0, true},
		{"over_registered_is_floored", 3, 5, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStats(Event{ID: 9, Capacity: tt.capacity, Cancelled: true}, tt.total)

			if s.Remaining != tt.wantRemaining || s.IsFull != tt.wantFull {
				t.Fatalf("got remaining=%d isFull=%v, want %d %v", s.Remaining, s.IsFull, tt.wantRemaining, tt.wantFull)
			}
			if s.EventID != 9 || !s.Cancelled || s.TotalRegistrations != tt.total {
				t.Fatalf("unexpected stats %+v", s)
			}
		})
	}
}
