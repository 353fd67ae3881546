package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/geocoder89/eventreg/internal/domain/event"
	"github.com/geocoder89/eventreg/internal/domain/registration"
)

type regKey struct {
	eventID int64
	email   string
}

// Store keeps events and registrations in process memory. A single mutex makes
// every operation atomic, which is what the registration rules rely on.
type Store struct {
	mu        sync.RWMutex
	nextID    int64
	nextRegID int64
	events    map[int64]event.Event
	regs      map[int64][]registration.Registration
	emails    map[regKey]struct{}
}

func NewStore() *Store {
	return &Store{
		events: make(map[int64]event.Event),
		regs:   make(map[int64][]registration.Registration),
		emails: make(map[regKey]struct{}),
	}
}

func (s *Store) InsertEvent(ctx context.Context, e event.Event) (event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	e.ID = s.nextID
	s.events[e.ID] = e

	return e, nil
}

func (s *Store) QueryEvents(ctx context.Context, q event.ListQuery) ([]event.Event, int, error) {
	s.mu.RLock()
	matched := make([]event.Event, 0, len(s.events))
	for _, e := range s.events {
		if matches(e, q) {
			matched = append(matched, e)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b event.Event) int {
		c := compareBy(a, b, q.Sort)
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if q.Order == event.OrderDesc {
			return -c
		}
		return c
	})

	total := len(matched)
	start := min(q.Offset(), total)
	end := min(start+q.Limit(), total)

	return matched[start:end], total, nil
}

func matches(e event.Event, q event.ListQuery) bool {
	if q.Query != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(q.Query)) {
		return false
	}

	switch q.Status {
	case event.StatusActive:
		if e.Cancelled {
			return false
		}
	case event.StatusCancelled:
		if !e.Cancelled {
			return false
		}
	}

	if q.From != nil && e.Date.Before(*q.From) {
		return false
	}

	if q.To != nil && e.Date.After(*q.To) {
		return false
	}

	return true
}

func compareBy(a, b event.Event, field event.SortField) int {
	switch field {
	case event.SortByName:
		return strings.Compare(a.Name, b.Name)
	case event.SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return a.Date.Compare(b.Date)
	}
}

func (s *Store) GetEvent(ctx context.Context, id int64) (event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return event.Event{}, event.ErrNotFound
	}

	return e, nil
}

func (s *Store) InsertRegistration(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[reg.EventID]
	if !ok {
		return registration.Registration{}, event.ErrNotFound
	}

	if e.Cancelled {
		return registration.Registration{}, event.ErrCancelled
	}

	if len(s.regs[e.ID]) >= e.Capacity {
		return registration.Registration{}, registration.ErrEventFull
	}

	key := regKey{eventID: e.ID, email: reg.Email}
	if _, dup := s.emails[key]; dup {
		return registration.Registration{}, registration.ErrAlreadyRegistered
	}

	s.nextRegID++
	reg.ID = s.nextRegID
	s.emails[key] = struct{}{}
	s.regs[e.ID] = append(s.regs[e.ID], reg)

	return reg, nil
}

func (s *Store) CountRegistrations(ctx context.Context, eventID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.regs[eventID]), nil
}

func (s *Store) SetCancelled(ctx context.Context, id int64) (event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok {
		return event.Event{}, event.ErrNotFound
	}

	if e.Cancelled {
		return event.Event{}, event.ErrAlreadyCancelled
	}

	e.Cancelled = true
	s.events[id] = e

	return e, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}
