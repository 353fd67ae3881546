package service

import (
	"context"

	"github.com/geocoder89/eventreg/internal/domain/event"
	"github.com/geocoder89/eventreg/internal/domain/registration"
)

// Store is the persistence capability the service depends on. Implementations
// report rule violations with the domain sentinels (event.ErrNotFound,
// event.ErrCancelled, event.ErrAlreadyCancelled, registration.ErrEventFull,
// registration.ErrAlreadyRegistered) and nothing else.
//
// InsertRegistration must re-check existence, cancellation and capacity in the
// same transaction as the insert, and rely on a unique (event, email) constraint
// for duplicates. SetCancelled must only flip an active event.
type Store interface {
	InsertEvent(ctx context.Context, e event.Event) (event.Event, error)
	QueryEvents(ctx context.Context, q event.ListQuery) ([]event.Event, int, error)
	GetEvent(ctx context.Context, id int64) (event.Event, error)
	InsertRegistration(ctx context.Context, reg registration.Registration) (registration.Registration, error)
	CountRegistrations(ctx context.Context, eventID int64) (int, error)
	SetCancelled(ctx context.Context, id int64) (event.Event, error)
}
