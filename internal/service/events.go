// Package service holds the request-independent rules of the registration
// system. It validates input, orders the registration checks and derives stats.
// It is stateless; everything it knows comes from the Store on each call.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/eventreg/internal/apperr"
	"github.com/geocoder89/eventreg/internal/domain/event"
	"github.com/geocoder89/eventreg/internal/domain/registration"
	"github.com/go-playground/validator/v10"
)

type EventService struct {
	store    Store
	validate *validator.Validate
	now      func() time.Time
}

type Option func(*EventService)

// WithClock replaces the clock used for the future-date rule.
func WithClock(now func() time.Time) Option {
	return func(s *EventService) {
		s.now = now
	}
}

func NewEventService(store Store, opts ...Option) *EventService {
	s := &EventService{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *EventService) CreateEvent(ctx context.Context, req event.CreateEventRequest) (event.Event, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.Location = strings.TrimSpace(req.Location)
	req.Date = strings.TrimSpace(req.Date)

	if err := s.validateStruct(req, msgEventFieldsRequired); err != nil {
		return event.Event{}, err
	}

	date, err := event.ParseTimestamp(req.Date)
	if err != nil {
		return event.Event{}, apperr.Validation("invalid_date", msgInvalidDate)
	}

	if !date.After(s.now()) {
		return event.Event{}, apperr.Validation("date_not_in_future", msgDateNotFuture)
	}

	capacity, ok := event.ParseCapacity(req.Capacity)
	if !ok {
		return event.Event{}, apperr.Validation("invalid_capacity", msgInvalidCapacity)
	}

	created, err := s.store.InsertEvent(ctx, event.NewFromCreateRequest(req, date, capacity))
	if err != nil {
		return event.Event{}, classify(err)
	}

	return created, nil
}

func (s *EventService) ListEvents(ctx context.Context, q event.ListQuery) (event.ListResult, error) {
	items, total, err := s.store.QueryEvents(ctx, q)
	if err != nil {
		return event.ListResult{}, classify(err)
	}

	if items == nil {
		items = []event.Event{}
	}

	return event.ListResult{
		Items:    items,
		Total:    total,
		Page:     q.Page,
		PageSize: q.PageSize,
	}, nil
}

func (s *EventService) GetEvent(ctx context.Context, id int64) (event.Event, error) {
	e, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return event.Event{}, classify(err)
	}

	return e, nil
}

// Register checks, in order: required fields, event exists, not cancelled, not
// full, not a duplicate. The first three are pre-checks for clear errors; the
// store repeats them atomically with the insert, and owns the duplicate check.
func (s *EventService) Register(ctx context.Context, eventID int64, req registration.CreateRegistrationRequest) (registration.Registration, error) {
	req.EventID = eventID
	req.Normalize()

	if err := s.validateStruct(req, msgRegFieldsRequired); err != nil {
		return registration.Registration{}, err
	}

	e, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return registration.Registration{}, classify(err)
	}

	if e.Cancelled {
		return registration.Registration{}, classify(event.ErrCancelled)
	}

	count, err := s.store.CountRegistrations(ctx, eventID)
	if err != nil {
		return registration.Registration{}, classify(err)
	}

	if count >= e.Capacity {
		return registration.Registration{}, classify(registration.ErrEventFull)
	}

	reg, err := s.store.InsertRegistration(ctx, registration.NewFromCreateRequest(req))
	if err != nil {
		return registration.Registration{}, classify(err)
	}

	return reg, nil
}

// CancelEvent is the only transition out of the active state. Cancelling twice is
// a conflict, not a no-op.
func (s *EventService) CancelEvent(ctx context.Context, id int64) (event.Event, error) {
	e, err := s.store.SetCancelled(ctx, id)
	if err != nil {
		return event.Event{}, classify(err)
	}

	return e, nil
}

func (s *EventService) Stats(ctx context.Context, id int64) (event.Stats, error) {
	e, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return event.Stats{}, classify(err)
	}

	total, err := s.store.CountRegistrations(ctx, id)
	if err != nil {
		return event.Stats{}, classify(err)
	}

	return event.NewStats(e, total), nil
}

func (s *EventService) validateStruct(v any, requiredMsg string) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return apperr.Validation("missing_fields", requiredMsg)
	}

	return apperr.Internal(err)
}
