package service

import (
	"errors"

	"github.com/geocoder89/eventreg/internal/apperr"
	"github.com/geocoder89/eventreg/internal/domain/event"
	"github.com/geocoder89/eventreg/internal/domain/registration"
)

const (
	msgEventFieldsRequired = "name, date, capacity are required"
	msgInvalidDate         = "Event date must be a valid date"
	msgDateNotFuture       = "Event date must be in the future"
	msgInvalidCapacity     = "capacity must be a positive integer"
	msgRegFieldsRequired   = "name and email are required"
	msgEventNotFound       = "Event not found"
	msgEventCancelled      = "Event is cancelled"
	msgEventFull           = "Event is full"
	msgAlreadyRegistered   = "This email is already registered for the event"
	msgAlreadyCancelled    = "Event already cancelled"
)

// classify turns store sentinels into the public taxonomy. Unknown errors become
// internal errors that keep the store's message.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, event.ErrNotFound):
		return apperr.NotFound(msgEventNotFound, err)
	case errors.Is(err, event.ErrCancelled):
		return apperr.Conflict("event_cancelled", msgEventCancelled, err)
	case errors.Is(err, event.ErrAlreadyCancelled):
		return apperr.Conflict("already_cancelled", msgAlreadyCancelled, err)
	case errors.Is(err, registration.ErrEventFull):
		return apperr.Conflict("event_full", msgEventFull, err)
	case errors.Is(err, registration.ErrAlreadyRegistered):
		return apperr.Conflict("already_registered", msgAlreadyRegistered, err)
	default:
		return apperr.Internal(err)
	}
}
