package registration

import (
	"errors"
	"strings"
	"time"
)

type Registration struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"eventId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// if you are already registered.
var ErrAlreadyRegistered = errors.New("registration already exists")

// error if event is full
var ErrEventFull = errors.New("event is full")

type CreateRegistrationRequest struct {
	EventID int64  `json:"-"`
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
}

// Normalize trims both fields and lowercases the email, which is the form
// the (event, email) uniqueness rule is checked against.
func (r *CreateRegistrationRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// A factory to build a Registration from the incoming DTO

func NewFromCreateRequest(req CreateRegistrationRequest) Registration {
	return Registration{
		EventID:   req.EventID,
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}
