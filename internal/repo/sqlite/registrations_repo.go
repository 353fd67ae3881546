package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/geocoder89/eventreg/internal/domain/event"
	"github.com/geocoder89/eventreg/internal/domain/registration"
	"github.com/geocoder89/eventreg/internal/observability"
)

type RegistrationsRepo struct {
	db   *sql.DB
	prom *observability.Prom
}

func NewRegistrationsRepo(db *sql.DB, prom *observability.Prom) *RegistrationsRepo {
	return &RegistrationsRepo{
		db:   db,
		prom: prom,
	}
}

// InsertRegistration re-checks the event inside a write transaction before the
// insert. BEGIN IMMEDIATE takes the database write lock up front, so no other
// registration can slip in between the count and the insert.
func (r *RegistrationsRepo) InsertRegistration(ctx context.Context, reg registration.Registration) (out registration.Registration, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback()
	}()

	var (
		capacity, current int
		cancelled         bool
	)

	err = r.prom.ObserveDB("registrations.insert.capacity_check", func() error {
		return tx.QueryRowContext(ctx, `
			SELECT e.capacity, e.cancelled,
				(SELECT COUNT(*) FROM registrations r WHERE r.event_id = e.id)
			FROM events e
			WHERE e.id = ?`, reg.EventID).Scan(&capacity, &cancelled, &current)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = event.ErrNotFound
		}
		return
	}

	if cancelled {
		err = event.ErrCancelled
		return
	}

	if current >= capacity {
		err = registration.ErrEventFull
		return
	}

	err = r.prom.ObserveDB("registrations.insert", func() error {
		res, e := tx.ExecContext(ctx,
			`INSERT INTO registrations (event_id, name, email, created_at) VALUES (?, ?, ?, ?)`,
			reg.EventID, reg.Name, reg.Email, formatTime(reg.CreatedAt),
		)
		if e != nil {
			return e
		}
		reg.ID, e = res.LastInsertId()
		return e
	})
	if err != nil {
		if isUniqueViolation(err) {
			err = registration.ErrAlreadyRegistered
		}
		return
	}

	if err = tx.Commit(); err != nil {
		return
	}

	out = reg
	return
}

func (r *RegistrationsRepo) CountRegistrations(ctx context.Context, eventID int64) (int, error) {
	var total int
	err := r.prom.ObserveDB("registrations.count", func() error {
		return r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = ?`, eventID).Scan(&total)
	})
	return total, err
}
