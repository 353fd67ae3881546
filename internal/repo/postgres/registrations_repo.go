package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/eventreg/internal/domain/event"
	"github.com/geocoder89/eventreg/internal/domain/registration"
	"github.com/geocoder89/eventreg/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RegistrationRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRegistrationsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RegistrationRepo {
	return &RegistrationRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *RegistrationRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return repo.pool.BeginTx(ctx, pgx.TxOptions{})
}

// InsertTx locks the event row, re-checks it, and inserts. Duplicates are left
// to the registrations_event_email_uniq constraint.
func (repo *RegistrationRepo) InsertTx(ctx context.Context, tx pgx.Tx, reg registration.Registration) (out registration.Registration, err error) {
	// 1) lock event row + check state and capacity
	var capacity, current int
	var cancelled bool
	err = repo.prom.ObserveDB("registrations.insert_tx.capacity_lock", func() error {
		return tx.QueryRow(ctx, `
		SELECT e.capacity, e.cancelled,
			(SELECT COUNT(*) FROM registrations r WHERE r.event_id = e.id) AS current
		FROM events e
		WHERE e.id = $1
		FOR UPDATE
	`, reg.EventID).Scan(&capacity, &cancelled, &current)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

	// 2) insert
	err = repo.prom.ObserveDB("registrations.insert_tx.insert", func() error {
		return tx.QueryRow(ctx, `
		INSERT INTO registrations (event_id, name, email, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, reg.EventID, reg.Name, reg.Email, reg.CreatedAt).Scan(&reg.ID)
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "registrations_event_email_uniq" {
			err = registration.ErrAlreadyRegistered
		}
		return
	}

	out = reg
	return
}

// InsertRegistration runs InsertTx in its own transaction, using the named
// return and deferred rollback.
func (repo *RegistrationRepo) InsertRegistration(ctx context.Context, reg registration.Registration) (out registration.Registration, err error) {
	tx, err := repo.BeginTx(ctx)
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	out, err = repo.InsertTx(ctx, tx, reg)
	if err != nil {
		return
	}

	err = tx.Commit(ctx)
	if err != nil {
		out = registration.Registration{}
		return
	}

	// success: registration is set err == nil
	return
}

func (repo *RegistrationRepo) CountRegistrations(ctx context.Context, eventID int64) (int, error) {
	op := "registrations.count_for_event"
	var total int
	err := repo.prom.ObserveDB(op, func() error {
		return repo.pool.QueryRow(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID).Scan(&total)
	})
	return total, err
}
