// Package postgres is the pgx store. Capacity is enforced under a row lock on
// the event; duplicates by the (event_id, email) unique constraint.
package postgres

import (
	"context"

	"github.com/geocoder89/eventreg/internal/observability"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	*EventsRepo
	*RegistrationRepo
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool, prom *observability.Prom) *Store {
	return &Store{
		EventsRepo:       NewEventsRepo(pool, prom),
		RegistrationRepo: NewRegistrationsRepo(pool, prom),
		pool:             pool,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
