// Package sqlite is the database/sql store over modernc.org/sqlite. The handle
// must come from db.OpenSQLite: one connection and IMMEDIATE transactions are
// what make the registration check-then-insert atomic.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/geocoder89/eventreg/internal/domain/event"
	"github.com/geocoder89/eventreg/internal/observability"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// timeLayout is fixed width so TEXT comparison orders like time.
const timeLayout = "2006-01-02T15:04:05.000Z"

type Store struct {
	*EventsRepo
	*RegistrationsRepo
	db *sql.DB
}

func NewStore(db *sql.DB, prom *observability.Prom) *Store {
	return &Store{
		EventsRepo:        NewEventsRepo(db, prom),
		RegistrationsRepo: NewRegistrationsRepo(db, prom),
		db:                db,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return event.NormalizeTime(t), nil
}

func isUniqueViolation(err error) bool {
	var liteErr *sqlite.Error
	return errors.As(err, &liteErr) && liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
