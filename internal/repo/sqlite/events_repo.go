package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/eventreg/internal/domain/event"
	"github.com/geocoder89/eventreg/internal/observability"
	"github.com/geocoder89/eventreg/internal/repo/sqlutil"
)

const eventColumns = `id, name, description, location, starts_at, capacity, cancelled, created_at`

type EventsRepo struct {
	db   *sql.DB
	prom *observability.Prom
}

func NewEventsRepo(db *sql.DB, prom *observability.Prom) *EventsRepo {
	return &EventsRepo{
		db:   db,
		prom: prom,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (event.Event, error) {
	var (
		e                   event.Event
		startsAt, createdAt string
	)

	if err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Location, &startsAt, &e.Capacity, &e.Cancelled, &createdAt); err != nil {
		return event.Event{}, err
	}

	var err error
	if e.Date, err = parseTime(startsAt); err != nil {
		return event.Event{}, fmt.Errorf("events.starts_at: %w", err)
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return event.Event{}, fmt.Errorf("events.created_at: %w", err)
	}

	return e, nil
}

func (r *EventsRepo) InsertEvent(ctx context.Context, e event.Event) (event.Event, error) {
	err := r.prom.ObserveDB("events.insert", func() error {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO events (name, description, location, starts_at, capacity, cancelled, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.Name, e.Description, e.Location, formatTime(e.Date), e.Capacity, e.Cancelled, formatTime(e.CreatedAt),
		)
		if err != nil {
			return err
		}

		e.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return event.Event{}, err
	}

	return e, nil
}

func (r *EventsRepo) QueryEvents(ctx context.Context, q event.ListQuery) ([]event.Event, int, error) {
	var (
		conds []string
		args  []any
	)

	if q.Query != "" {
		// LIKE is case-insensitive for ASCII in SQLite.
		conds = append(conds, `name LIKE ? ESCAPE '\'`)
		args = append(args, sqlutil.ContainsPattern(q.Query))
	}

	switch q.Status {
	case event.StatusActive:
		conds = append(conds, "cancelled = 0")
	case event.StatusCancelled:
		conds = append(conds, "cancelled = 1")
	}

	if q.From != nil {
		conds = append(conds, "starts_at >= ?")
		args = append(args, formatTime(*q.From))
	}

	if q.To != nil {
		conds = append(conds, "starts_at <= ?")
		args = append(args, formatTime(*q.To))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	err := r.prom.ObserveDB("events.count", func() error {
		return r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events"+where, args...).Scan(&total)
	})
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT " + eventColumns + " FROM events" + where +
		sqlutil.OrderBy(q.Sort, q.Order) + " LIMIT ? OFFSET ?"
	args = append(args, q.Limit(), q.Offset())

	out := make([]event.Event, 0, q.Limit())
	err = r.prom.ObserveDB("events.list", func() error {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			e, err := scanEvent(rows)
			if err != nil {
				return err
			}
			out = append(out, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (r *EventsRepo) GetEvent(ctx context.Context, id int64) (event.Event, error) {
	var e event.Event
	err := r.prom.ObserveDB("events.get", func() error {
		var err error
		e, err = scanEvent(r.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM events WHERE id = ?", id))
		return err
	})

	if errors.Is(err, sql.ErrNoRows) {
		return event.Event{}, event.ErrNotFound
	}
	if err != nil {
		return event.Event{}, err
	}

	return e, nil
}

// SetCancelled flips an active event in one conditional UPDATE. When nothing
// matched, the event is either missing or already cancelled.
func (r *EventsRepo) SetCancelled(ctx context.Context, id int64) (event.Event, error) {
	var e event.Event
	err := r.prom.ObserveDB("events.cancel", func() error {
		var err error
		e, err = scanEvent(r.db.QueryRowContext(ctx,
			"UPDATE events SET cancelled = 1 WHERE id = ? AND cancelled = 0 RETURNING "+eventColumns, id))
		return err
	})

	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetEvent(ctx, id); getErr != nil {
			return event.Event{}, getErr
		}
		return event.Event{}, event.ErrAlreadyCancelled
	}
	if err != nil {
		return event.Event{}, err
	}

	return e, nil
}
