package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/eventreg/internal/domain/event"
	"github.com/geocoder89/eventreg/internal/observability"
	"github.com/geocoder89/eventreg/internal/repo/sqlutil"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, name, description, location, starts_at, capacity, cancelled, created_at`

type EventsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// constructor function

func NewEventsRepo(pool *pgxpool.Pool, prom *observability.Prom) *EventsRepo {
	return &EventsRepo{
		pool: pool,
		prom: prom,
	}
}

func scanEvent(row pgx.Row) (event.Event, error) {
	var e event.Event
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Location, &e.Date, &e.Capacity, &e.Cancelled, &e.CreatedAt)
	if err != nil {
		return event.Event{}, err
	}

	e.Date = event.NormalizeTime(e.Date)
	e.CreatedAt = event.NormalizeTime(e.CreatedAt)
	return e, nil
}

func (r *EventsRepo) InsertEvent(ctx context.Context, e event.Event) (event.Event, error) {
	var created event.Event
	err := r.prom.ObserveDB("events.insert", func() error {
		var err error
		created, err = scanEvent(r.pool.QueryRow(ctx,
			`INSERT INTO events (name, description, location, starts_at, capacity, cancelled, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING `+eventColumns,
			e.Name, e.Description, e.Location, e.Date, e.Capacity, e.Cancelled, e.CreatedAt,
		))
		return err
	})
	if err != nil {
		return event.Event{}, err
	}

	return created, nil
}

func (r *EventsRepo) QueryEvents(ctx context.Context, q event.ListQuery) ([]event.Event, int, error) {
	var conds []string
	var args []any

	argsPosition := 1

	// filtered conditional checks.
	if q.Query != "" {
		conds = append(conds, fmt.Sprintf(`name ILIKE $%d ESCAPE '\'`, argsPosition))
		args = append(args, sqlutil.ContainsPattern(q.Query))
		argsPosition++
	}

	switch q.Status {
	case event.StatusActive:
		conds = append(conds, "cancelled = FALSE")
	case event.StatusCancelled:
		conds = append(conds, "cancelled = TRUE")
	}

	if q.From != nil {
		conds = append(conds, fmt.Sprintf("starts_at >= $%d", argsPosition))
		args = append(args, *q.From)
		argsPosition++
	}

	if q.To != nil {
		conds = append(conds, fmt.Sprintf("starts_at <= $%d", argsPosition))
		args = append(args, *q.To)
		argsPosition++
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	// the count runs separately so an out-of-range page still reports the total
	var total int
	err := r.prom.ObserveDB("events.count", func() error {
		return r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM events"+where, args...).Scan(&total)
	})
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT " + eventColumns + " FROM events" + where +
		sqlutil.OrderBy(q.Sort, q.Order) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)
	args = append(args, q.Limit(), q.Offset())

	output := make([]event.Event, 0, q.Limit())
	err = r.prom.ObserveDB("events.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			e, err := scanEvent(rows)
			if err != nil {
				return err
			}
			output = append(output, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}

	return output, total, nil
}

func (r *EventsRepo) GetEvent(ctx context.Context, id int64) (event.Event, error) {
	var e event.Event
	err := r.prom.ObserveDB("events.get", func() error {
		var err error
		e, err = scanEvent(r.pool.QueryRow(ctx, "SELECT "+eventColumns+" FROM events WHERE id = $1", id))
		return err
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return event.Event{}, event.ErrNotFound
	}
	if err != nil {
		return event.Event{}, err
	}

	return e, nil
}

// SetCancelled only matches active rows; no match means missing or already cancelled.
func (r *EventsRepo) SetCancelled(ctx context.Context, id int64) (event.Event, error) {
	var e event.Event
	err := r.prom.ObserveDB("events.cancel", func() error {
		var err error
		e, err = scanEvent(r.pool.QueryRow(ctx,
			`UPDATE events SET cancelled = TRUE
			 WHERE id = $1 AND cancelled = FALSE
			 RETURNING `+eventColumns, id))
		return err
	})

	if errors.Is(err, pgx.ErrNoRows) {
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
