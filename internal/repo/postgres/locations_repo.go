package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/planhub/internal/domain/location"
	"github.com/geocoder89/planhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LocationsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewLocationsRepo(pool *pgxpool.Pool, prom *observability.Prom) *LocationsRepo {
	return &LocationsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *LocationsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}

	return fn()
}

func (r *LocationsRepo) GetByID(ctx context.Context, id string) (location.Location, error) {
	var loc location.Location

	err := r.observe("locations.get", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT id, building, room_number, capacity, daily_rate, created_at, updated_at
			FROM locations
			WHERE id = $1
		`, id).Scan(&loc.ID, &loc.Building, &loc.RoomNumber, &loc.Capacity,
			&loc.DailyRate, &loc.CreatedAt, &loc.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return location.Location{}, location.ErrNotFound
		}

		return location.Location{}, err
	}

	return loc, nil
}

// GetAvailable lists rooms free of persisted sub-event bookings that
// overlap [start, end). The result is advisory: sub-events still being
// drafted in the same wizard session are not visible here and are checked
// by the conflict detector instead.
func (r *LocationsRepo) GetAvailable(ctx context.Context, start, end time.Time, filter location.AvailabilityFilter) ([]location.Location, error) {
	baseQuery := `
		SELECT l.id, l.building, l.room_number, l.capacity, l.daily_rate, l.created_at, l.updated_at
		FROM locations l
		WHERE NOT EXISTS (
			SELECT 1 FROM sub_events s
			WHERE s.location_id = l.id
				AND s.start_at < $2
				AND $1 < s.end_at
		)`

	args := []interface{}{start, end}
	argsPosition := 3

	var conds []string

	if filter.Building != nil {
		conds = append(conds, fmt.Sprintf("l.building = $%d", argsPosition))
		args = append(args, *filter.Building)
		argsPosition++
	}

	if filter.MinCapacity != nil {
		conds = append(conds, fmt.Sprintf("l.capacity >= $%d", argsPosition))
		args = append(args, *filter.MinCapacity)
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " AND " + strings.Join(conds, " AND ")
	}

	limit := filter.Limit

	if limit <= 0 {
		limit = 100
	}

	query += fmt.Sprintf(" ORDER BY l.building ASC, l.room_number ASC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)
	args = append(args, limit, filter.Offset)

	output := make([]location.Location, 0, limit)

	err := r.observe("locations.available", func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var loc location.Location

			err = rows.Scan(&loc.ID, &loc.Building, &loc.RoomNumber, &loc.Capacity,
				&loc.DailyRate, &loc.CreatedAt, &loc.UpdatedAt)

			if err != nil {
				return err
			}

			output = append(output, loc)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}
