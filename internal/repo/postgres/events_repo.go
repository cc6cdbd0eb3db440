package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/planhub/internal/domain/event"
	"github.com/geocoder89/planhub/internal/domain/task"
	"github.com/geocoder89/planhub/internal/observability"
	"github.com/geocoder89/planhub/internal/wizard"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventsRepo is the production wizard.Planner: it persists the records the
// stage transitions create and finalizes the event on submission.
type EventsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewEventsRepo(pool *pgxpool.Pool, prom *observability.Prom) *EventsRepo {
	return &EventsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *EventsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}

	return fn()
}

func (r *EventsRepo) CreateEvent(ctx context.Context, e event.MainEvent) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	var locationID, externalName, externalAddress string

	switch e.Venue.Kind {
	case event.VenueInternal:
		locationID = e.Venue.Internal.LocationID
	case event.VenueExternal:
		externalName = e.Venue.External.Name
		externalAddress = e.Venue.External.Address
	}

	err := r.observe("events.create", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO events
				(id, name, description, start_at, end_at, expected_attendees,
				 estimated_budget, venue_location_id, venue_external_name,
				 venue_external_address, created_by, status, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8,''),NULLIF($9,''),NULLIF($10,''),NULLIF($11,''),'draft',NOW(),NOW())
		`, e.ID, e.Name, e.Description, e.StartAt, e.EndAt, e.ExpectedAttendees,
			e.EstimatedBudget, locationID, externalName, externalAddress, e.CreatedBy)
		return err
	})

	if err != nil {
		return "", classifyRemote("create_event", err)
	}

	return e.ID, nil
}

func (r *EventsRepo) CreateExternalLocation(ctx context.Context, name, address string) (string, error) {
	id := uuid.NewString()

	err := r.observe("external_locations.create", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO external_locations (id, name, address, created_at)
			VALUES ($1,$2,$3,NOW())
		`, id, name, address)
		return err
	})

	if err != nil {
		return "", classifyRemote("create_external_location", err)
	}

	return id, nil
}

func (r *EventsRepo) CreateSubEvent(ctx context.Context, eventID string, sub event.SubEvent) (string, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}

	// flatten the venue union to exactly one of the reference columns;
	// all three empty means online without a meeting link yet
	var locationID, externalLocationID, meetingLink string

	switch sub.Venue.Kind {
	case event.VenueInternal:
		locationID = sub.Venue.Internal.LocationID
	case event.VenueExternal:
		externalLocationID = sub.Venue.External.LocationID
	case event.VenueOnline:
		if sub.Venue.Online != nil {
			meetingLink = sub.Venue.Online.MeetingLink
		}
	}

	err := r.observe("sub_events.create", func() error {
		tx, err := r.pool.Begin(ctx)

		if err != nil {
			return err
		}

		defer func() {
			_ = tx.Rollback(ctx)
		}()

		_, err = tx.Exec(ctx, `
			INSERT INTO sub_events
				(id, event_id, name, description, session_type, track, start_at,
				 end_at, location_id, external_location_id, meeting_link,
				 expected_attendees, banner_ref, total_cost, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NULLIF($9,''),NULLIF($10,''),NULLIF($11,''),$12,$13,$14,NOW(),NOW())
		`, sub.ID, eventID, sub.Name, sub.Description, sub.SessionType, sub.Track,
			sub.StartAt, sub.EndAt, locationID, externalLocationID, meetingLink,
			sub.ExpectedAttendees, sub.BannerRef, sub.TotalCost())

		if err != nil {
			return err
		}

		for i, q := range sub.Quotations {
			_, err = tx.Exec(ctx, `
				INSERT INTO quotation_items
					(id, sub_event_id, position, description, quantity, unit_price,
					 rental_unit, resource_id)
				VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''),NULLIF($8,''))
			`, uuid.NewString(), sub.ID, i, q.Description, q.Quantity, q.UnitPrice,
				string(q.RentalUnit), q.ResourceID)

			if err != nil {
				return err
			}
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		return "", classifyRemote("create_sub_event", err)
	}

	return sub.ID, nil
}

func (r *EventsRepo) CreateTask(ctx context.Context, t task.Task) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	status := t.Status

	if status == "" {
		status = task.StatusTodo
	}

	err := r.observe("tasks.create", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO tasks
				(id, sub_event_id, title, description, assignee_id, start_at,
				 due_at, status, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW())
		`, t.ID, t.SubEventID, t.Title, t.Description, t.AssigneeID,
			t.StartAt, t.DueAt, string(status))
		return err
	})

	if err != nil {
		return "", classifyRemote("create_task", err)
	}

	return t.ID, nil
}

func (r *EventsRepo) FinalizeEvent(ctx context.Context, eventID string) error {
	err := r.observe("events.finalize", func() error {
		tag, err := r.pool.Exec(ctx, `
			UPDATE events
				 SET status = 'submitted',
						 updated_at = NOW()
			 WHERE id = $1 AND status = 'draft'
		`, eventID)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return event.ErrNotFound
		}

		return nil
	})

	if err != nil {
		return classifyRemote("finalize_event", err)
	}

	return nil
}

// classifyRemote maps a persistence failure to the two user-facing kinds:
// a constraint/data rejection vs an unreachable or unexpected backend.
func classifyRemote(op string, err error) error {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		// class 22 = data exception, class 23 = integrity violation
		if strings.HasPrefix(pgErr.Code, "22") || strings.HasPrefix(pgErr.Code, "23") {
			return &wizard.RemoteError{Op: op, Err: err}
		}
	}

	if errors.Is(err, event.ErrNotFound) {
		return &wizard.RemoteError{Op: op, Err: err}
	}

	return &wizard.RemoteError{Op: op, Unreachable: true, Err: err}
}
