package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/Shivanand-hulikatti/eventhub/internal/repository"
)

const eventColumns = `id, title, description, date, location, COALESCE(image, ''), created_by,
	registered_users, attendees, created_at, updated_at`

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	if err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.Image, &e.CreatedBy,
		&e.RegisteredUsers, &e.Attendees, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new event with a generated UUID and empty membership sets.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	now := time.Now().UTC()
	e.ID = uuid.New().String()
	e.CreatedAt, e.UpdatedAt = now, now
	e.RegisteredUsers, e.Attendees = []string{}, []string{}

	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, title, description, date, location, image, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)`,
		e.ID, e.Title, e.Description, e.Date, e.Location, e.Image, e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	e, err := scanEvent(r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// List returns events matching filter ordered by date.
func (r *EventRepository) List(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	var (
		where []string
		args  []any
	)
	if f.CreatedBy != "" {
		args = append(args, f.CreatedBy)
		where = append(where, fmt.Sprintf("created_by = $%d", len(args)))
	}
	if f.Registrant != "" {
		args = append(args, f.Registrant)
		where = append(where, fmt.Sprintf("registered_users @> ARRAY[$%d::text]", len(args)))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}

	sql := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		sql += ` WHERE ` + strings.Join(where, " AND ")
	}
	sql += ` ORDER BY date ASC`

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Update applies the non-nil patch fields. Membership columns are untouched.
func (r *EventRepository) Update(ctx context.Context, id string, p model.EventPatch) (*model.Event, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	e, err := scanEvent(r.db.QueryRow(ctx,
		`UPDATE events SET
		   title       = COALESCE($2, title),
		   description = COALESCE($3, description),
		   date        = COALESCE($4, date),
		   location    = COALESCE($5, location),
		   image       = COALESCE($6, image),
		   updated_at  = NOW()
		 WHERE id = $1
		 RETURNING `+eventColumns,
		id, p.Title, p.Description, p.Date, p.Location, p.Image,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return e, nil
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddRegistrant appends userID only when it is not already present. The
// membership guard sits in the WHERE clause so two concurrent requests
// cannot both append.
func (r *EventRepository) AddRegistrant(ctx context.Context, eventID, userID string) error {
	if err := checkID(eventID); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE events
		 SET registered_users = array_append(registered_users, $2::text), updated_at = NOW()
		 WHERE id = $1 AND NOT ($2::text = ANY(registered_users))`,
		eventID, userID,
	)
	if err != nil {
		return fmt.Errorf("add registrant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missOrConflict(ctx, eventID, repository.ErrAlreadyRegistered)
	}
	return nil
}

// RemoveRegistrant removes userID only when it is present.
func (r *EventRepository) RemoveRegistrant(ctx context.Context, eventID, userID string) error {
	if err := checkID(eventID); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE events
		 SET registered_users = array_remove(registered_users, $2::text), updated_at = NOW()
		 WHERE id = $1 AND $2::text = ANY(registered_users)`,
		eventID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove registrant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missOrConflict(ctx, eventID, repository.ErrNotRegistered)
	}
	return nil
}

// AddAttendees unions userIDs into the attendee set, keeping first-seen order.
func (r *EventRepository) AddAttendees(ctx context.Context, eventID string, userIDs []string) error {
	if err := checkID(eventID); err != nil {
		return err
	}
	for _, id := range userIDs {
		if err := checkID(id); err != nil {
			return err
		}
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE events
		 SET attendees = ARRAY(
		       SELECT u.id
		       FROM unnest(attendees || $2::text[]) WITH ORDINALITY AS u(id, n)
		       GROUP BY u.id
		       ORDER BY MIN(u.n)
		     ),
		     updated_at = NOW()
		 WHERE id = $1`,
		eventID, userIDs,
	)
	if err != nil {
		return fmt.Errorf("add attendees: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// missOrConflict tells a missing event apart from a failed membership guard.
func (r *EventRepository) missOrConflict(ctx context.Context, eventID string, conflict error) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)`, eventID).Scan(&exists); err != nil {
		return fmt.Errorf("check event: %w", err)
	}
	if !exists {
		return repository.ErrNotFound
	}
	return conflict
}
