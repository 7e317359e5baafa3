// Package repository declares the persistence contracts for users and events.
// Backends live in the mongo, postgres and memory subpackages.
package repository

import (
	"context"
	"errors"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidID is returned when an identifier is not in the backend's format.
var ErrInvalidID = errors.New("invalid id")

// ErrDuplicateEmail is returned when an email is already taken by another user.
var ErrDuplicateEmail = errors.New("email already in use")

// ErrAlreadyRegistered is returned when the user is already in the registrant set.
var ErrAlreadyRegistered = errors.New("user already registered for this event")

// ErrNotRegistered is returned when the user is not in the registrant set.
var ErrNotRegistered = errors.New("user not registered for this event")

// UserRepository persists user accounts.
type UserRepository interface {
	// Create assigns an ID and timestamps and stores the user.
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	// ListByIDs returns the users that exist among ids, in ids order.
	ListByIDs(ctx context.Context, ids []string) ([]model.User, error)
	// UpdateProfile sets name and email and returns the stored user.
	UpdateProfile(ctx context.Context, id, name, email string) (*model.User, error)
}

// EventRepository persists events and their membership sets.
type EventRepository interface {
	// Create assigns an ID and timestamps and stores the event.
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	// List returns matching events ordered by date ascending.
	List(ctx context.Context, filter model.EventFilter) ([]model.Event, error)
	// Update applies patch without touching the registrant or attendee sets.
	Update(ctx context.Context, id string, patch model.EventPatch) (*model.Event, error)
	Delete(ctx context.Context, id string) error

	// AddRegistrant inserts userID in one conditional write. It returns
	// ErrAlreadyRegistered when userID is already present.
	AddRegistrant(ctx context.Context, eventID, userID string) error
	// RemoveRegistrant removes userID in one conditional write. It returns
	// ErrNotRegistered when userID is absent.
	RemoveRegistrant(ctx context.Context, eventID, userID string) error
	// AddAttendees unions userIDs into the attendee set.
	AddAttendees(ctx context.Context, eventID string, userIDs []string) error
}
