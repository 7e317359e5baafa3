// Package memory implements the repositories in process memory. It backs
// tests and the "memory" store driver for local development.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/Shivanand-hulikatti/eventhub/internal/repository"
)

// Store holds users and events behind one lock.
type Store struct {
	mu     sync.RWMutex
	users  map[string]model.User
	events map[string]model.Event
	now    func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:  make(map[string]model.User),
		events: make(map[string]model.Event),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Users returns the store as a UserRepository.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Events returns the store as an EventRepository.
func (s *Store) Events() repository.EventRepository { return eventRepo{s} }

func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", repository.ErrInvalidID, id)
	}
	return nil
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	now := r.s.now()
	u.ID = uuid.New().String()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepo) List(_ context.Context) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r userRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r userRepo) UpdateProfile(_ context.Context, id, name, email string) (*model.User, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for otherID, other := range r.s.users {
		if otherID != id && strings.EqualFold(other.Email, email) {
			return nil, repository.ErrDuplicateEmail
		}
	}
	u.Name, u.Email = name, email
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	return &u, nil
}

type eventRepo struct{ s *Store }

func cloneEvent(e model.Event) model.Event {
	e.RegisteredUsers = slices.Clone(e.RegisteredUsers)
	e.Attendees = slices.Clone(e.Attendees)
	return e
}

func (r eventRepo) Create(_ context.Context, e *model.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	e.ID = uuid.New().String()
	e.CreatedAt, e.UpdatedAt = now, now
	if e.RegisteredUsers == nil {
		e.RegisteredUsers = []string{}
	}
	if e.Attendees == nil {
		e.Attendees = []string{}
	}
	r.s.events[e.ID] = cloneEvent(*e)
	return nil
}

func (r eventRepo) GetByID(_ context.Context, id string) (*model.Event, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e = cloneEvent(e)
	return &e, nil
}

func (r eventRepo) List(_ context.Context, f model.EventFilter) ([]model.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.Event, 0)
	for _, e := range r.s.events {
		if f.CreatedBy != "" && e.CreatedBy != f.CreatedBy {
			continue
		}
		if f.Registrant != "" && !e.HasRegistrant(f.Registrant) {
			continue
		}
		if !f.From.IsZero() && e.Date.Before(f.From) {
			continue
		}
		out = append(out, cloneEvent(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r eventRepo) Update(_ context.Context, id string, p model.EventPatch) (*model.Event, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Image != nil {
		e.Image = *p.Image
	}
	e.UpdatedAt = r.s.now()
	r.s.events[id] = e
	e = cloneEvent(e)
	return &e, nil
}

func (r eventRepo) Delete(_ context.Context, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.events, id)
	return nil
}

func (r eventRepo) AddRegistrant(_ context.Context, eventID, userID string) error {
	if err := validID(eventID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[eventID]
	if !ok {
		return repository.ErrNotFound
	}
	if e.HasRegistrant(userID) {
		return repository.ErrAlreadyRegistered
	}
	e.RegisteredUsers = append(slices.Clone(e.RegisteredUsers), userID)
	e.UpdatedAt = r.s.now()
	r.s.events[eventID] = e
	return nil
}

func (r eventRepo) RemoveRegistrant(_ context.Context, eventID, userID string) error {
	if err := validID(eventID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[eventID]
	if !ok {
		return repository.ErrNotFound
	}
	if !e.HasRegistrant(userID) {
		return repository.ErrNotRegistered
	}
	e.RegisteredUsers = slices.DeleteFunc(slices.Clone(e.RegisteredUsers), func(id string) bool { return id == userID })
	e.UpdatedAt = r.s.now()
	r.s.events[eventID] = e
	return nil
}

func (r eventRepo) AddAttendees(_ context.Context, eventID string, userIDs []string) error {
	if err := validID(eventID); err != nil {
		return err
	}
	for _, id := range userIDs {
		if err := validID(id); err != nil {
			return err
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[eventID]
	if !ok {
		return repository.ErrNotFound
	}
	attendees := slices.Clone(e.Attendees)
	for _, id := range userIDs {
		if !slices.Contains(attendees, id) {
			attendees = append(attendees, id)
		}
	}
	e.Attendees = attendees
	e.UpdatedAt = r.s.now()
	r.s.events[eventID] = e
	return nil
}
