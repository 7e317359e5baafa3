// Package repotest holds a behavioural suite every repository backend must pass.
package repotest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/Shivanand-hulikatti/eventhub/internal/repository"
)

// Backend describes the repositories under test.
type Backend struct {
	Users  repository.UserRepository
	Events repository.EventRepository
	// MissingID returns a well-formed id that names no record.
	MissingID func() string
}

// Run executes the suite. Each subtest creates its own records with unique
// emails so the suite can share a database.
func Run(t *testing.T, b Backend) {
	t.Run("AddRegistrantOnce", func(t *testing.T) { addRegistrantOnce(t, b) })
	t.Run("ConcurrentAddRegistrant", func(t *testing.T) { concurrentAddRegistrant(t, b) })
	t.Run("RemoveRegistrant", func(t *testing.T) { removeRegistrant(t, b) })
	t.Run("MissingAndInvalid", func(t *testing.T) { missingAndInvalid(t, b) })
	t.Run("AttendeesUnion", func(t *testing.T) { attendeesUnion(t, b) })
	t.Run("UpdateKeepsSets", func(t *testing.T) { updateKeepsSets(t, b) })
	t.Run("ListFilters", func(t *testing.T) { listFilters(t, b) })
	t.Run("Users", func(t *testing.T) { users(t, b) })
}

var seq struct {
	sync.Mutex
	n int
}

func uniqueEmail() string {
	seq.Lock()
	defer seq.Unlock()
	seq.n++
	return fmt.Sprintf("repotest-%d-%d@example.com", time.Now().UnixNano(), seq.n)
}

// NewUser stores a user with a unique email.
func NewUser(t *testing.T, repo repository.UserRepository, role model.Role) *model.User {
	t.Helper()
	u := &model.User{Name: "Test User", Email: uniqueEmail(), PasswordHash: "hash", Role: role}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// NewEvent stores an event created by creatorID at date.
func NewEvent(t *testing.T, repo repository.EventRepository, creatorID string, date time.Time) *model.Event {
	t.Helper()
	e := &model.Event{
		Title:       "Event",
		Description: "Description",
		Location:    "Hall A",
		Date:        date.UTC().Truncate(time.Millisecond),
		CreatedBy:   creatorID,
	}
	if err := repo.Create(context.Background(), e); err != nil {
		t.Fatalf("create event: %v", err)
	}
	return e
}

func addRegistrantOnce(t *testing.T, b Backend) {
	ctx := context.Background()
	admin := NewUser(t, b.Users, model.RoleAdmin)
	user := NewUser(t, b.Users, model.RoleUser)
	e := NewEvent(t, b.Events, admin.ID, time.Now().Add(24*time.Hour))

	if err := b.Events.AddRegistrant(ctx, e.ID, user.ID); err != nil {
		t.Fatalf("add registrant: %v", err)
	}
	if err := b.Events.AddRegistrant(ctx, e.ID, user.ID); !errors.Is(err, repository.ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	got, err := b.Events.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.RegisteredUsers) != 1 || got.RegisteredUsers[0] != user.ID {
		t.Fatalf("unexpected registrants %v", got.RegisteredUsers)
	}
}

func concurrentAddRegistrant(t *testing.T, b Backend) {
	ctx := context.Background()
	admin := NewUser(t, b.Users, model.RoleAdmin)
	user := NewUser(t, b.Users, model.RoleUser)
	e := NewEvent(t, b.Events, admin.ID, time.Now().Add(24*time.Hour))

	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := b.Events.AddRegistrant(ctx, e.ID, user.ID)
			switch {
			case err == nil:
				mu.Lock()
				successes++
				mu.Unlock()
			case !errors.Is(err, repository.ErrAlreadyRegistered):
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one successful add, got %d", successes)
	}
	got, _ := b.Events.GetByID(ctx, e.ID)
	if len(got.RegisteredUsers) != 1 {
		t.Fatalf("expected one registrant, got %v", got.RegisteredUsers)
	}
}

func removeRegistrant(t *testing.T, b Backend) {
	ctx := context.Background()
	admin := NewUser(t, b.Users, model.RoleAdmin)
	user := NewUser(t, b.Users, model.RoleUser)
	e := NewEvent(t, b.Events, admin.ID, time.Now().Add(time.Hour))

	if err := b.Events.RemoveRegistrant(ctx, e.ID, user.ID); !errors.Is(err, repository.ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
	if err := b.Events.AddRegistrant(ctx, e.ID, user.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := b.Events.RemoveRegistrant(ctx, e.ID, user.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, _ := b.Events.GetByID(ctx, e.ID)
	if len(got.RegisteredUsers) != 0 {
		t.Fatalf("expected empty registrant set, got %v", got.RegisteredUsers)
	}
}

func missingAndInvalid(t *testing.T, b Backend) {
	ctx := context.Background()
	user := NewUser(t, b.Users, model.RoleUser)

	if _, err := b.Events.GetByID(ctx, "not-an-id"); !errors.Is(err, repository.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	missing := b.MissingID()
	if _, err := b.Events.GetByID(ctx, missing); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := b.Events.AddRegistrant(ctx, missing, user.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on add, got %v", err)
	}
	if err := b.Events.RemoveRegistrant(ctx, missing, user.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on remove, got %v", err)
	}
	if err := b.Events.Delete(ctx, missing); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
}

func attendeesUnion(t *testing.T, b Backend) {
	ctx := context.Background()
	admin := NewUser(t, b.Users, model.RoleAdmin)
	u1 := NewUser(t, b.Users, model.RoleUser)
	u2 := NewUser(t, b.Users, model.RoleUser)
	e := NewEvent(t, b.Events, admin.ID, time.Now().Add(-time.Hour))

	if err := b.Events.AddAttendees(ctx, e.ID, []string{u1.ID}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := b.Events.AddAttendees(ctx, e.ID, []string{u1.ID, u2.ID}); err != nil {
		t.Fatalf("second add: %v", err)
	}
	got, _ := b.Events.GetByID(ctx, e.ID)
	if len(got.Attendees) != 2 || got.Attendees[0] != u1.ID || got.Attendees[1] != u2.ID {
		t.Fatalf("unexpected attendees %v", got.Attendees)
	}
	if len(got.RegisteredUsers) != 0 {
		t.Fatalf("attendance must not imply registration, got %v", got.RegisteredUsers)
	}
}

func updateKeepsSets(t *testing.T, b Backend) {
	ctx := context.Background()
	admin := NewUser(t, b.Users, model.RoleAdmin)
	user := NewUser(t, b.Users, model.RoleUser)
	e := NewEvent(t, b.Events, admin.ID, time.Now().Add(time.Hour))
	if err := b.Events.AddRegistrant(ctx, e.ID, user.ID); err != nil {
		t.Fatalf("add: %v", err)
	}

	title := "Renamed"
	image := "/uploads/poster.png"
	got, err := b.Events.Update(ctx, e.ID, model.EventPatch{Title: &title, Image: &image})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != title || got.Image != image || got.Location != e.Location {
		t.Fatalf("unexpected event after update: %+v", got)
	}
	if !got.HasRegistrant(user.ID) {
		t.Fatal("update dropped the registrant set")
	}
	if got.CreatedBy != admin.ID {
		t.Fatalf("creator changed to %q", got.CreatedBy)
	}
}

func listFilters(t *testing.T, b Backend) {
	ctx := context.Background()
	creator := NewUser(t, b.Users, model.RoleAdmin)
	user := NewUser(t, b.Users, model.RoleUser)
	now := time.Now()
	past := NewEvent(t, b.Events, creator.ID, now.Add(-time.Hour))
	future := NewEvent(t, b.Events, creator.ID, now.Add(time.Hour))
	if err := b.Events.AddRegistrant(ctx, past.ID, user.ID); err != nil {
		t.Fatalf("add: %v", err)
	}

	mine, err := b.Events.List(ctx, model.EventFilter{CreatedBy: creator.ID})
	if err != nil {
		t.Fatalf("list by creator: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != past.ID || mine[1].ID != future.ID {
		t.Fatalf("unexpected creator listing %+v", mine)
	}

	registered, err := b.Events.List(ctx, model.EventFilter{Registrant: user.ID})
	if err != nil {
		t.Fatalf("list by registrant: %v", err)
	}
	if len(registered) != 1 || registered[0].ID != past.ID {
		t.Fatalf("unexpected registrant listing %+v", registered)
	}

	upcoming, err := b.Events.List(ctx, model.EventFilter{CreatedBy: creator.ID, From: now})
	if err != nil {
		t.Fatalf("list upcoming: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].ID != future.ID {
		t.Fatalf("unexpected upcoming listing %+v", upcoming)
	}
}

func users(t *testing.T, b Backend) {
	ctx := context.Background()
	u := NewUser(t, b.Users, "")
	if u.Role != model.RoleUser {
		t.Fatalf("expected default role user, got %q", u.Role)
	}

	dup := &model.User{Name: "Dup", Email: u.Email, PasswordHash: "x"}
	if err := b.Users.Create(ctx, dup); !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	byEmail, err := b.Users.GetByEmail(ctx, u.Email)
	if err != nil || byEmail.ID != u.ID || byEmail.PasswordHash != "hash" {
		t.Fatalf("get by email: %+v, %v", byEmail, err)
	}

	other := NewUser(t, b.Users, model.RoleUser)
	list, err := b.Users.ListByIDs(ctx, []string{other.ID, b.MissingID(), u.ID})
	if err != nil {
		t.Fatalf("list by ids: %v", err)
	}
	if len(list) != 2 || list[0].ID != other.ID || list[1].ID != u.ID {
		t.Fatalf("unexpected ListByIDs result %+v", list)
	}

	newEmail := uniqueEmail()
	updated, err := b.Users.UpdateProfile(ctx, u.ID, "Renamed", newEmail)
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Name != "Renamed" || updated.Email != newEmail || updated.Role != model.RoleUser {
		t.Fatalf("unexpected profile %+v", updated)
	}
	if _, err := b.Users.UpdateProfile(ctx, other.ID, "Other", newEmail); !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail on update, got %v", err)
	}
	if _, err := b.Users.GetByID(ctx, b.MissingID()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
