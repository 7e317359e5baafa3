package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/Shivanand-hulikatti/eventhub/internal/repository"
	"github.com/Shivanand-hulikatti/eventhub/internal/repository/repotest"
)

func seedEvent(t *testing.T, repo repository.EventRepository, date time.Time) *model.Event {
	t.Helper()
	e := &model.Event{Title: "Go meetup", Description: "talks", Location: "Pune", Date: date, CreatedBy: uuid.NewString()}
	if err := repo.Create(context.Background(), e); err != nil {
		t.Fatalf("create event: %v", err)
	}
	return e
}

func TestGetByIDInvalidAndMissing(t *testing.T) {
	repo := New().Events()
	if _, err := repo.GetByID(context.Background(), "not-a-uuid"); !errors.Is(err, repository.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := repo.GetByID(context.Background(), uuid.NewString()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddAttendeesUnion(t *testing.T) {
	repo := New().Events()
	e := seedEvent(t, repo, time.Now())
	a, b, c := uuid.NewString(), uuid.NewString(), uuid.NewString()

	if err := repo.AddAttendees(context.Background(), e.ID, []string{a, b}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := repo.AddAttendees(context.Background(), e.ID, []string{b, c, c}); err != nil {
		t.Fatalf("second add: %v", err)
	}
	got, _ := repo.GetByID(context.Background(), e.ID)
	want := []string{a, b, c}
	if len(got.Attendees) != len(want) {
		t.Fatalf("expected %v, got %v", want, got.Attendees)
	}
	for i := range want {
		if got.Attendees[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got.Attendees)
		}
	}
}

func TestListFiltersAndOrder(t *testing.T) {
	repo := New().Events()
	now := time.Now()
	later := seedEvent(t, repo, now.Add(48*time.Hour))
	sooner := seedEvent(t, repo, now.Add(24*time.Hour))
	seedEvent(t, repo, now.Add(-24*time.Hour))

	got, err := repo.List(context.Background(), model.EventFilter{From: now})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != sooner.ID || got[1].ID != later.ID {
		t.Fatalf("unexpected upcoming listing %+v", got)
	}

	got, _ = repo.List(context.Background(), model.EventFilter{CreatedBy: later.CreatedBy})
	if len(got) != 1 || got[0].ID != later.ID {
		t.Fatalf("unexpected creator listing %+v", got)
	}
}

func TestUserDuplicateEmail(t *testing.T) {
	repo := New().Users()
	first := &model.User{Name: "Asha", Email: "asha@example.com", PasswordHash: "x"}
	if err := repo.Create(context.Background(), first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Role != model.RoleUser {
		t.Fatalf("expected default role user, got %q", first.Role)
	}
	dup := &model.User{Name: "Other", Email: "ASHA@example.com", PasswordHash: "y"}
	if err := repo.Create(context.Background(), dup); !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	second := &model.User{Name: "Ravi", Email: "ravi@example.com", PasswordHash: "z"}
	_ = repo.Create(context.Background(), second)
	if _, err := repo.UpdateProfile(context.Background(), second.ID, "Ravi", "asha@example.com"); !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail on update, got %v", err)
	}
}

func TestContract(t *testing.T) {
	s := New()
	repotest.Run(t, repotest.Backend{
		Users:     s.Users(),
		Events:    s.Events(),
		MissingID: uuid.NewString,
	})
}
