package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/eventhub/internal/apperr"
	"github.com/Shivanand-hulikatti/eventhub/internal/logger"
	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/Shivanand-hulikatti/eventhub/internal/repository/memory"
	"github.com/Shivanand-hulikatti/eventhub/internal/repository/repotest"
)

var fixedNow = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

type recordingImages struct {
	mu      sync.Mutex
	removed []string
}

func (r *recordingImages) Remove(ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, ref)
	return nil
}

type eventFixture struct {
	store  *memory.Store
	svc    *EventService
	images *recordingImages
	admin  *model.User
	user   *model.User
}

func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()
	store := memory.New()
	images := &recordingImages{}
	svc := NewEventService(store.Events(), store.Users(), images, logger.Discard())
	svc.now = func() time.Time { return fixedNow }
	return &eventFixture{
		store:  store,
		svc:    svc,
		images: images,
		admin:  repotest.NewUser(t, store.Users(), model.RoleAdmin),
		user:   repotest.NewUser(t, store.Users(), model.RoleUser),
	}
}

func (f *eventFixture) event(t *testing.T, date time.Time) *model.Event {
	t.Helper()
	return repotest.NewEvent(t, f.store.Events(), f.admin.ID, date)
}

func (f *eventFixture) registrants(t *testing.T, id string) []string {
	t.Helper()
	e, err := f.store.Events().GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	return e.RegisteredUsers
}

func wantError(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *apperr.Error %q, got %v", msg, err)
	}
	if ae.Kind != kind || ae.Message != msg {
		t.Fatalf("expected %s %q, got %s %q", kind, msg, ae.Kind, ae.Message)
	}
}

func TestRegisterToggleScenario(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	e := f.event(t, fixedNow.Add(24*time.Hour))

	if err := f.svc.Register(ctx, f.user.ID, e.ID); err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := f.registrants(t, e.ID); len(got) != 1 || got[0] != f.user.ID {
		t.Fatalf("expected {%s}, got %v", f.user.ID, got)
	}

	err := f.svc.Register(ctx, f.user.ID, e.ID)
	wantError(t, err, apperr.KindConflict, "You have already registered for this event")
	if got := f.registrants(t, e.ID); len(got) != 1 {
		t.Fatalf("second register changed the set: %v", got)
	}

	if err := f.svc.Unregister(ctx, f.user.ID, e.ID); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if got := f.registrants(t, e.ID); len(got) != 0 {
		t.Fatalf("expected empty set, got %v", got)
	}

	err = f.svc.Unregister(ctx, f.user.ID, e.ID)
	wantError(t, err, apperr.KindConflict, "You are not registered for this event")
}

func TestRegisterRoundTripRestoresSet(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	e := f.event(t, fixedNow.Add(time.Hour))
	other := repotest.NewUser(t, f.store.Users(), model.RoleUser)
	if err := f.svc.Register(ctx, other.ID, e.ID); err != nil {
		t.Fatalf("register other: %v", err)
	}
	before := f.registrants(t, e.ID)

	if err := f.svc.Register(ctx, f.user.ID, e.ID); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := f.svc.Unregister(ctx, f.user.ID, e.ID); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	after := f.registrants(t, e.ID)
	if len(after) != len(before) || after[0] != before[0] {
		t.Fatalf("expected %v, got %v", before, after)
	}
}

func TestRegisterPastOrNowEvent(t *testing.T) {
	f := newEventFixture(t)
	for _, date := range []time.Time{fixedNow.Add(-time.Hour), fixedNow} {
		e := f.event(t, date)
		err := f.svc.Register(context.Background(), f.user.ID, e.ID)
		wantError(t, err, apperr.KindInvalidState, "Cannot register for past events")
		if got := f.registrants(t, e.ID); len(got) != 0 {
			t.Fatalf("registrant set changed: %v", got)
		}
	}
}

func TestRegisterUnknownEvent(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	wantError(t, f.svc.Register(ctx, f.user.ID, "bogus"), apperr.KindInvalidInput, "Invalid event ID")
	wantError(t, f.svc.Register(ctx, f.user.ID, uuid.NewString()), apperr.KindNotFound, "Event not found")
	wantError(t, f.svc.Unregister(ctx, f.user.ID, "bogus"), apperr.KindInvalidInput, "Invalid event ID")
	wantError(t, f.svc.Unregister(ctx, f.user.ID, uuid.NewString()), apperr.KindNotFound, "Event not found")
}

func TestConcurrentRegisterSingleEntry(t *testing.T) {
	f := newEventFixture(t)
	e := f.event(t, fixedNow.Add(time.Hour))

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.svc.Register(context.Background(), f.user.ID, e.ID)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			if apperr.KindOf(err) != apperr.KindConflict {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one success, got %d", successes)
	}
	if got := f.registrants(t, e.ID); len(got) != 1 {
		t.Fatalf("expected one registrant, got %v", got)
	}
}

func TestListingFilters(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	own := repotest.NewEvent(t, f.store.Events(), f.user.ID, fixedNow.Add(time.Hour))
	adminEvent := f.event(t, fixedNow.Add(2*time.Hour))
	past := f.event(t, fixedNow.Add(-time.Hour))

	mine, err := f.svc.ListEvents(ctx, f.user)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != own.ID {
		t.Fatalf("non-admin should only see own events, got %+v", mine)
	}

	all, _ := f.svc.ListEvents(ctx, f.admin)
	if len(all) != 3 {
		t.Fatalf("admin should see all events, got %d", len(all))
	}
	adminAll, _ := f.svc.AdminEvents(ctx)
	if len(adminAll) != 3 || adminAll[0].ID != past.ID {
		t.Fatalf("admin events should be date ordered, got %+v", adminAll)
	}

	upcoming, err := f.svc.UpcomingEvents(ctx)
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	if len(upcoming) != 2 || upcoming[0].ID != own.ID || upcoming[1].ID != adminEvent.ID {
		t.Fatalf("unexpected upcoming %+v", upcoming)
	}

	_ = f.svc.Register(ctx, f.user.ID, adminEvent.ID)
	registered, _ := f.svc.MyEvents(ctx, f.user.ID)
	if len(registered) != 1 || registered[0].ID != adminEvent.ID {
		t.Fatalf("unexpected my events %+v", registered)
	}
}

func TestUpcomingEmptyIsNotFound(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpcomingEvents(ctx)
	wantError(t, err, apperr.KindNotFound, "No upcoming events found")

	available, err := f.svc.AvailableEvents(ctx)
	if err != nil || available == nil || len(available) != 0 {
		t.Fatalf("expected empty non-nil listing, got %v, %v", available, err)
	}

	f.event(t, fixedNow.Add(-time.Hour))
	_, err = f.svc.UpcomingEvents(ctx)
	wantError(t, err, apperr.KindNotFound, "No upcoming events found")
}

func TestCreateEvent(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateEvent(ctx, f.admin.ID, model.CreateEventInput{Title: "x"})
	wantError(t, err, apperr.KindInvalidInput, "Title, description, date and location are required")

	_, err = f.svc.CreateEvent(ctx, f.admin.ID, model.CreateEventInput{
		Title: "x", Description: "y", Location: "z", Date: "next tuesday",
	})
	wantError(t, err, apperr.KindInvalidInput, "Invalid event date")

	e, err := f.svc.CreateEvent(ctx, f.admin.ID, model.CreateEventInput{
		Title: " GopherCon ", Description: "talks", Location: "Pune", Date: "2030-07-01T09:30", Image: "/uploads/1-a.png",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.Title != "GopherCon" || e.CreatedBy != f.admin.ID || len(e.RegisteredUsers) != 0 {
		t.Fatalf("unexpected event %+v", e)
	}
	if !e.Date.Equal(time.Date(2030, 7, 1, 9, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", e.Date)
	}
}

func TestUpdateEventKeepsUnsetFields(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	e := f.event(t, fixedNow.Add(time.Hour))
	_ = f.svc.Register(ctx, f.user.ID, e.ID)
	img := "/uploads/1-old.png"
	if _, err := f.store.Events().Update(ctx, e.ID, model.EventPatch{Image: &img}); err != nil {
		t.Fatalf("seed image: %v", err)
	}

	got, err := f.svc.UpdateEvent(ctx, e.ID, model.UpdateEventInput{Title: "Renamed", Image: "/uploads/2-new.png"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != "Renamed" || got.Location != e.Location || got.Description != e.Description || !got.Date.Equal(e.Date) {
		t.Fatalf("unexpected update result %+v", got)
	}
	if got.Image != "/uploads/2-new.png" || len(got.RegisteredUsers) != 1 {
		t.Fatalf("unexpected image or registrants %+v", got)
	}
	if len(f.images.removed) != 1 || f.images.removed[0] != img {
		t.Fatalf("expected old image removed, got %v", f.images.removed)
	}

	_, err = f.svc.UpdateEvent(ctx, uuid.NewString(), model.UpdateEventInput{Title: "x"})
	wantError(t, err, apperr.KindNotFound, "Event not found")
	_, err = f.svc.UpdateEvent(ctx, e.ID, model.UpdateEventInput{Date: "soon"})
	wantError(t, err, apperr.KindInvalidInput, "Invalid event date")
}

func TestDeleteEventRemovesImage(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	e := f.event(t, fixedNow.Add(time.Hour))
	img := "/uploads/1-poster.png"
	_, _ = f.store.Events().Update(ctx, e.ID, model.EventPatch{Image: &img})

	if err := f.svc.DeleteEvent(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(f.images.removed) != 1 || f.images.removed[0] != img {
		t.Fatalf("expected image removed, got %v", f.images.removed)
	}
	wantError(t, f.svc.DeleteEvent(ctx, e.ID), apperr.KindNotFound, "Event not found")
}

func TestMarkAttendeesAndRegistrants(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	e := f.event(t, fixedNow.Add(time.Hour))
	second := repotest.NewUser(t, f.store.Users(), model.RoleUser)

	if err := f.svc.MarkAttendees(ctx, e.ID, []string{f.user.ID}); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := f.svc.MarkAttendees(ctx, e.ID, []string{f.user.ID, second.ID}); err != nil {
		t.Fatalf("mark again: %v", err)
	}
	got, _ := f.store.Events().GetByID(ctx, e.ID)
	if len(got.Attendees) != 2 || len(got.RegisteredUsers) != 0 {
		t.Fatalf("attendance must not imply registration: %+v", got)
	}

	wantError(t, f.svc.MarkAttendees(ctx, e.ID, nil), apperr.KindInvalidInput, "Attendees must be a list of user IDs")
	wantError(t, f.svc.MarkAttendees(ctx, e.ID, []string{"nope"}), apperr.KindInvalidInput, "Invalid user ID")

	_ = f.svc.Register(ctx, second.ID, e.ID)
	_ = f.svc.Register(ctx, f.user.ID, e.ID)
	users, err := f.svc.Registrants(ctx, e.ID)
	if err != nil {
		t.Fatalf("registrants: %v", err)
	}
	if len(users) != 2 || users[0].ID != second.ID || users[1].ID != f.user.ID {
		t.Fatalf("unexpected registrants %+v", users)
	}
	_, err = f.svc.Registrants(ctx, uuid.NewString())
	wantError(t, err, apperr.KindNotFound, "Event not found")
}
