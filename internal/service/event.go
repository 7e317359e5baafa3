package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/apperr"
	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/Shivanand-hulikatti/eventhub/internal/repository"
)

// ImageRemover deletes a stored image by its public reference.
type ImageRemover interface {
	Remove(ref string) error
}

// EventService orchestrates event-related business operations.
type EventService struct {
	events repository.EventRepository
	users  repository.UserRepository
	images ImageRemover
	log    *slog.Logger
	now    func() time.Time
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(
	events repository.EventRepository,
	users repository.UserRepository,
	images ImageRemover,
	log *slog.Logger,
) *EventService {
	return &EventService{events: events, users: users, images: images, log: log, now: time.Now}
}

// CreateEvent validates the input and stores a new event owned by creatorID.
func (s *EventService) CreateEvent(ctx context.Context, creatorID string, in model.CreateEventInput) (*model.Event, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	if in.Title == "" || in.Description == "" || in.Location == "" || strings.TrimSpace(in.Date) == "" {
		return nil, apperr.InvalidInput("Title, description, date and location are required")
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}

	e := &model.Event{
		Title:       in.Title,
		Description: in.Description,
		Date:        date,
		Location:    in.Location,
		Image:       in.Image,
		CreatedBy:   creatorID,
	}
	if err := s.events.Create(ctx, e); err != nil {
		return nil, apperr.Internal("Failed to create event", err)
	}
	s.log.Info("event created", "event_id", e.ID, "created_by", creatorID)
	return e, nil
}

// ListEvents returns every event for admins and the caller's own events otherwise.
func (s *EventService) ListEvents(ctx context.Context, caller *model.User) ([]model.Event, error) {
	var f model.EventFilter
	if !caller.IsAdmin() {
		f.CreatedBy = caller.ID
	}
	return s.list(ctx, f, "Failed to fetch events")
}

// AdminEvents returns every event.
func (s *EventService) AdminEvents(ctx context.Context) ([]model.Event, error) {
	return s.list(ctx, model.EventFilter{}, "Error fetching events")
}

// UpcomingEvents returns events dated now or later. An empty result is NotFound.
func (s *EventService) UpcomingEvents(ctx context.Context) ([]model.Event, error) {
	events, err := s.list(ctx, model.EventFilter{From: s.now()}, "Failed to fetch upcoming events")
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, apperr.NotFound("No upcoming events found")
	}
	return events, nil
}

// AvailableEvents returns every event regardless of date.
func (s *EventService) AvailableEvents(ctx context.Context) ([]model.Event, error) {
	return s.list(ctx, model.EventFilter{}, "Failed to fetch available events")
}

// MyEvents returns the events userID is registered for.
func (s *EventService) MyEvents(ctx context.Context, userID string) ([]model.Event, error) {
	return s.list(ctx, model.EventFilter{Registrant: userID}, "Failed to fetch registered events")
}

func (s *EventService) list(ctx context.Context, f model.EventFilter, msg string) ([]model.Event, error) {
	events, err := s.events.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal(msg, err)
	}
	return events, nil
}

// Register adds userID to the event's registrant set.
// The event must exist, lie strictly in the future and not already list the user.
func (s *EventService) Register(ctx context.Context, userID, eventID string) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return eventLookupErr(err, "Failed to register for event")
	}
	if !event.Date.After(s.now()) {
		return apperr.InvalidState("Cannot register for past events")
	}
	if event.HasRegistrant(userID) {
		return apperr.Conflict("You have already registered for this event")
	}

	// The store re-checks membership in the same write, so a concurrent
	// request that got here first surfaces as ErrAlreadyRegistered.
	if err := s.events.AddRegistrant(ctx, eventID, userID); err != nil {
		if errors.Is(err, repository.ErrAlreadyRegistered) {
			return apperr.Conflict("You have already registered for this event")
		}
		return eventLookupErr(err, "Failed to register for event")
	}
	s.log.Info("user registered for event", "event_id", eventID, "user_id", userID)
	return nil
}

// Unregister removes userID from the event's registrant set.
func (s *EventService) Unregister(ctx context.Context, userID, eventID string) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return eventLookupErr(err, "Failed to unregister from event")
	}
	if !event.HasRegistrant(userID) {
		return apperr.Conflict("You are not registered for this event")
	}

	if err := s.events.RemoveRegistrant(ctx, eventID, userID); err != nil {
		if errors.Is(err, repository.ErrNotRegistered) {
			return apperr.Conflict("You are not registered for this event")
		}
		return eventLookupErr(err, "Failed to unregister from event")
	}
	s.log.Info("user unregistered from event", "event_id", eventID, "user_id", userID)
	return nil
}

// UpdateEvent applies the non-empty fields of in. A replaced image is removed from storage.
func (s *EventService) UpdateEvent(ctx context.Context, id string, in model.UpdateEventInput) (*model.Event, error) {
	current, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, eventLookupErr(err, "Failed to update event")
	}

	var p model.EventPatch
	if v := strings.TrimSpace(in.Title); v != "" {
		p.Title = &v
	}
	if v := strings.TrimSpace(in.Description); v != "" {
		p.Description = &v
	}
	if v := strings.TrimSpace(in.Location); v != "" {
		p.Location = &v
	}
	if strings.TrimSpace(in.Date) != "" {
		d, err := parseDate(in.Date)
		if err != nil {
			return nil, err
		}
		p.Date = &d
	}
	if in.Image != "" {
		p.Image = &in.Image
	}
	if p.Empty() {
		return current, nil
	}

	updated, err := s.events.Update(ctx, id, p)
	if err != nil {
		return nil, eventLookupErr(err, "Failed to update event")
	}
	if p.Image != nil && current.Image != "" && current.Image != *p.Image {
		s.removeImage(current.Image)
	}
	s.log.Info("event updated", "event_id", id)
	return updated, nil
}

// DeleteEvent removes the event and its stored image.
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return eventLookupErr(err, "Failed to delete event")
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return eventLookupErr(err, "Failed to delete event")
	}
	if event.Image != "" {
		s.removeImage(event.Image)
	}
	s.log.Info("event deleted", "event_id", id)
	return nil
}

// MarkAttendees unions userIDs into the event's attendee set.
func (s *EventService) MarkAttendees(ctx context.Context, eventID string, userIDs []string) error {
	if userIDs == nil {
		return apperr.InvalidInput("Attendees must be a list of user IDs")
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return eventLookupErr(err, "Failed to update attendees")
	}
	if err := s.events.AddAttendees(ctx, eventID, userIDs); err != nil {
		if errors.Is(err, repository.ErrInvalidID) {
			return apperr.Wrap(apperr.KindInvalidInput, "Invalid user ID", err)
		}
		return eventLookupErr(err, "Failed to update attendees")
	}
	s.log.Info("attendees marked", "event_id", eventID, "count", len(userIDs))
	return nil
}

// Registrants resolves the event's registrant set to users.
func (s *EventService) Registrants(ctx context.Context, eventID string) ([]model.User, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, eventLookupErr(err, "Failed to fetch registrants")
	}
	users, err := s.users.ListByIDs(ctx, event.RegisteredUsers)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch registrants", err)
	}
	return users, nil
}

func (s *EventService) removeImage(ref string) {
	if s.images == nil {
		return
	}
	if err := s.images.Remove(ref); err != nil {
		s.log.Warn("remove event image", "image", ref, "error", err)
	}
}
