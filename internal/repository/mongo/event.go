package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/Shivanand-hulikatti/eventhub/internal/repository"
)

type eventDoc struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty"`
	Title           string               `bson:"title"`
	Description     string               `bson:"description"`
	Date            time.Time            `bson:"date"`
	Location        string               `bson:"location"`
	Image           string               `bson:"image,omitempty"`
	CreatedBy       primitive.ObjectID   `bson:"createdBy"`
	RegisteredUsers []primitive.ObjectID `bson:"registeredUsers"`
	Attendees       []primitive.ObjectID `bson:"attendees"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
}

func (d eventDoc) toModel() model.Event {
	return model.Event{
		ID:              d.ID.Hex(),
		Title:           d.Title,
		Description:     d.Description,
		Date:            d.Date,
		Location:        d.Location,
		Image:           d.Image,
		CreatedBy:       d.CreatedBy.Hex(),
		RegisteredUsers: hexIDs(d.RegisteredUsers),
		Attendees:       hexIDs(d.Attendees),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// EventRepository handles persistence for events.
type EventRepository struct {
	coll *mongo.Collection
}

// NewEventRepository constructs an EventRepository on db.
func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{coll: db.Collection(eventsCollection)}
}

// Create inserts a new event with empty membership sets.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	creator, err := objectID(e.CreatedBy)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	doc := eventDoc{
		ID:              primitive.NewObjectID(),
		Title:           e.Title,
		Description:     e.Description,
		Date:            e.Date,
		Location:        e.Location,
		Image:           e.Image,
		CreatedBy:       creator,
		RegisteredUsers: []primitive.ObjectID{},
		Attendees:       []primitive.ObjectID{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	*e = doc.toModel()
	return nil
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc eventDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	e := doc.toModel()
	return &e, nil
}

// List returns events matching f ordered by date.
func (r *EventRepository) List(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	filter := bson.M{}
	if f.CreatedBy != "" {
		oid, err := objectID(f.CreatedBy)
		if err != nil {
			return nil, err
		}
		filter["createdBy"] = oid
	}
	if f.Registrant != "" {
		oid, err := objectID(f.Registrant)
		if err != nil {
			return nil, err
		}
		filter["registeredUsers"] = oid
	}
	if !f.From.IsZero() {
		filter["date"] = bson.M{"$gte": f.From}
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	var docs []eventDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	events := make([]model.Event, 0, len(docs))
	for _, d := range docs {
		events = append(events, d.toModel())
	}
	return events, nil
}

// Update sets the non-nil patch fields. Membership arrays are untouched.
func (r *EventRepository) Update(ctx context.Context, id string, p model.EventPatch) (*model.Event, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Date != nil {
		set["date"] = *p.Date
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	if p.Image != nil {
		set["image"] = *p.Image
	}

	var doc eventDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	e := doc.toModel()
	return &e, nil
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddRegistrant adds userID when the event does not already list it.
func (r *EventRepository) AddRegistrant(ctx context.Context, eventID, userID string) error {
	eid, err := objectID(eventID)
	if err != nil {
		return err
	}
	uid, err := objectID(userID)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": eid, "registeredUsers": bson.M{"$ne": uid}},
		bson.M{
			"$addToSet": bson.M{"registeredUsers": uid},
			"$set":      bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("add registrant: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.missOrConflict(ctx, eid, repository.ErrAlreadyRegistered)
	}
	return nil
}

// RemoveRegistrant pulls userID when the event lists it.
func (r *EventRepository) RemoveRegistrant(ctx context.Context, eventID, userID string) error {
	eid, err := objectID(eventID)
	if err != nil {
		return err
	}
	uid, err := objectID(userID)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": eid, "registeredUsers": uid},
		bson.M{
			"$pull": bson.M{"registeredUsers": uid},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("remove registrant: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.missOrConflict(ctx, eid, repository.ErrNotRegistered)
	}
	return nil
}

// AddAttendees unions userIDs into the attendee set.
func (r *EventRepository) AddAttendees(ctx context.Context, eventID string, userIDs []string) error {
	eid, err := objectID(eventID)
	if err != nil {
		return err
	}
	uids, err := objectIDs(userIDs)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": eid},
		bson.M{
			"$addToSet": bson.M{"attendees": bson.M{"$each": uids}},
			"$set":      bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("add attendees: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *EventRepository) missOrConflict(ctx context.Context, eid primitive.ObjectID, conflict error) error {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": eid}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("check event: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return conflict
}
