// Package view maps stored events and users to the fixed response shapes of
// each read endpoint. Every function here is pure.
package view

import (
	"net/http"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
)

// Summary is the event shape of the upcoming and available listings.
type Summary struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Date             time.Time `json:"date"`
	Location         string    `json:"location"`
	Image            *string   `json:"image"`
	TotalRegistrants int       `json:"totalRegistrants"`
	IsRegistered     bool      `json:"isRegistered"`
}

// Detail is the full event shape, including both membership sets.
type Detail struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Date             time.Time `json:"date"`
	Location         string    `json:"location"`
	Image            *string   `json:"image"`
	CreatedBy        string    `json:"createdBy"`
	RegisteredUsers  []string  `json:"registeredUsers"`
	Attendees        []string  `json:"attendees"`
	TotalRegistrants int       `json:"totalRegistrants"`
	IsRegistered     bool      `json:"isRegistered"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Registrant is one entry of an event's registrant listing.
type Registrant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BaseURL returns scheme://host for r. X-Forwarded-Proto wins over the TLS state.
func BaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = strings.TrimSpace(strings.Split(p, ",")[0])
	}
	return scheme + "://" + r.Host
}

// NewSummary projects e for the caller.
func NewSummary(e model.Event, callerID, baseURL string) Summary {
	return Summary{
		ID:               e.ID,
		Title:            e.Title,
		Description:      e.Description,
		Date:             e.Date,
		Location:         e.Location,
		Image:            imageURL(e.Image, baseURL),
		TotalRegistrants: len(e.RegisteredUsers),
		IsRegistered:     isRegistered(e, callerID),
	}
}

// NewDetail projects e for the caller.
func NewDetail(e model.Event, callerID, baseURL string) Detail {
	return Detail{
		ID:               e.ID,
		Title:            e.Title,
		Description:      e.Description,
		Date:             e.Date,
		Location:         e.Location,
		Image:            imageURL(e.Image, baseURL),
		CreatedBy:        e.CreatedBy,
		RegisteredUsers:  nonNil(e.RegisteredUsers),
		Attendees:        nonNil(e.Attendees),
		TotalRegistrants: len(e.RegisteredUsers),
		IsRegistered:     isRegistered(e, callerID),
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

// Summaries projects every event in events.
func Summaries(events []model.Event, callerID, baseURL string) []Summary {
	out := make([]Summary, 0, len(events))
	for _, e := range events {
		out = append(out, NewSummary(e, callerID, baseURL))
	}
	return out
}

// Details projects every event in events.
func Details(events []model.Event, callerID, baseURL string) []Detail {
	out := make([]Detail, 0, len(events))
	for _, e := range events {
		out = append(out, NewDetail(e, callerID, baseURL))
	}
	return out
}

// Registrants reduces users to id and name.
func Registrants(users []model.User) []Registrant {
	out := make([]Registrant, 0, len(users))
	for _, u := range users {
		out = append(out, Registrant{ID: u.ID, Name: u.Name})
	}
	return out
}

func isRegistered(e model.Event, callerID string) bool {
	return callerID != "" && e.HasRegistrant(callerID)
}

func imageURL(ref, baseURL string) *string {
	if ref == "" {
		return nil
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return &ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	abs := baseURL + ref
	return &abs
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
