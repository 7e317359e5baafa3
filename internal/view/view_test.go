package view

import (
	"crypto/tls"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
)

func sampleEvent() model.Event {
	return model.Event{
		ID:              "e1",
		Title:           "Go meetup",
		Date:            time.Date(2030, 1, 2, 18, 0, 0, 0, time.UTC),
		Location:        "Pune",
		Image:           "/uploads/1700000000000-poster.png",
		CreatedBy:       "admin",
		RegisteredUsers: []string{"u1", "u2"},
	}
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name      string
		tls       bool
		forwarded string
		want      string
	}{
		{"plain", false, "", "http://api.example.com"},
		{"tls", true, "", "https://api.example.com"},
		{"forwarded", false, "https", "https://api.example.com"},
		{"forwarded list", true, "http, https", "http://api.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/events", nil)
			r.Host = "api.example.com"
			if tt.tls {
				r.TLS = &tls.ConnectionState{}
			}
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-Proto", tt.forwarded)
			}
			if got := BaseURL(r); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSummaryRegistration(t *testing.T) {
	e := sampleEvent()
	s := NewSummary(e, "u2", "http://h")
	if !s.IsRegistered || s.TotalRegistrants != 2 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.Image == nil || *s.Image != "http://h/uploads/1700000000000-poster.png" {
		t.Fatalf("unexpected image %v", s.Image)
	}
	if NewSummary(e, "u3", "http://h").IsRegistered {
		t.Fatal("u3 should not be registered")
	}
	if NewSummary(e, "", "http://h").IsRegistered {
		t.Fatal("anonymous caller should not be registered")
	}
}

func TestDetailWithoutImageOrMembers(t *testing.T) {
	e := sampleEvent()
	e.Image = ""
	e.RegisteredUsers = nil
	d := NewDetail(e, "u1", "http://h")

	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(b)
	for _, want := range []string{`"image":null`, `"registeredUsers":[]`, `"attendees":[]`, `"totalRegistrants":0`, `"isRegistered":false`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in %s", want, body)
		}
	}
}

func TestListsAreNeverNull(t *testing.T) {
	if got := Summaries(nil, "u1", "http://h"); got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %#v", got)
	}
	if got := Details(nil, "u1", "http://h"); got == nil {
		t.Fatal("expected empty slice")
	}
	r := Registrants([]model.User{{ID: "u1", Name: "Asha", Email: "a@example.com"}})
	if len(r) != 1 || r[0] != (Registrant{ID: "u1", Name: "Asha"}) {
		t.Fatalf("unexpected registrants %+v", r)
	}
}
