// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/apperr"
	"github.com/Shivanand-hulikatti/eventhub/internal/repository"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}$`)

// isValidEmail reports whether email has the accepted address shape.
func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Accepted event date layouts, most specific first. The last two are what
// HTML date and datetime-local inputs submit.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.InvalidInput("Invalid event date")
}

// eventLookupErr translates a repository error from loading or mutating a
// single event. Anything unexpected becomes Internal with msg.
func eventLookupErr(err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		return apperr.Wrap(apperr.KindInvalidInput, "Invalid event ID", err)
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("Event not found")
	}
	return apperr.Internal(msg, err)
}
