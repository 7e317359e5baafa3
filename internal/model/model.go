// Package model defines the core domain types for the event management system.
package model

import "time"

// Role is the access level of a user account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Event represents an event created by an admin that users can register for.
type Event struct {
	ID              string
	Title           string
	Description     string
	Date            time.Time
	Location        string
	Image           string
	CreatedBy       string
	RegisteredUsers []string
	Attendees       []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasRegistrant reports whether userID is in the registrant set.
func (e *Event) HasRegistrant(userID string) bool {
	for _, id := range e.RegisteredUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// EventFilter narrows an event listing. Zero-valued fields do not filter.
type EventFilter struct {
	CreatedBy  string
	Registrant string
	From       time.Time
}

// EventPatch carries the admin-mutable event fields. Nil fields keep their stored value.
type EventPatch struct {
	Title       *string
	Description *string
	Date        *time.Time
	Location    *string
	Image       *string
}

// Empty reports whether the patch changes nothing.
func (p EventPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil && p.Location == nil && p.Image == nil
}

// CreateEventInput is the payload for creating a new event.
type CreateEventInput struct {
	Title       string
	Description string
	Date        string
	Location    string
	Image       string
}

// UpdateEventInput is the payload for a partial event update. Empty strings keep the stored value.
type UpdateEventInput struct {
	Title       string
	Description string
	Date        string
	Location    string
	Image       string
}

// SignUpRequest is the payload for creating an account.
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload for exchanging credentials for tokens.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest carries a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         UserSummary `json:"user"`
	Message      string      `json:"message"`
}

// UserSummary is the public view of an account embedded in login responses.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// ProfileUpdateRequest is the payload for updating the caller's own profile.
type ProfileUpdateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AttendeesRequest carries user ids to mark as attendees.
type AttendeesRequest struct {
	Attendees []string `json:"attendees"`
}

// ContactRequest is the payload of the public contact form.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// MessageResponse is the standard JSON envelope for acknowledgements and errors.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse carries a freshly issued access token.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}
