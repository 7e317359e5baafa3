package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Shivanand-hulikatti/eventhub/internal/apperr"
	"github.com/Shivanand-hulikatti/eventhub/internal/auth"
	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/Shivanand-hulikatti/eventhub/internal/repository"
)

// UserService handles accounts and credentials.
type UserService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	log    *slog.Logger
}

// NewUserService constructs a UserService.
func NewUserService(users repository.UserRepository, tokens *auth.TokenManager, log *slog.Logger) *UserService {
	return &UserService{users: users, tokens: tokens, log: log}
}

// SignUp creates a user account with the default role.
func (s *UserService) SignUp(ctx context.Context, req model.SignUpRequest) error {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return apperr.InvalidInput("All fields are required")
	}
	if !isValidEmail(email) {
		return apperr.InvalidInput("Please provide a valid email address")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return apperr.Internal("Internal Server Error", err)
	}
	u := &model.User{Name: name, Email: email, PasswordHash: hash, Role: model.RoleUser}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return apperr.Conflict("Email already in use. Please login.")
		}
		return apperr.Internal("Internal Server Error", err)
	}
	s.log.Info("user signed up", "user_id", u.ID)
	return nil
}

// Login verifies credentials and issues an access and refresh token pair.
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResult, error) {
	invalid := apperr.InvalidInput("Invalid email or password")

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, invalid
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid
		}
		return nil, apperr.Internal("Server error", err)
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, invalid
	}

	access, err := s.tokens.IssueAccess(u.ID)
	if err != nil {
		return nil, apperr.Internal("Server error", err)
	}
	refresh, err := s.tokens.IssueRefresh(u.ID)
	if err != nil {
		return nil, apperr.Internal("Server error", err)
	}
	return &model.LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         model.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role},
		Message:      "Login successful",
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *UserService) Refresh(_ context.Context, req model.RefreshRequest) (*model.TokenResponse, error) {
	if strings.TrimSpace(req.RefreshToken) == "" {
		return nil, apperr.InvalidInput("Refresh token is required")
	}
	claims, err := s.tokens.ParseRefresh(req.RefreshToken)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindForbidden, "Invalid refresh token", err)
	}
	access, err := s.tokens.IssueAccess(claims.UserID)
	if err != nil {
		return nil, apperr.Internal("Server error", err)
	}
	return &model.TokenResponse{AccessToken: access}, nil
}

// ListUsers returns every account.
func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Internal("Server error", err)
	}
	return users, nil
}

// UpdateProfile changes the caller's name and email. Empty fields keep their value.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req model.ProfileUpdateRequest) (*model.User, error) {
	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("Server error", err)
	}

	name := current.Name
	if v := strings.TrimSpace(req.Name); v != "" {
		name = v
	}
	email := current.Email
	if v := normalizeEmail(req.Email); v != "" {
		if !isValidEmail(v) {
			return nil, apperr.InvalidInput("Please provide a valid email address")
		}
		email = v
	}

	u, err := s.users.UpdateProfile(ctx, userID, name, email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, apperr.Conflict("Email already in use")
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("Server error", err)
	}
	return u, nil
}
