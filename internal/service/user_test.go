package service

import (
	"context"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/apperr"
	"github.com/Shivanand-hulikatti/eventhub/internal/auth"
	"github.com/Shivanand-hulikatti/eventhub/internal/logger"
	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/Shivanand-hulikatti/eventhub/internal/repository/memory"
)

func newUserService() (*UserService, *auth.TokenManager) {
	tokens := auth.NewTokenManager("access", "refresh", time.Hour, 24*time.Hour)
	return NewUserService(memory.New().Users(), tokens, logger.Discard()), tokens
}

func TestSignUpValidation(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  model.SignUpRequest
		kind apperr.Kind
		msg  string
	}{
		{"missing password", model.SignUpRequest{Name: "Asha", Email: "asha@example.com"}, apperr.KindInvalidInput, "All fields are required"},
		{"blank name", model.SignUpRequest{Name: "  ", Email: "asha@example.com", Password: "pw"}, apperr.KindInvalidInput, "All fields are required"},
		{"bad email", model.SignUpRequest{Name: "Asha", Email: "asha@", Password: "pw"}, apperr.KindInvalidInput, "Please provide a valid email address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantError(t, svc.SignUp(ctx, tt.req), tt.kind, tt.msg)
		})
	}
}

func TestSignUpLoginRefresh(t *testing.T) {
	svc, tokens := newUserService()
	ctx := context.Background()

	if err := svc.SignUp(ctx, model.SignUpRequest{Name: "Asha", Email: " Asha@Example.com ", Password: "s3cret"}); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	err := svc.SignUp(ctx, model.SignUpRequest{Name: "Other", Email: "asha@example.com", Password: "x"})
	wantError(t, err, apperr.KindConflict, "Email already in use. Please login.")

	_, err = svc.Login(ctx, model.LoginRequest{Email: "asha@example.com", Password: "wrong"})
	wantError(t, err, apperr.KindInvalidInput, "Invalid email or password")
	_, err = svc.Login(ctx, model.LoginRequest{Email: "nobody@example.com", Password: "s3cret"})
	wantError(t, err, apperr.KindInvalidInput, "Invalid email or password")

	res, err := svc.Login(ctx, model.LoginRequest{Email: "ASHA@example.com", Password: "s3cret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Message != "Login successful" || res.User.Email != "asha@example.com" || res.User.Role != model.RoleUser {
		t.Fatalf("unexpected login result %+v", res)
	}
	claims, err := tokens.ParseAccess(res.AccessToken)
	if err != nil || claims.UserID != res.User.ID {
		t.Fatalf("access token does not carry user id: %v %v", claims, err)
	}

	_, err = svc.Refresh(ctx, model.RefreshRequest{})
	wantError(t, err, apperr.KindInvalidInput, "Refresh token is required")
	_, err = svc.Refresh(ctx, model.RefreshRequest{RefreshToken: res.AccessToken})
	wantError(t, err, apperr.KindForbidden, "Invalid refresh token")

	fresh, err := svc.Refresh(ctx, model.RefreshRequest{RefreshToken: res.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if c, err := tokens.ParseAccess(fresh.AccessToken); err != nil || c.UserID != res.User.ID {
		t.Fatalf("refreshed token invalid: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()
	_ = svc.SignUp(ctx, model.SignUpRequest{Name: "Asha", Email: "asha@example.com", Password: "pw"})
	_ = svc.SignUp(ctx, model.SignUpRequest{Name: "Ravi", Email: "ravi@example.com", Password: "pw"})
	users, _ := svc.ListUsers(ctx)
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	var asha model.User
	for _, u := range users {
		if u.Email == "asha@example.com" {
			asha = u
		}
	}

	u, err := svc.UpdateProfile(ctx, asha.ID, model.ProfileUpdateRequest{Name: "Asha K"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Name != "Asha K" || u.Email != "asha@example.com" {
		t.Fatalf("unexpected profile %+v", u)
	}

	_, err = svc.UpdateProfile(ctx, asha.ID, model.ProfileUpdateRequest{Email: "ravi@example.com"})
	wantError(t, err, apperr.KindConflict, "Email already in use")
	_, err = svc.UpdateProfile(ctx, asha.ID, model.ProfileUpdateRequest{Email: "bad"})
	wantError(t, err, apperr.KindInvalidInput, "Please provide a valid email address")
	_, err = svc.UpdateProfile(ctx, "missing", model.ProfileUpdateRequest{Name: "x"})
	wantError(t, err, apperr.KindNotFound, "User not found")
}
