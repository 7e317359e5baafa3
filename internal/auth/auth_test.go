package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Shivanand-hulikatti/eventhub/internal/apperr"
	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/Shivanand-hulikatti/eventhub/internal/repository/memory"
)

func newTokens() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
}

func TestTokenRoundTrip(t *testing.T) {
	m := newTokens()
	tok, err := m.IssueAccess("u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	c, err := m.ParseAccess(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.UserID != "u1" {
		t.Fatalf("expected u1, got %q", c.UserID)
	}
}

func TestRefreshTokenNotAcceptedAsAccess(t *testing.T) {
	m := newTokens()
	refresh, _ := m.IssueRefresh("u1")
	if _, err := m.ParseAccess(refresh); !errors.Is(err, ErrBadToken) {
		t.Fatalf("expected ErrBadToken, got %v", err)
	}
	if _, err := m.ParseRefresh(refresh); err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	m := NewTokenManager("a", "b", -time.Minute, time.Hour)
	tok, _ := m.IssueAccess("u1")
	if _, err := m.ParseAccess(tok); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestRejectsNoneAlgorithm(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u1"})
	raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := newTokens().ParseAccess(raw); !errors.Is(err, ErrBadToken) {
		t.Fatalf("expected ErrBadToken, got %v", err)
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret" || !CheckPassword(hash, "s3cret") {
		t.Fatal("expected hash to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("expected wrong password to fail")
	}
}

func TestGateAuthenticate(t *testing.T) {
	store := memory.New()
	u := &model.User{Name: "Asha", Email: "asha@example.com", PasswordHash: "hash"}
	if err := store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	m := newTokens()
	gate := NewGate(m, store.Users())
	good, _ := m.IssueAccess(u.ID)
	orphan, _ := m.IssueAccess("9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d")
	expired, _ := NewTokenManager("access-secret", "x", -time.Minute, time.Hour).IssueAccess(u.ID)

	tests := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{"missing", "", "Not authorized, no token"},
		{"wrong scheme", "Basic abc", "Not authorized, no token"},
		{"garbage", "Bearer abc", "Invalid token"},
		{"expired", "Bearer " + expired, "Token expired, please log in again"},
		{"unknown user", "Bearer " + orphan, "Not authorized, user not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gate.Authenticate(context.Background(), tt.header)
			var ae *apperr.Error
			if !errors.As(err, &ae) || ae.Kind != apperr.KindUnauthenticated || ae.Message != tt.wantMsg {
				t.Fatalf("expected unauthenticated %q, got %v", tt.wantMsg, err)
			}
		})
	}

	got, err := gate.Authenticate(context.Background(), "Bearer "+good)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != u.ID || got.PasswordHash != "" {
		t.Fatalf("unexpected user %+v", got)
	}
}

func TestRequireAdmin(t *testing.T) {
	if err := RequireAdmin(&model.User{Role: model.RoleUser}); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := RequireAdmin(&model.User{Role: model.RoleAdmin}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestContextUser(t *testing.T) {
	if _, ok := UserFromContext(context.Background()); ok {
		t.Fatal("expected no user")
	}
	ctx := WithUser(context.Background(), &model.User{ID: "u1"})
	if u, ok := UserFromContext(ctx); !ok || u.ID != "u1" {
		t.Fatalf("unexpected %v %v", u, ok)
	}
}
