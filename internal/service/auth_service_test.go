package service

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	apperrors "github.com/aditya/bakshish/internal/errors"
	"github.com/aditya/bakshish/internal/fakeapi"
	"github.com/aditya/bakshish/internal/models"
)

// tokenSpy remembers the token pair the server handed out.
type tokenSpy struct {
	AuthAPI
	tokens *models.TokenPair
}

func (s *tokenSpy) Login(ctx context.Context, req models.LoginRequest) (*models.TokenPair, error) {
	tokens, err := s.AuthAPI.Login(ctx, req)
	s.tokens = tokens
	return tokens, err
}

func TestLoginPersistsSession(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	req := fakeapi.PassengerFixture("alice")
	req.Password, req.Password2 = "secret", "secret"
	if _, err := b.api.CreateUser(req); err != nil {
		t.Fatal(err)
	}

	acc := b.anonymous(t)
	spy := &tokenSpy{AuthAPI: acc.client}
	var logged bytes.Buffer
	auth := NewAuthService(spy, acc.session, log.New(&logged, "", 0))

	user, err := auth.Login(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("Username = %q, want alice", user.Username)
	}
	if user.DriverProfile != nil {
		t.Errorf("DriverProfile = %+v, want nil for a passenger", user.DriverProfile)
	}

	loggedIn, err := auth.IsLoggedIn(ctx)
	if err != nil || !loggedIn {
		t.Fatalf("IsLoggedIn() = %v, %v; want true", loggedIn, err)
	}

	access, ok, _ := acc.session.AccessToken(ctx)
	if !ok || access != spy.tokens.Access {
		t.Errorf("stored access token = %q, want %q", access, spy.tokens.Access)
	}
	refresh, ok, _ := acc.session.RefreshToken(ctx)
	if !ok || refresh != spy.tokens.Refresh {
		t.Errorf("stored refresh token = %q, want %q", refresh, spy.tokens.Refresh)
	}

	id, ok, _ := acc.session.UserID(ctx)
	if !ok || id != user.ID {
		t.Errorf("stored user id = %d, want %d", id, user.ID)
	}
	name, _, _ := acc.session.Username(ctx)
	if name != "alice" {
		t.Errorf("stored username = %q, want alice", name)
	}

	if !strings.Contains(logged.String(), "Logged in as alice") {
		t.Errorf("login was not written to the injected logger: %q", logged.String())
	}
}

func TestLoginFailureLeavesSessionEmpty(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	if _, err := b.api.CreateUser(fakeapi.PassengerFixture("alice")); err != nil {
		t.Fatal(err)
	}

	acc := b.anonymous(t)
	if _, err := acc.auth.Login(ctx, "alice", "wrong"); err == nil {
		t.Fatal("Login() with wrong password should fail")
	}
	if loggedIn, _ := acc.auth.IsLoggedIn(ctx); loggedIn {
		t.Error("IsLoggedIn() = true after failed login")
	}

	hits := b.hits.Load()
	if _, err := acc.auth.Login(ctx, "", ""); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Login() with empty credentials error = %v, want ErrValidation", err)
	}
	if b.hits.Load() != hits {
		t.Error("empty credentials reached the server")
	}
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(r *models.RegisterRequest)
		wantErr  error
		wantHits int64
	}{
		{
			name:     "password mismatch",
			mutate:   func(r *models.RegisterRequest) { r.Password2 = r.Password + "x" },
			wantErr:  apperrors.ErrPasswordMismatch,
			wantHits: 0,
		},
		{
			name:     "invalid email",
			mutate:   func(r *models.RegisterRequest) { r.Email = "not-an-email" },
			wantErr:  apperrors.ErrValidation,
			wantHits: 0,
		},
		{
			name:     "valid",
			mutate:   func(r *models.RegisterRequest) {},
			wantHits: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBackend(t)
			acc := b.anonymous(t)

			req := fakeapi.PassengerFixture("alice")
			tt.mutate(&req)

			user, err := acc.auth.Register(context.Background(), req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Register() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil || user.Username != "alice" {
				t.Fatalf("Register() = %+v, %v", user, err)
			}
			if got := b.hits.Load(); got != tt.wantHits {
				t.Errorf("requests sent = %d, want %d", got, tt.wantHits)
			}
		})
	}
}

func TestRegisterMismatchMessage(t *testing.T) {
	b := newTestBackend(t)
	req := fakeapi.PassengerFixture("alice")
	req.Password2 = "other"

	_, err := b.anonymous(t).auth.Register(context.Background(), req)
	if got := apperrors.Describe(err); got != "passwords do not match" {
		t.Errorf("Describe() = %q", got)
	}
}

func TestLogout(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	acc := b.signIn(t, fakeapi.PassengerFixture("alice"))

	if err := acc.auth.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if loggedIn, _ := acc.auth.IsLoggedIn(ctx); loggedIn {
		t.Error("IsLoggedIn() = true after Logout()")
	}
	if _, ok, _ := acc.session.RefreshToken(ctx); ok {
		t.Error("refresh token still present after Logout()")
	}

	_, err := acc.auth.CurrentUser(ctx)
	if !errors.Is(err, apperrors.ErrNotLoggedIn) {
		t.Errorf("CurrentUser() after Logout() error = %v, want ErrNotLoggedIn", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	acc := b.signIn(t, fakeapi.PassengerFixture("alice"))

	if _, err := acc.auth.UpdateProfile(ctx, models.ProfileUpdateRequest{}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("empty UpdateProfile() error = %v, want ErrValidation", err)
	}

	bad := "alice-at-example"
	if _, err := acc.auth.UpdateProfile(ctx, models.ProfileUpdateRequest{Email: &bad}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("UpdateProfile(bad email) error = %v, want ErrValidation", err)
	}

	email := "alice@example.com"
	user, err := acc.auth.UpdateProfile(ctx, models.ProfileUpdateRequest{Email: &email})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if user.Email != email || user.FirstName != acc.user.FirstName {
		t.Errorf("updated user = %+v", user)
	}
}
