// Package session persists the credentials and minimal identity of the
// logged-in user. Absence of an access token is the only signal of being
// logged out: tokens are never inspected for expiry and the refresh token is
// stored but not used.
package session

import (
	"context"
	"fmt"
	"strconv"
)

// Persisted keys
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserID       = "user_id"
	KeyUsername     = "username"
)

var allKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUserID, KeyUsername}

type Session struct {
	store Store
}

func New(store Store) *Session {
	return &Session{store: store}
}

func (s *Session) SaveTokens(ctx context.Context, access, refresh string) error {
	if err := s.store.SetMany(ctx, map[string]string{
		KeyAccessToken:  access,
		KeyRefreshToken: refresh,
	}); err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	return nil
}

func (s *Session) AccessToken(ctx context.Context) (string, bool, error) {
	return s.get(ctx, KeyAccessToken)
}

func (s *Session) RefreshToken(ctx context.Context) (string, bool, error) {
	return s.get(ctx, KeyRefreshToken)
}

// IsLoggedIn is true iff an access token is present.
func (s *Session) IsLoggedIn(ctx context.Context) (bool, error) {
	_, ok, err := s.AccessToken(ctx)
	return ok, err
}

func (s *Session) SaveUser(ctx context.Context, id int64, username string) error {
	if err := s.store.SetMany(ctx, map[string]string{
		KeyUserID:   strconv.FormatInt(id, 10),
		KeyUsername: username,
	}); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *Session) UserID(ctx context.Context) (int64, bool, error) {
	raw, ok, err := s.get(ctx, KeyUserID)
	if err != nil || !ok {
		return 0, false, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("stored user id %q: %w", raw, err)
	}
	return id, true, nil
}

func (s *Session) Username(ctx context.Context) (string, bool, error) {
	return s.get(ctx, KeyUsername)
}

// Clear removes tokens and identity together.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, allKeys...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Session) get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || v == "" {
		return "", false, nil
	}
	return v, true, nil
}
