package service

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/aditya/bakshish/internal/errors"
	"github.com/aditya/bakshish/internal/models"
	"github.com/aditya/bakshish/internal/session"
	"github.com/aditya/bakshish/pkg/utils"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*models.User, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Logout(ctx context.Context) error
	IsLoggedIn(ctx context.Context) (bool, error)
	CurrentUser(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, req models.ProfileUpdateRequest) (*models.User, error)
}

type authService struct {
	api      AuthAPI
	session  *session.Session
	validate *validator.Validate
	logger   *log.Logger
}

// NewAuthService logs completed logins to logger; nil discards them.
func NewAuthService(api AuthAPI, sess *session.Session, logger *log.Logger) AuthService {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &authService{
		api:      api,
		session:  sess,
		validate: utils.NewValidator(),
		logger:   logger,
	}
}

// Login obtains a token pair, stores it, then loads the current user and
// remembers its id and username. When the profile fetch fails the tokens
// stay stored and the error is returned.
func (s *authService) Login(ctx context.Context, username, password string) (*models.User, error) {
	req := models.LoginRequest{Username: username, Password: password}
	if err := checkRequest(s.validate, req); err != nil {
		return nil, err
	}

	tokens, err := s.api.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.session.SaveTokens(ctx, tokens.Access, tokens.Refresh); err != nil {
		return nil, fmt.Errorf("save tokens: %w", err)
	}

	user, err := s.api.GetCurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.session.SaveUser(ctx, user.ID, user.Username); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	s.logger.Printf("Logged in as %s (user %d)", user.Username, user.ID)
	return user, nil
}

// Register checks the form locally, so a mismatched confirmation never
// reaches the server.
func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if req.Password != req.Password2 {
		return nil, apperrors.ErrPasswordMismatch
	}
	if err := checkRequest(s.validate, req); err != nil {
		return nil, err
	}
	return s.api.Register(ctx, req)
}

func (s *authService) Logout(ctx context.Context) error {
	return s.session.Clear(ctx)
}

func (s *authService) IsLoggedIn(ctx context.Context) (bool, error) {
	return s.session.IsLoggedIn(ctx)
}

func (s *authService) CurrentUser(ctx context.Context) (*models.User, error) {
	user, err := s.api.GetCurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.session.SaveUser(ctx, user.ID, user.Username); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, req models.ProfileUpdateRequest) (*models.User, error) {
	if req.IsEmpty() {
		return nil, fmt.Errorf("%w: no profile fields to update", apperrors.ErrValidation)
	}
	if err := checkRequest(s.validate, req); err != nil {
		return nil, err
	}
	return s.api.UpdateProfile(ctx, req)
}
