package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/aditya/bakshish/internal/errors"
	"github.com/aditya/bakshish/internal/models"
	"github.com/aditya/bakshish/pkg/utils"
)

// TripService drives the trip lifecycle. Each call is one request; whether
// a transition is legal is decided by the server alone.
type TripService interface {
	CreateTrip(ctx context.Context, req models.TripCreateRequest) (*models.Trip, error)
	MyTrips(ctx context.Context) ([]models.Trip, error)
	TripHistory(ctx context.Context, role string) ([]models.TripHistoryEntry, error)
	PendingTrips(ctx context.Context) ([]models.Trip, error)
	AcceptTrip(ctx context.Context, tripID int64) (*models.Trip, error)
	StartTrip(ctx context.Context, tripID int64) (*models.Trip, error)
	CompleteTrip(ctx context.Context, tripID int64) (*models.Trip, error)
	CancelTrip(ctx context.Context, tripID int64) (*models.Trip, error)
	Transition(ctx context.Context, tripID int64, action string) (*models.Trip, error)
}

type tripService struct {
	api      TripAPI
	validate *validator.Validate
}

func NewTripService(api TripAPI) TripService {
	return &tripService{
		api:      api,
		validate: utils.NewValidator(),
	}
}

// CreateTrip sends the passenger count as given, including none at all;
// its bounds are checked by the server.
func (s *tripService) CreateTrip(ctx context.Context, req models.TripCreateRequest) (*models.Trip, error) {
	if err := checkRequest(s.validate, req); err != nil {
		return nil, err
	}
	return s.api.CreateTrip(ctx, req)
}

func (s *tripService) MyTrips(ctx context.Context) ([]models.Trip, error) {
	return s.api.GetMyTrips(ctx)
}

// TripHistory lists completed trips; an empty role means all.
func (s *tripService) TripHistory(ctx context.Context, role string) ([]models.TripHistoryEntry, error) {
	if role == "" {
		role = models.RoleAll
	}
	if !models.IsValidHistoryRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q, want all, passenger or driver", apperrors.ErrValidation, role)
	}
	return s.api.GetTripHistory(ctx, role)
}

func (s *tripService) PendingTrips(ctx context.Context) ([]models.Trip, error) {
	return s.api.GetPendingTrips(ctx)
}

func (s *tripService) AcceptTrip(ctx context.Context, tripID int64) (*models.Trip, error) {
	return s.api.AcceptTrip(ctx, tripID)
}

func (s *tripService) StartTrip(ctx context.Context, tripID int64) (*models.Trip, error) {
	return s.api.StartTrip(ctx, tripID)
}

func (s *tripService) CompleteTrip(ctx context.Context, tripID int64) (*models.Trip, error) {
	return s.api.CompleteTrip(ctx, tripID)
}

func (s *tripService) CancelTrip(ctx context.Context, tripID int64) (*models.Trip, error) {
	return s.api.CancelTrip(ctx, tripID)
}

func (s *tripService) Transition(ctx context.Context, tripID int64, action string) (*models.Trip, error) {
	switch action {
	case models.TripActionAccept:
		return s.AcceptTrip(ctx, tripID)
	case models.TripActionStart:
		return s.StartTrip(ctx, tripID)
	case models.TripActionComplete:
		return s.CompleteTrip(ctx, tripID)
	case models.TripActionCancel:
		return s.CancelTrip(ctx, tripID)
	}
	return nil, fmt.Errorf("%w: unknown trip action %q", apperrors.ErrValidation, action)
}
