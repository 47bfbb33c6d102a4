package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/aditya/bakshish/internal/errors"
	"github.com/aditya/bakshish/internal/models"
	"github.com/aditya/bakshish/pkg/utils"
)

// AuthAPI is the part of the REST client the auth flows call.
type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.TokenPair, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	GetCurrentUser(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, req models.ProfileUpdateRequest) (*models.User, error)
}

type TripAPI interface {
	CreateTrip(ctx context.Context, req models.TripCreateRequest) (*models.Trip, error)
	GetMyTrips(ctx context.Context) ([]models.Trip, error)
	GetTripHistory(ctx context.Context, role string) ([]models.TripHistoryEntry, error)
	GetPendingTrips(ctx context.Context) ([]models.Trip, error)
	AcceptTrip(ctx context.Context, id int64) (*models.Trip, error)
	StartTrip(ctx context.Context, id int64) (*models.Trip, error)
	CompleteTrip(ctx context.Context, id int64) (*models.Trip, error)
	CancelTrip(ctx context.Context, id int64) (*models.Trip, error)
}

type ReviewAPI interface {
	CreateReview(ctx context.Context, req models.ReviewCreateRequest) (*models.Review, error)
	GetMyReviewsReceived(ctx context.Context) ([]models.Review, error)
	GetMyReviewsGiven(ctx context.Context) ([]models.Review, error)
	GetPendingReviews(ctx context.Context) ([]models.PendingReview, error)
	GetUserSummary(ctx context.Context, userID int64) (*models.ReviewSummary, error)
}

// checkRequest runs the local validation rules on a request payload.
func checkRequest(v *validator.Validate, req interface{}) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	for _, fe := range verrs {
		if fe.Tag() == "eqfield" {
			return apperrors.ErrPasswordMismatch
		}
	}
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, apperrors.ValidationFailed(utils.FieldErrors(err)).Message)
}
