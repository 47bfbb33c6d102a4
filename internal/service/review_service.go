package service

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/aditya/bakshish/internal/models"
	"github.com/aditya/bakshish/pkg/utils"
)

// ReviewService submits and lists reviews. Duplicate reviews and the
// rating bounds are enforced by the server.
type ReviewService interface {
	CreateReview(ctx context.Context, req models.ReviewCreateRequest) (*models.Review, error)
	ReviewsReceived(ctx context.Context) ([]models.Review, error)
	ReviewsGiven(ctx context.Context) ([]models.Review, error)
	PendingReviews(ctx context.Context) ([]models.PendingReview, error)
	UserSummary(ctx context.Context, userID int64) (*models.ReviewSummary, error)
}

type reviewService struct {
	api      ReviewAPI
	validate *validator.Validate
}

func NewReviewService(api ReviewAPI) ReviewService {
	return &reviewService{
		api:      api,
		validate: utils.NewValidator(),
	}
}

func (s *reviewService) CreateReview(ctx context.Context, req models.ReviewCreateRequest) (*models.Review, error) {
	if err := checkRequest(s.validate, req); err != nil {
		return nil, err
	}
	return s.api.CreateReview(ctx, req)
}

func (s *reviewService) ReviewsReceived(ctx context.Context) ([]models.Review, error) {
	return s.api.GetMyReviewsReceived(ctx)
}

func (s *reviewService) ReviewsGiven(ctx context.Context) ([]models.Review, error) {
	return s.api.GetMyReviewsGiven(ctx)
}

func (s *reviewService) PendingReviews(ctx context.Context) ([]models.PendingReview, error) {
	return s.api.GetPendingReviews(ctx)
}

// UserSummary returns the rating aggregate of userID, or of the logged-in
// user when userID is zero.
func (s *reviewService) UserSummary(ctx context.Context, userID int64) (*models.ReviewSummary, error) {
	return s.api.GetUserSummary(ctx, userID)
}
