package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aditya/bakshish/internal/models"
)

func (c *Client) CreateReview(ctx context.Context, req models.ReviewCreateRequest) (*models.Review, error) {
	var review models.Review
	err := c.do(ctx, request{method: http.MethodPost, path: "ratings/reviews/", body: req, auth: true, idempotent: true}, &review)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (c *Client) GetMyReviewsReceived(ctx context.Context) ([]models.Review, error) {
	return c.listReviews(ctx, "ratings/reviews/my_reviews_received/")
}

func (c *Client) GetMyReviewsGiven(ctx context.Context) ([]models.Review, error) {
	return c.listReviews(ctx, "ratings/reviews/my_reviews_given/")
}

func (c *Client) GetPendingReviews(ctx context.Context) ([]models.PendingReview, error) {
	pending := []models.PendingReview{}
	if err := c.do(ctx, request{method: http.MethodGet, path: "ratings/reviews/pending_reviews/", auth: true}, &pending); err != nil {
		return nil, err
	}
	return pending, nil
}

// GetUserSummary fetches the rating aggregate for userID; zero asks for the
// caller's own summary.
func (c *Client) GetUserSummary(ctx context.Context, userID int64) (*models.ReviewSummary, error) {
	r := request{method: http.MethodGet, path: "ratings/reviews/user_summary/", auth: true}
	if userID != 0 {
		r.query = url.Values{"user_id": {strconv.FormatInt(userID, 10)}}
	}

	var summary models.ReviewSummary
	if err := c.do(ctx, r, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) listReviews(ctx context.Context, path string) ([]models.Review, error) {
	reviews := []models.Review{}
	if err := c.do(ctx, request{method: http.MethodGet, path: path, auth: true}, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}
