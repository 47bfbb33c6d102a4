package models

import (
	"time"
)

// Rating bounds for overall and category ratings.
const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID                  int64     `json:"id"`
	Trip                int64     `json:"trip"`
	Reviewer            int64     `json:"reviewer"`
	ReviewedUser        int64     `json:"reviewed_user"`
	Rating              int       `json:"rating"`
	Comment             string    `json:"comment"`
	PunctualityRating   *int      `json:"punctuality_rating"`
	CleanlinessRating   *int      `json:"cleanliness_rating"`
	SafetyRating        *int      `json:"safety_rating"`
	CommunicationRating *int      `json:"communication_rating"`
	CreatedAt           time.Time `json:"created_at"`
}

type ReviewCreateRequest struct {
	Trip                int64  `json:"trip" validate:"required"`
	ReviewedUser        int64  `json:"reviewed_user" validate:"required"`
	Rating              int    `json:"rating"`
	Comment             string `json:"comment,omitempty"`
	PunctualityRating   *int   `json:"punctuality_rating,omitempty"`
	CleanlinessRating   *int   `json:"cleanliness_rating,omitempty"`
	SafetyRating        *int   `json:"safety_rating,omitempty"`
	CommunicationRating *int   `json:"communication_rating,omitempty"`
}

type PendingReview struct {
	TripID       int64       `json:"trip_id"`
	TripDetails  TripSummary `json:"trip_details"`
	UserToReview UserSummary `json:"user_to_review"`
}

type TripSummary struct {
	StartLocation string     `json:"start_location"`
	EndLocation   string     `json:"end_location"`
	CompletedAt   *time.Time `json:"completed_at"`
}

type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// ReviewSummary is the aggregate returned by ratings/reviews/user_summary/.
type ReviewSummary struct {
	UserID         int64    `json:"user_id"`
	Username       *string  `json:"username,omitempty"`
	TotalReviews   int      `json:"total_reviews"`
	AverageRating  *Decimal `json:"average_rating"`
	FiveStarCount  int      `json:"five_star_count"`
	FourStarCount  int      `json:"four_star_count"`
	ThreeStarCount int      `json:"three_star_count"`
	TwoStarCount   int      `json:"two_star_count"`
	OneStarCount   int      `json:"one_star_count"`
}

// Stars returns the histogram ordered from one to five stars.
func (s *ReviewSummary) Stars() [5]int {
	return [5]int{s.OneStarCount, s.TwoStarCount, s.ThreeStarCount, s.FourStarCount, s.FiveStarCount}
}
