package fakeapi

import (
	"fmt"
	"net/http"
	"strconv"

	apperrors "github.com/aditya/bakshish/internal/errors"
	"github.com/aditya/bakshish/internal/models"
	"github.com/aditya/bakshish/pkg/utils"
)

type reviewCreateBody struct {
	Trip                *int64 `json:"trip" validate:"required"`
	ReviewedUser        *int64 `json:"reviewed_user" validate:"required"`
	Rating              *int   `json:"rating" validate:"required,gte=1,lte=5"`
	Comment             string `json:"comment"`
	PunctualityRating   *int   `json:"punctuality_rating" validate:"omitempty,gte=1,lte=5"`
	CleanlinessRating   *int   `json:"cleanliness_rating" validate:"omitempty,gte=1,lte=5"`
	SafetyRating        *int   `json:"safety_rating" validate:"omitempty,gte=1,lte=5"`
	CommunicationRating *int   `json:"communication_rating" validate:"omitempty,gte=1,lte=5"`
}

// summaryBody mirrors the backend, which renders the average as a
// two-decimal string.
type summaryBody struct {
	UserID         int64   `json:"user_id"`
	Username       *string `json:"username,omitempty"`
	TotalReviews   int     `json:"total_reviews"`
	AverageRating  *string `json:"average_rating"`
	FiveStarCount  int     `json:"five_star_count"`
	FourStarCount  int     `json:"four_star_count"`
	ThreeStarCount int     `json:"three_star_count"`
	TwoStarCount   int     `json:"two_star_count"`
	OneStarCount   int     `json:"one_star_count"`
}

func nonFieldError(msg string) error {
	return apperrors.ValidationFailed(map[string][]string{"non_field_errors": {msg}})
}

// POST /api/ratings/reviews/
func (s *Server) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewCreateBody
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	review, err := s.addReview(currentUserID(r), req)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Created(w, *review)
}

// addReview applies the backend's review rules in order. The caller holds s.mu.
func (s *Server) addReview(reviewer int64, req reviewCreateBody) (*models.Review, error) {
	trip, ok := s.trips[*req.Trip]
	if !ok {
		return nil, apperrors.ValidationFailed(map[string][]string{
			"trip": {fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", *req.Trip)},
		})
	}
	if _, ok := s.users[*req.ReviewedUser]; !ok {
		return nil, apperrors.ValidationFailed(map[string][]string{
			"reviewed_user": {fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", *req.ReviewedUser)},
		})
	}

	switch {
	case trip.Status != models.TripStatusCompleted:
		return nil, nonFieldError("Can only review completed trips.")
	case !trip.HasParticipant(reviewer):
		return nil, nonFieldError("You can only review trips you were part of.")
	case *req.ReviewedUser == reviewer:
		return nil, nonFieldError("You cannot review yourself.")
	case !trip.HasParticipant(*req.ReviewedUser):
		return nil, nonFieldError("You can only review the other party in the trip.")
	}
	for _, rv := range s.reviews {
		if rv.Trip == trip.ID && rv.Reviewer == reviewer {
			return nil, nonFieldError("You have already reviewed this trip.")
		}
	}

	s.lastID.review++
	review := &models.Review{
		ID:                  s.lastID.review,
		Trip:                trip.ID,
		Reviewer:            reviewer,
		ReviewedUser:        *req.ReviewedUser,
		Rating:              *req.Rating,
		Comment:             req.Comment,
		PunctualityRating:   req.PunctualityRating,
		CleanlinessRating:   req.CleanlinessRating,
		SafetyRating:        req.SafetyRating,
		CommunicationRating: req.CommunicationRating,
		CreatedAt:           s.now().UTC(),
	}
	s.reviews = append(s.reviews, review)
	s.updateRating(review.ReviewedUser)

	return review, nil
}

// updateRating recomputes the per-role averages of userID: reviews from
// trips they rode count toward the passenger profile, trips they drove
// toward the driver profile.
func (s *Server) updateRating(userID int64) {
	var asPassenger, asDriver []int
	for _, rv := range s.reviews {
		if rv.ReviewedUser != userID {
			continue
		}
		trip := s.trips[rv.Trip]
		if trip.Passenger == userID {
			asPassenger = append(asPassenger, rv.Rating)
		}
		if trip.Driver != nil && *trip.Driver == userID {
			asDriver = append(asDriver, rv.Rating)
		}
	}

	u := &s.users[userID].user
	if u.PassengerProfile != nil && len(asPassenger) > 0 {
		u.PassengerProfile.AverageRating = models.DecimalPtr(average(asPassenger))
	}
	if u.DriverProfile != nil && len(asDriver) > 0 {
		u.DriverProfile.AverageRating = models.DecimalPtr(average(asDriver))
	}
}

func average(ratings []int) float64 {
	var sum int
	for _, r := range ratings {
		sum += r
	}
	return round(float64(sum) / float64(len(ratings)))
}

// GET /api/ratings/reviews/my_reviews_received/
func (s *Server) ReviewsReceived(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	utils.Success(w, s.filterReviews(func(rv *models.Review) bool { return rv.ReviewedUser == userID }))
}

// GET /api/ratings/reviews/my_reviews_given/
func (s *Server) ReviewsGiven(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	utils.Success(w, s.filterReviews(func(rv *models.Review) bool { return rv.Reviewer == userID }))
}

func (s *Server) filterReviews(keep func(*models.Review) bool) []models.Review {
	s.mu.Lock()
	defer s.mu.Unlock()

	reviews := []models.Review{}
	for _, rv := range s.reviews {
		if keep(rv) {
			reviews = append(reviews, *rv)
		}
	}
	sortReviews(reviews)
	return reviews
}

// GET /api/ratings/reviews/pending_reviews/
func (s *Server) PendingReviews(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	reviewed := make(map[int64]bool)
	for _, rv := range s.reviews {
		if rv.Reviewer == userID {
			reviewed[rv.Trip] = true
		}
	}

	trips := []models.Trip{}
	for _, t := range s.trips {
		if t.Status == models.TripStatusCompleted && t.HasParticipant(userID) && !reviewed[t.ID] {
			trips = append(trips, *t)
		}
	}
	sortTrips(trips)

	pending := []models.PendingReview{}
	for _, t := range trips {
		other, ok := t.Counterpart(userID)
		if !ok {
			continue
		}
		u := s.users[other].user
		pending = append(pending, models.PendingReview{
			TripID: t.ID,
			TripDetails: models.TripSummary{
				StartLocation: t.StartLocationName,
				EndLocation:   t.EndLocationName,
				CompletedAt:   t.CompletedAt,
			},
			UserToReview: models.UserSummary{
				ID:       u.ID,
				Username: u.Username,
				FullName: u.FullName(),
			},
		})
	}

	utils.Success(w, pending)
}

// GET /api/ratings/reviews/user_summary/?user_id=
func (s *Server) UserSummary(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.BadRequest(w, "user_id must be an integer.")
			return
		}
		userID = id
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	summary := summaryBody{UserID: userID}
	var sum int
	for _, rv := range s.reviews {
		if rv.ReviewedUser != userID {
			continue
		}
		summary.TotalReviews++
		sum += rv.Rating
		switch rv.Rating {
		case 5:
			summary.FiveStarCount++
		case 4:
			summary.FourStarCount++
		case 3:
			summary.ThreeStarCount++
		case 2:
			summary.TwoStarCount++
		case 1:
			summary.OneStarCount++
		}
	}

	if summary.TotalReviews > 0 {
		username := s.users[userID].user.Username
		avg := fmt.Sprintf("%.2f", float64(sum)/float64(summary.TotalReviews))
		summary.Username = &username
		summary.AverageRating = &avg
	}

	utils.Success(w, summary)
}
