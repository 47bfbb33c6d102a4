// Package fakeapi is an in-memory implementation of the ride-hailing REST
// API. It follows the production backend's endpoints, payloads and error
// messages closely enough to drive the client end to end in tests, in the
// dev scripts and behind cmd/fakeapi.
package fakeapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/newrelic/go-agent/v3/newrelic"

	apperrors "github.com/aditya/bakshish/internal/errors"
	"github.com/aditya/bakshish/internal/middleware"
	"github.com/aditya/bakshish/internal/models"
	"github.com/aditya/bakshish/pkg/utils"
)

type userRecord struct {
	user         models.User
	passwordHash []byte
}

type Server struct {
	mu        sync.Mutex
	users     map[int64]*userRecord
	usernames map[string]int64
	trips     map[int64]*models.Trip
	reviews   []*models.Review
	lastID    struct{ user, profile, trip, review int64 }

	tokens      *tokenIssuer
	pricer      Pricer
	validate    *validator.Validate
	idempotency *middleware.IdempotencyMiddleware
	logger      *log.Logger
	nrApp       *newrelic.Application
	now         func() time.Time
	router      chi.Router
}

type Option func(*Server)

// WithClock replaces time.Now for timestamps and token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithSecret sets the HMAC key for issued tokens.
func WithSecret(secret []byte) Option {
	return func(s *Server) {
		s.tokens.secret = secret
	}
}

func WithTokenTTL(access, refresh time.Duration) Option {
	return func(s *Server) {
		s.tokens.accessTTL = access
		s.tokens.refreshTTL = refresh
	}
}

// WithNewRelic reports each request as a transaction named after its route.
func WithNewRelic(app *newrelic.Application) Option {
	return func(s *Server) {
		s.nrApp = app
	}
}

func WithPricer(p Pricer) Option {
	return func(s *Server) {
		s.pricer = p
	}
}

func New(opts ...Option) *Server {
	s := &Server{
		users:     make(map[int64]*userRecord),
		usernames: make(map[string]int64),
		trips:     make(map[int64]*models.Trip),
		tokens: &tokenIssuer{
			secret:     []byte(utils.GenerateID()),
			accessTTL:  5 * time.Minute,
			refreshTTL: 24 * time.Hour,
		},
		pricer:   NewPricer(defaultFare),
		validate: utils.NewValidator(),
		logger:   log.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tokens.now = s.now
	s.idempotency = middleware.NewIdempotencyMiddleware(s.now)
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(s.logger))
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.NewRelicMiddleware(s.nrApp))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(s.idempotency.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.Success(w, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/users/", s.Register)
		r.Post("/users/token/", s.ObtainToken)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/users/me/", s.Me)
			r.Put("/users/update_profile/", s.UpdateProfile)
			r.Patch("/users/update_profile/", s.UpdateProfile)

			r.Post("/trips/", s.CreateTrip)
			r.Get("/trips/my_trips/", s.MyTrips)
			r.Get("/trips/trip_history/", s.TripHistory)
			r.Get("/trips/pending_trips/", s.PendingTrips)
			r.Post("/trips/{id}/accept/", s.AcceptTrip)
			r.Post("/trips/{id}/start/", s.StartTrip)
			r.Post("/trips/{id}/complete/", s.CompleteTrip)
			r.Post("/trips/{id}/cancel/", s.CancelTrip)

			r.Post("/ratings/reviews/", s.CreateReview)
			r.Get("/ratings/reviews/my_reviews_received/", s.ReviewsReceived)
			r.Get("/ratings/reviews/my_reviews_given/", s.ReviewsGiven)
			r.Get("/ratings/reviews/pending_reviews/", s.PendingReviews)
			r.Get("/ratings/reviews/user_summary/", s.UserSummary)
		})
	})

	return r
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		utils.BadRequest(w, "JSON parse error - "+err.Error())
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		if fields := utils.FieldErrors(err); fields != nil {
			utils.Error(w, apperrors.ValidationFailed(fields))
			return false
		}
		utils.BadRequest(w, err.Error())
		return false
	}
	return true
}

func handleError(w http.ResponseWriter, err error) {
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		utils.Error(w, apiErr)
		return
	}
	utils.InternalError(w, "internal server error")
}

// userView renders a stored user with its derived overall rating. The
// caller holds s.mu.
func (s *Server) userView(rec *userRecord) models.User {
	u := rec.user
	if u.PassengerProfile != nil {
		p := *u.PassengerProfile
		u.PassengerProfile = &p
	}
	if u.DriverProfile != nil {
		d := *u.DriverProfile
		u.DriverProfile = &d
	}

	var sum float64
	var n int
	if u.PassengerProfile != nil && u.PassengerProfile.AverageRating != nil {
		sum += u.PassengerProfile.AverageRating.Float64()
		n++
	}
	if u.DriverProfile != nil && u.DriverProfile.AverageRating != nil {
		sum += u.DriverProfile.AverageRating.Float64()
		n++
	}
	if n > 0 {
		u.AverageRating = models.DecimalPtr(round(sum / float64(n)))
	}
	return u
}

// sortTrips orders trips newest first, as the backend's default ordering does.
func sortTrips(trips []models.Trip) {
	sort.Slice(trips, func(i, j int) bool {
		if !trips[i].RequestedAt.Equal(trips[j].RequestedAt) {
			return trips[i].RequestedAt.After(trips[j].RequestedAt)
		}
		return trips[i].ID > trips[j].ID
	})
}

func sortReviews(reviews []models.Review) {
	sort.Slice(reviews, func(i, j int) bool {
		if !reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
			return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
		}
		return reviews[i].ID > reviews[j].ID
	})
}
