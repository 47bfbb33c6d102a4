package fakeapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/aditya/bakshish/internal/errors"
	"github.com/aditya/bakshish/internal/models"
	"github.com/aditya/bakshish/pkg/utils"
)

type tripCreateBody struct {
	StartLocationName  string   `json:"start_location_name" validate:"required,max=255"`
	StartLatitude      *float64 `json:"start_latitude" validate:"required,latitude"`
	StartLongitude     *float64 `json:"start_longitude" validate:"required,longitude"`
	EndLocationName    string   `json:"end_location_name" validate:"required,max=255"`
	EndLatitude        *float64 `json:"end_latitude" validate:"required,latitude"`
	EndLongitude       *float64 `json:"end_longitude" validate:"required,longitude"`
	PassengerNotes     string   `json:"passenger_notes"`
	NumberOfPassengers *int     `json:"number_of_passengers"`
}

// POST /api/trips/
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req tripCreateBody
	if !s.decode(w, r, &req) {
		return
	}

	passengers := models.DefaultPassengers
	if req.NumberOfPassengers != nil {
		passengers = *req.NumberOfPassengers
	}
	switch {
	case passengers < models.MinPassengers:
		utils.Error(w, apperrors.ValidationFailed(map[string][]string{
			"number_of_passengers": {fmt.Sprintf("Ensure this value is greater than or equal to %d.", models.MinPassengers)},
		}))
		return
	case passengers > models.MaxPassengers:
		utils.Error(w, apperrors.ValidationFailed(map[string][]string{
			"number_of_passengers": {fmt.Sprintf("Ensure this value is less than or equal to %d.", models.MaxPassengers)},
		}))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID.trip++
	trip := &models.Trip{
		ID:                 s.lastID.trip,
		Passenger:          currentUserID(r),
		StartLocationName:  req.StartLocationName,
		StartLatitude:      models.Decimal(*req.StartLatitude),
		StartLongitude:     models.Decimal(*req.StartLongitude),
		EndLocationName:    req.EndLocationName,
		EndLatitude:        models.Decimal(*req.EndLatitude),
		EndLongitude:       models.Decimal(*req.EndLongitude),
		Status:             models.TripStatusRequested,
		RequestedAt:        s.now().UTC(),
		PassengerNotes:     req.PassengerNotes,
		NumberOfPassengers: passengers,
	}
	s.trips[trip.ID] = trip

	utils.Created(w, *trip)
}

// GET /api/trips/my_trips/
func (s *Server) MyTrips(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	s.mu.Lock()
	trips := []models.Trip{}
	for _, t := range s.trips {
		if t.HasParticipant(userID) && t.IsActive() {
			trips = append(trips, *t)
		}
	}
	s.mu.Unlock()

	sortTrips(trips)
	utils.Success(w, trips)
}

// GET /api/trips/trip_history/?role=all|passenger|driver
func (s *Server) TripHistory(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	role := r.URL.Query().Get("role")

	s.mu.Lock()
	defer s.mu.Unlock()

	trips := []models.Trip{}
	for _, t := range s.trips {
		if t.Status != models.TripStatusCompleted {
			continue
		}
		isPassenger := t.Passenger == userID
		isDriver := t.Driver != nil && *t.Driver == userID
		switch role {
		case models.RolePassenger:
			if !isPassenger {
				continue
			}
		case models.RoleDriver:
			if !isDriver {
				continue
			}
		default:
			// Anything else, including no role, means all.
			if !isPassenger && !isDriver {
				continue
			}
		}
		trips = append(trips, *t)
	}
	sortTrips(trips)

	entries := make([]models.TripHistoryEntry, 0, len(trips))
	for _, t := range trips {
		entries = append(entries, s.historyEntry(t))
	}
	utils.Success(w, entries)
}

// historyEntry builds the reduced history record. The caller holds s.mu.
func (s *Server) historyEntry(t models.Trip) models.TripHistoryEntry {
	entry := models.TripHistoryEntry{
		ID:                t.ID,
		PassengerName:     s.users[t.Passenger].user.FullName(),
		StartLocationName: t.StartLocationName,
		EndLocationName:   t.EndLocationName,
		Status:            t.Status,
		DistanceKm:        t.DistanceKm,
		Fare:              t.Fare,
		RequestedAt:       t.RequestedAt,
		CompletedAt:       t.CompletedAt,
	}
	if t.Driver != nil {
		name := s.users[*t.Driver].user.FullName()
		entry.DriverName = &name
	}
	for _, rv := range s.reviews {
		if rv.Trip != t.ID {
			continue
		}
		if rv.Reviewer == t.Passenger {
			entry.HasPassengerReview = true
		}
		if t.Driver != nil && rv.Reviewer == *t.Driver {
			entry.HasDriverReview = true
		}
	}
	return entry
}

// GET /api/trips/pending_trips/
func (s *Server) PendingTrips(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.users[currentUserID(r)].user.DriverProfile == nil {
		utils.Forbidden(w, "Only drivers can view pending trips.")
		return
	}

	trips := []models.Trip{}
	for _, t := range s.trips {
		if t.Status == models.TripStatusRequested {
			trips = append(trips, *t)
		}
	}
	sortTrips(trips)
	utils.Success(w, trips)
}

// POST /api/trips/{id}/accept/
func (s *Server) AcceptTrip(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(t *models.Trip, userID int64) error {
		if s.users[userID].user.DriverProfile == nil {
			return apperrors.Forbidden("Only drivers can accept trips.")
		}
		if t.Status != models.TripStatusRequested {
			return apperrors.InvalidTransition("Trip is not available for acceptance.")
		}

		now := s.now().UTC()
		t.Driver = &userID
		t.Status = models.TripStatusAccepted
		t.AcceptedAt = &now
		return nil
	})
}

// POST /api/trips/{id}/start/
func (s *Server) StartTrip(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(t *models.Trip, userID int64) error {
		if t.Driver == nil || *t.Driver != userID {
			return apperrors.Forbidden("Only the assigned driver can start this trip.")
		}
		if !t.CanTransitionTo(models.TripStatusInProgress) {
			return apperrors.InvalidTransition("Trip must be accepted before starting.")
		}

		now := s.now().UTC()
		t.Status = models.TripStatusInProgress
		t.StartedAt = &now
		return nil
	})
}

// POST /api/trips/{id}/complete/
func (s *Server) CompleteTrip(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(t *models.Trip, userID int64) error {
		if t.Driver == nil || *t.Driver != userID {
			return apperrors.Forbidden("Only the assigned driver can complete this trip.")
		}
		if !t.CanTransitionTo(models.TripStatusCompleted) {
			return apperrors.InvalidTransition("Trip must be in progress to complete.")
		}

		distance := s.pricer.EstimateDistance(
			t.StartLatitude.Float64(), t.StartLongitude.Float64(),
			t.EndLatitude.Float64(), t.EndLongitude.Float64(),
		)
		duration := s.pricer.EstimateDuration(distance)
		fare := s.pricer.Fare(distance, duration)

		now := s.now().UTC()
		t.Status = models.TripStatusCompleted
		t.CompletedAt = &now
		t.DistanceKm = models.DecimalPtr(distance)
		t.EstimatedDurationMinutes = &duration
		t.Fare = models.DecimalPtr(fare)

		if p := s.users[t.Passenger].user.PassengerProfile; p != nil {
			p.TotalTrips++
		}
		if d := s.users[userID].user.DriverProfile; d != nil {
			d.TotalTrips++
		}
		return nil
	})
}

// POST /api/trips/{id}/cancel/
func (s *Server) CancelTrip(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(t *models.Trip, userID int64) error {
		if !t.HasParticipant(userID) {
			return apperrors.Forbidden("Only passenger or assigned driver can cancel this trip.")
		}
		if t.Status.IsTerminal() {
			return apperrors.InvalidTransition("Cannot cancel a completed or already cancelled trip.")
		}
		if !t.CanTransitionTo(models.TripStatusCancelled) {
			return apperrors.InvalidTransition("Cannot cancel a trip that is already in progress.")
		}

		now := s.now().UTC()
		t.Status = models.TripStatusCancelled
		t.CancelledAt = &now
		return nil
	})
}

// transition loads the trip named in the URL and applies fn under the lock.
// A trip that fn rejects is left untouched.
func (s *Server) transition(w http.ResponseWriter, r *http.Request, fn func(t *models.Trip, userID int64) error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.Error(w, apperrors.NewAPIError("not_found", "Not found.", http.StatusNotFound))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.trips[id]
	if !ok {
		utils.Error(w, apperrors.NewAPIError("not_found", "Not found.", http.StatusNotFound))
		return
	}

	trip := *stored
	if err := fn(&trip, currentUserID(r)); err != nil {
		handleError(w, err)
		return
	}
	*stored = trip

	utils.Success(w, trip)
}
