package models

import (
	"encoding/json"
	"time"
)

type TripStatus string

// Trip status constants
const (
	TripStatusRequested  TripStatus = "requested"
	TripStatusAccepted   TripStatus = "accepted"
	TripStatusInProgress TripStatus = "in_progress"
	TripStatusCompleted  TripStatus = "completed"
	TripStatusCancelled  TripStatus = "cancelled"

	// tripStatusPending is the backend's stored name for a requested trip.
	tripStatusPending TripStatus = "pending"
)

// Valid trip state transitions
var ValidTripTransitions = map[TripStatus][]TripStatus{
	TripStatusRequested:  {TripStatusAccepted, TripStatusCancelled},
	TripStatusAccepted:   {TripStatusInProgress, TripStatusCancelled},
	TripStatusInProgress: {TripStatusCompleted},
	TripStatusCompleted:  {},
	TripStatusCancelled:  {},
}

func (s *TripStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = TripStatus(raw)
	if *s == tripStatusPending {
		*s = TripStatusRequested
	}
	return nil
}

// IsTerminal reports whether no further transition is possible.
func (s TripStatus) IsTerminal() bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}

// Trip lifecycle actions, each a POST to trips/{id}/{action}/.
const (
	TripActionAccept   = "accept"
	TripActionStart    = "start"
	TripActionComplete = "complete"
	TripActionCancel   = "cancel"
)

// Trip history role filters
const (
	RoleAll       = "all"
	RolePassenger = "passenger"
	RoleDriver    = "driver"
)

func IsValidHistoryRole(role string) bool {
	return role == RoleAll || role == RolePassenger || role == RoleDriver
}

// Passenger count bounds accepted by the backend.
const (
	MinPassengers     = 1
	MaxPassengers     = 8
	DefaultPassengers = 1
)

type Trip struct {
	ID                       int64      `json:"id"`
	Passenger                int64      `json:"passenger"`
	Driver                   *int64     `json:"driver"`
	StartLocationName        string     `json:"start_location_name"`
	StartLatitude            Decimal    `json:"start_latitude"`
	StartLongitude           Decimal    `json:"start_longitude"`
	EndLocationName          string     `json:"end_location_name"`
	EndLatitude              Decimal    `json:"end_latitude"`
	EndLongitude             Decimal    `json:"end_longitude"`
	Status                   TripStatus `json:"status"`
	DistanceKm               *Decimal   `json:"distance_km"`
	EstimatedDurationMinutes *int       `json:"estimated_duration_minutes"`
	Fare                     *Decimal   `json:"fare"`
	RequestedAt              time.Time  `json:"requested_at"`
	AcceptedAt               *time.Time `json:"accepted_at,omitempty"`
	StartedAt                *time.Time `json:"started_at,omitempty"`
	CompletedAt              *time.Time `json:"completed_at"`
	CancelledAt              *time.Time `json:"cancelled_at,omitempty"`
	PassengerNotes           string     `json:"passenger_notes"`
	DriverNotes              string     `json:"driver_notes,omitempty"`
	NumberOfPassengers       int        `json:"number_of_passengers"`
}

// TripCreateRequest is the body of POST trips/. Passenger, status and
// timestamps are assigned by the server, and so is the passenger count
// when NumberOfPassengers is nil.
type TripCreateRequest struct {
	StartLocationName  string  `json:"start_location_name" validate:"required"`
	StartLatitude      float64 `json:"start_latitude" validate:"latitude"`
	StartLongitude     float64 `json:"start_longitude" validate:"longitude"`
	EndLocationName    string  `json:"end_location_name" validate:"required"`
	EndLatitude        float64 `json:"end_latitude" validate:"latitude"`
	EndLongitude       float64 `json:"end_longitude" validate:"longitude"`
	PassengerNotes     string  `json:"passenger_notes,omitempty"`
	NumberOfPassengers *int    `json:"number_of_passengers,omitempty"`
}

// TripHistoryEntry is the reduced trip record returned by trips/trip_history/.
type TripHistoryEntry struct {
	ID                 int64      `json:"id"`
	PassengerName      string     `json:"passenger_name"`
	DriverName         *string    `json:"driver_name"`
	StartLocationName  string     `json:"start_location_name"`
	EndLocationName    string     `json:"end_location_name"`
	Status             TripStatus `json:"status"`
	DistanceKm         *Decimal   `json:"distance_km"`
	Fare               *Decimal   `json:"fare"`
	RequestedAt        time.Time  `json:"requested_at"`
	CompletedAt        *time.Time `json:"completed_at"`
	HasPassengerReview bool       `json:"has_passenger_review"`
	HasDriverReview    bool       `json:"has_driver_review"`
}

// CanTransitionTo checks if a trip can transition to a new status
func (t *Trip) CanTransitionTo(newStatus TripStatus) bool {
	validNextStates, exists := ValidTripTransitions[t.Status]
	if !exists {
		return false
	}

	for _, state := range validNextStates {
		if state == newStatus {
			return true
		}
	}
	return false
}

// IsActive returns true if the trip is not in a terminal state
func (t *Trip) IsActive() bool {
	return !t.Status.IsTerminal()
}

// HasParticipant reports whether userID is the passenger or assigned driver.
func (t *Trip) HasParticipant(userID int64) bool {
	return t.Passenger == userID || (t.Driver != nil && *t.Driver == userID)
}

// Counterpart returns the other participant of the trip for userID, or
// false when there is none yet.
func (t *Trip) Counterpart(userID int64) (int64, bool) {
	switch {
	case t.Passenger == userID && t.Driver != nil:
		return *t.Driver, true
	case t.Driver != nil && *t.Driver == userID:
		return t.Passenger, true
	}
	return 0, false
}
