// Package state holds the client-side view of the session: who is logged
// in, the trips on screen, and whether a request is in flight. A State is
// an immutable snapshot; actions produce the next one.
package state

import (
	apperrors "github.com/aditya/bakshish/internal/errors"
	"github.com/aditya/bakshish/internal/models"
)

type AuthState struct {
	User            *models.User
	IsAuthenticated bool
}

type TripsState struct {
	ActiveTrips []models.Trip
	TripHistory []models.TripHistoryEntry
}

type State struct {
	Auth    AuthState
	Trips   TripsState
	Loading bool
	Err     error
}

// ErrorMessage is the text shown for the last failure, or "" when there is none.
func (s State) ErrorMessage() string {
	return apperrors.Describe(s.Err)
}

// FindActive returns the active trip with the given id.
func (s State) FindActive(id int64) (models.Trip, bool) {
	for _, t := range s.Trips.ActiveTrips {
		if t.ID == id {
			return t, true
		}
	}
	return models.Trip{}, false
}

// Action is a named state change. Apply must not modify its input.
type Action interface {
	Apply(s State) State
}

// Reduce returns the state that follows s after a.
func Reduce(s State, a Action) State {
	return a.Apply(s)
}

type LoginSucceeded struct {
	User *models.User
}

func (a LoginSucceeded) Apply(s State) State {
	s.Auth = AuthState{User: a.User, IsAuthenticated: true}
	s.Loading = false
	s.Err = nil
	return s
}

type UserLoaded struct {
	User *models.User
}

func (a UserLoaded) Apply(s State) State {
	s.Auth = AuthState{User: a.User, IsAuthenticated: true}
	s.Loading = false
	return s
}

// LoggedOut drops everything tied to the previous user.
type LoggedOut struct{}

func (LoggedOut) Apply(State) State {
	return State{}
}

type RequestStarted struct{}

func (RequestStarted) Apply(s State) State {
	s.Loading = true
	s.Err = nil
	return s
}

// RequestFailed records the error and leaves every record as it was.
type RequestFailed struct {
	Err error
}

func (a RequestFailed) Apply(s State) State {
	s.Loading = false
	s.Err = a.Err
	return s
}

type MyTripsLoaded struct {
	Trips []models.Trip
}

func (a MyTripsLoaded) Apply(s State) State {
	s.Trips.ActiveTrips = make([]models.Trip, len(a.Trips))
	copy(s.Trips.ActiveTrips, a.Trips)
	s.Loading = false
	return s
}

type HistoryLoaded struct {
	Entries []models.TripHistoryEntry
}

func (a HistoryLoaded) Apply(s State) State {
	s.Trips.TripHistory = make([]models.TripHistoryEntry, len(a.Entries))
	copy(s.Trips.TripHistory, a.Entries)
	s.Loading = false
	return s
}

type TripCreated struct {
	Trip models.Trip
}

func (a TripCreated) Apply(s State) State {
	active := make([]models.Trip, 0, len(s.Trips.ActiveTrips)+1)
	active = append(active, s.Trips.ActiveTrips...)
	s.Trips.ActiveTrips = append(active, a.Trip)
	s.Loading = false
	return s
}

// TripUpdated replaces the trip with the same id. A trip that reached a
// terminal status leaves the active list; an active trip not yet listed,
// such as one a driver just accepted, is added.
type TripUpdated struct {
	Trip models.Trip
}

func (a TripUpdated) Apply(s State) State {
	active := make([]models.Trip, 0, len(s.Trips.ActiveTrips)+1)
	found := false
	for _, t := range s.Trips.ActiveTrips {
		if t.ID != a.Trip.ID {
			active = append(active, t)
			continue
		}
		found = true
		if a.Trip.IsActive() {
			active = append(active, a.Trip)
		}
	}
	if !found && a.Trip.IsActive() {
		active = append(active, a.Trip)
	}

	s.Trips.ActiveTrips = active
	s.Loading = false
	return s
}

type ClearError struct{}

func (ClearError) Apply(s State) State {
	s.Err = nil
	return s
}
