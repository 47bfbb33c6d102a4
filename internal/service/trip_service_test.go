package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	apperrors "github.com/aditya/bakshish/internal/errors"
	"github.com/aditya/bakshish/internal/fakeapi"
	"github.com/aditya/bakshish/internal/models"
)

func TestCreateTripPassengerCount(t *testing.T) {
	b := newTestBackend(t)
	acc := b.signIn(t, fakeapi.PassengerFixture("alice"))

	count := func(n int) *int { return &n }

	tests := []struct {
		name      string
		count     *int
		wantCount int
		wantField bool
	}{
		{"omitted uses server default", nil, models.DefaultPassengers, false},
		{"upper bound", count(8), 8, false},
		{"zero is sent as zero", count(0), 0, true},
		{"above bound is not clamped", count(9), 0, true},
		{"negative is not clamped", count(-1), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := fakeapi.TripFixture()
			req.NumberOfPassengers = tt.count

			trip, err := acc.trips.CreateTrip(context.Background(), req)
			if tt.wantField {
				var apiErr *apperrors.APIError
				if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
					t.Fatalf("CreateTrip() error = %v, want a 400 from the server", err)
				}
				if len(apiErr.Fields["number_of_passengers"]) == 0 {
					t.Errorf("Fields = %v", apiErr.Fields)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateTrip() error = %v", err)
			}
			if trip.NumberOfPassengers != tt.wantCount {
				t.Errorf("NumberOfPassengers = %d, want %d", trip.NumberOfPassengers, tt.wantCount)
			}
		})
	}
}

func TestCreateTripRequiresLocations(t *testing.T) {
	b := newTestBackend(t)
	acc := b.signIn(t, fakeapi.PassengerFixture("alice"))

	req := fakeapi.TripFixture()
	req.StartLocationName = ""

	hits := b.hits.Load()
	if _, err := acc.trips.CreateTrip(context.Background(), req); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("CreateTrip() error = %v, want ErrValidation", err)
	}
	if b.hits.Load() != hits {
		t.Error("invalid trip reached the server")
	}
}

func TestTripHistoryRole(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	passenger := b.signIn(t, fakeapi.PassengerFixture("alice"))
	driver := b.signIn(t, fakeapi.DriverFixture("dave"))
	completedTrip(t, passenger, driver)

	tests := []struct {
		account *account
		role    string
		want    int
	}{
		{passenger, "", 1},
		{passenger, models.RolePassenger, 1},
		{passenger, models.RoleDriver, 0},
		{driver, models.RoleDriver, 1},
		{driver, models.RolePassenger, 0},
	}
	for _, tt := range tests {
		entries, err := tt.account.trips.TripHistory(ctx, tt.role)
		if err != nil {
			t.Fatalf("TripHistory(%q) error = %v", tt.role, err)
		}
		if len(entries) != tt.want {
			t.Errorf("%s TripHistory(%q) = %d entries, want %d", tt.account.user.Username, tt.role, len(entries), tt.want)
		}
	}

	hits := b.hits.Load()
	if _, err := passenger.trips.TripHistory(ctx, "owner"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("TripHistory(owner) error = %v, want ErrValidation", err)
	}
	if b.hits.Load() != hits {
		t.Error("unknown role reached the server")
	}
}

func TestTransition(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	passenger := b.signIn(t, fakeapi.PassengerFixture("alice"))
	driver := b.signIn(t, fakeapi.DriverFixture("dave"))

	trip, err := passenger.trips.CreateTrip(ctx, fakeapi.TripFixture())
	if err != nil {
		t.Fatal(err)
	}

	pending, err := driver.trips.PendingTrips(ctx)
	if err != nil || len(pending) != 1 {
		t.Fatalf("PendingTrips() = %v, %v", pending, err)
	}

	// The server, not the client, rejects an illegal step.
	_, err = driver.trips.StartTrip(ctx, trip.ID)
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("StartTrip() before accept error = %v, want ErrForbidden", err)
	}

	if trip, err = driver.trips.AcceptTrip(ctx, trip.ID); err != nil {
		t.Fatalf("AcceptTrip() error = %v", err)
	}
	active, _ := passenger.trips.MyTrips(ctx)
	if len(active) != 1 || active[0].Status != models.TripStatusAccepted {
		t.Errorf("passenger MyTrips() = %+v", active)
	}

	if trip, err = passenger.trips.CancelTrip(ctx, trip.ID); err != nil {
		t.Fatalf("CancelTrip() error = %v", err)
	}
	if trip.Status != models.TripStatusCancelled {
		t.Errorf("Status = %q, want cancelled", trip.Status)
	}

	_, err = driver.trips.CompleteTrip(ctx, trip.ID)
	if got := apperrors.Describe(err); got != "Trip must be in progress to complete." {
		t.Errorf("CompleteTrip() on cancelled trip = %q", got)
	}

	if _, err := driver.trips.Transition(ctx, trip.ID, "teleport"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Transition(teleport) error = %v, want ErrValidation", err)
	}
}
