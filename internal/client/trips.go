package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aditya/bakshish/internal/models"
)

func (c *Client) CreateTrip(ctx context.Context, req models.TripCreateRequest) (*models.Trip, error) {
	var trip models.Trip
	err := c.do(ctx, request{method: http.MethodPost, path: "trips/", body: req, auth: true, idempotent: true}, &trip)
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// GetMyTrips lists the caller's trips that are not completed or cancelled.
func (c *Client) GetMyTrips(ctx context.Context) ([]models.Trip, error) {
	trips := []models.Trip{}
	if err := c.do(ctx, request{method: http.MethodGet, path: "trips/my_trips/", auth: true}, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

func (c *Client) GetTripHistory(ctx context.Context, role string) ([]models.TripHistoryEntry, error) {
	entries := []models.TripHistoryEntry{}
	r := request{
		method: http.MethodGet,
		path:   "trips/trip_history/",
		query:  url.Values{"role": {role}},
		auth:   true,
	}
	if err := c.do(ctx, r, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetPendingTrips lists requested trips waiting for a driver.
func (c *Client) GetPendingTrips(ctx context.Context) ([]models.Trip, error) {
	trips := []models.Trip{}
	if err := c.do(ctx, request{method: http.MethodGet, path: "trips/pending_trips/", auth: true}, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

func (c *Client) AcceptTrip(ctx context.Context, id int64) (*models.Trip, error) {
	return c.transition(ctx, id, models.TripActionAccept)
}

func (c *Client) StartTrip(ctx context.Context, id int64) (*models.Trip, error) {
	return c.transition(ctx, id, models.TripActionStart)
}

func (c *Client) CompleteTrip(ctx context.Context, id int64) (*models.Trip, error) {
	return c.transition(ctx, id, models.TripActionComplete)
}

func (c *Client) CancelTrip(ctx context.Context, id int64) (*models.Trip, error) {
	return c.transition(ctx, id, models.TripActionCancel)
}

func (c *Client) transition(ctx context.Context, id int64, action string) (*models.Trip, error) {
	var trip models.Trip
	path := fmt.Sprintf("trips/%d/%s/", id, action)
	if err := c.do(ctx, request{method: http.MethodPost, path: path, auth: true}, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}
