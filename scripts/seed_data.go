//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/schollz/progressbar/v3"

	"github.com/aditya/bakshish/internal/client"
	"github.com/aditya/bakshish/internal/config"
	"github.com/aditya/bakshish/internal/fakeapi"
	"github.com/aditya/bakshish/internal/models"
	"github.com/aditya/bakshish/internal/service"
	"github.com/aditya/bakshish/internal/session"
)

const (
	numPassengers = 20
	numDrivers    = 10
	numTrips      = 40
)

type account struct {
	user    *models.User
	trips   service.TripService
	reviews service.ReviewService
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	ctx := context.Background()

	// Create accounts
	passengers := register(ctx, cfg, "passenger", numPassengers, fakeapi.PassengerFixture)
	drivers := register(ctx, cfg, "driver", numDrivers, fakeapi.DriverFixture)
	if len(passengers) == 0 || len(drivers) == 0 {
		log.Fatal("Failed to create seed accounts")
	}

	// Request trips and drive most of them to completion
	bar := progressbar.Default(numTrips, "trips")
	completed, reviewed := 0, 0
	for i := 0; i < numTrips; i++ {
		bar.Add(1)
		p := passengers[rand.Intn(len(passengers))]
		d := drivers[rand.Intn(len(drivers))]

		trip, err := p.trips.CreateTrip(ctx, fakeapi.TripFixture())
		if err != nil {
			log.Printf("Failed to create trip: %v", err)
			continue
		}
		if rand.Float64() < 0.2 {
			continue // left requested for drivers to pick up
		}

		ok := true
		for _, action := range []string{models.TripActionAccept, models.TripActionStart, models.TripActionComplete} {
			if _, err := d.trips.Transition(ctx, trip.ID, action); err != nil {
				log.Printf("Failed to %s trip %d: %v", action, trip.ID, err)
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		completed++

		if rand.Float64() < 0.7 {
			req := models.ReviewCreateRequest{Trip: trip.ID, ReviewedUser: d.user.ID, Rating: 3 + rand.Intn(3)}
			if _, err := p.reviews.CreateReview(ctx, req); err != nil {
				log.Printf("Failed to review trip %d: %v", trip.ID, err)
				continue
			}
			reviewed++
		}
	}

	// Summary
	log.Println("\n=== Seed Data Summary ===")
	log.Printf("Passengers created: %d", len(passengers))
	log.Printf("Drivers created: %d", len(drivers))
	log.Printf("Trips completed: %d of %d (%d reviewed)", completed, numTrips, reviewed)
	log.Printf("\nLog in with any of them, e.g. bakshish login -u %s -p %s", passengers[0].user.Username, fakeapi.FixturePassword)
}

// register creates n accounts, each signed in on its own in-memory session.
func register(ctx context.Context, cfg *config.Config, prefix string, n int, fixture func(string) models.RegisterRequest) []account {
	bar := progressbar.Default(int64(n), prefix+"s")
	accounts := make([]account, 0, n)

	for i := 0; i < n; i++ {
		bar.Add(1)
		sess := session.New(session.NewMemoryStore())
		api, err := client.New(cfg.APIBaseURL, sess, client.WithTimeout(cfg.HTTPTimeout))
		if err != nil {
			log.Fatalf("Failed to create API client: %v", err)
		}
		auth := service.NewAuthService(api, sess, nil)

		username := fmt.Sprintf("%s%03d_%04d", prefix, i, rand.Intn(10000))
		if _, err := auth.Register(ctx, fixture(username)); err != nil {
			log.Printf("Failed to register %s: %v", username, err)
			continue
		}
		user, err := auth.Login(ctx, username, fakeapi.FixturePassword)
		if err != nil {
			log.Printf("Failed to log in %s: %v", username, err)
			continue
		}
		accounts = append(accounts, account{
			user:    user,
			trips:   service.NewTripService(api),
			reviews: service.NewReviewService(api),
		})
	}
	return accounts
}
