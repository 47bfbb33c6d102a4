package service

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/aditya/bakshish/internal/client"
	"github.com/aditya/bakshish/internal/fakeapi"
	"github.com/aditya/bakshish/internal/models"
	"github.com/aditya/bakshish/internal/session"
)

var discard = log.New(io.Discard, "", 0)

// testBackend is a fake API that counts every request it receives.
type testBackend struct {
	api  *fakeapi.Server
	url  string
	hits atomic.Int64
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()

	b := &testBackend{api: fakeapi.New(fakeapi.WithLogger(discard))}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		b.api.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)
	b.url = ts.URL + "/api/"
	return b
}

type account struct {
	user    *models.User
	session *session.Session
	client  *client.Client
	auth    AuthService
	trips   TripService
	reviews ReviewService
}

// anonymous returns services bound to a fresh, empty session.
func (b *testBackend) anonymous(t *testing.T) *account {
	t.Helper()

	sess := session.New(session.NewMemoryStore())
	c, err := client.New(b.url, sess, client.WithLogger(discard))
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}
	return &account{
		session: sess,
		client:  c,
		auth:    NewAuthService(c, sess, discard),
		trips:   NewTripService(c),
		reviews: NewReviewService(c),
	}
}

// signIn seeds req on the backend and logs in through AuthService.
func (b *testBackend) signIn(t *testing.T, req models.RegisterRequest) *account {
	t.Helper()

	if _, err := b.api.CreateUser(req); err != nil {
		t.Fatalf("CreateUser(%s) error = %v", req.Username, err)
	}
	acc := b.anonymous(t)
	user, err := acc.auth.Login(context.Background(), req.Username, req.Password)
	if err != nil {
		t.Fatalf("Login(%s) error = %v", req.Username, err)
	}
	acc.user = user
	return acc
}

// completedTrip requests a trip as passenger and drives it to completion
// as driver.
func completedTrip(t *testing.T, passenger, driver *account) *models.Trip {
	t.Helper()
	ctx := context.Background()

	trip, err := passenger.trips.CreateTrip(ctx, fakeapi.TripFixture())
	if err != nil {
		t.Fatalf("CreateTrip() error = %v", err)
	}
	for _, action := range []string{models.TripActionAccept, models.TripActionStart, models.TripActionComplete} {
		if trip, err = driver.trips.Transition(ctx, trip.ID, action); err != nil {
			t.Fatalf("Transition(%s) error = %v", action, err)
		}
	}
	return trip
}
