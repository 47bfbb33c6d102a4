package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	apperrors "github.com/aditya/bakshish/internal/errors"
	"github.com/aditya/bakshish/internal/fakeapi"
	"github.com/aditya/bakshish/internal/models"
	"github.com/aditya/bakshish/internal/session"
	"github.com/aditya/bakshish/pkg/utils"
)

var discard = log.New(io.Discard, "", 0)

// recorder keeps the last request that reached the backend.
type recorder struct {
	mu     sync.Mutex
	header http.Header
	query  string
	body   []byte
}

func (rec *recorder) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		rec.mu.Lock()
		rec.header = r.Header.Clone()
		rec.query = r.URL.RawQuery
		rec.body = body
		rec.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

type testEnv struct {
	api     *fakeapi.Server
	rec     *recorder
	url     string
	session *session.Session
	client  *Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	api := fakeapi.New(fakeapi.WithLogger(discard))
	rec := &recorder{}
	ts := httptest.NewServer(rec.wrap(api))
	t.Cleanup(ts.Close)

	sess := session.New(session.NewMemoryStore())
	c, err := New(ts.URL+"/api", sess, WithLogger(discard))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return &testEnv{api: api, rec: rec, url: ts.URL, session: sess, client: c}
}

// login seeds an account, logs in with this env's client and stores the tokens.
func (e *testEnv) login(t *testing.T, req models.RegisterRequest) *models.User {
	t.Helper()
	ctx := context.Background()

	user, err := e.api.CreateUser(req)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	tokens, err := e.client.Login(ctx, models.LoginRequest{Username: req.Username, Password: req.Password})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := e.session.SaveTokens(ctx, tokens.Access, tokens.Refresh); err != nil {
		t.Fatalf("SaveTokens() error = %v", err)
	}
	return user
}

// as returns a client for the same backend with its own session.
func (e *testEnv) as(t *testing.T, req models.RegisterRequest) (*Client, *models.User) {
	t.Helper()

	other := &testEnv{api: e.api, rec: e.rec, url: e.url, session: session.New(session.NewMemoryStore())}
	c, err := New(e.url+"/api/", other.session, WithLogger(discard))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	other.client = c
	return c, other.login(t, req)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"trailing slash", "http://localhost:8000/api/", false},
		{"no trailing slash", "http://localhost:8000/api", false},
		{"https", "https://api.example.com/api/", false},
		{"no scheme", "localhost:8000/api/", true},
		{"ftp", "ftp://example.com/api/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.baseURL, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%q) error = %v, wantErr %v", tt.baseURL, err, tt.wantErr)
			}
			if err == nil && c.baseURL.Path != "/api/" {
				t.Errorf("base path = %q, want /api/", c.baseURL.Path)
			}
		})
	}
}

func TestOptionsDoNotMutateSharedHTTPClient(t *testing.T) {
	shared := &http.Client{}

	c, err := New("http://localhost:8000/api/", nil, WithHTTPClient(shared), WithTimeout(3*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if shared.Timeout != 0 {
		t.Errorf("shared client Timeout = %v, want untouched", shared.Timeout)
	}
	if c.http == shared || c.http.Timeout != 3*time.Second {
		t.Errorf("client timeout = %v, want 3s on its own copy", c.http.Timeout)
	}
}

func TestAuthorizationHeader(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.client.GetCurrentUser(ctx)
	if got := e.rec.header.Get("Authorization"); got != "" {
		t.Errorf("Authorization without token = %q, want none", got)
	}
	if !errors.Is(err, apperrors.ErrNotLoggedIn) {
		t.Errorf("GetCurrentUser() without token error = %v, want ErrNotLoggedIn", err)
	}
	if got := apperrors.Describe(err); got != "not logged in" {
		t.Errorf("Describe() = %q, want %q", got, "not logged in")
	}
	if !utils.IsValidUUID(e.rec.header.Get(RequestIDHeader)) {
		t.Errorf("X-Request-ID = %q, want a UUID", e.rec.header.Get(RequestIDHeader))
	}

	e.login(t, fakeapi.PassengerFixture("alice"))
	access, _, _ := e.session.AccessToken(ctx)

	user, err := e.client.GetCurrentUser(ctx)
	if err != nil {
		t.Fatalf("GetCurrentUser() error = %v", err)
	}
	if got := e.rec.header.Get("Authorization"); got != "Bearer "+access {
		t.Errorf("Authorization = %q, want bearer access token", got)
	}
	if user.Username != "alice" || user.DriverProfile != nil {
		t.Errorf("user = %+v", user)
	}
	if e.rec.header.Get(IdempotencyHeader) != "" {
		t.Error("GET request should not carry an Idempotency-Key")
	}
}

func TestGarbageTokenIsNotLoggedIn(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	if err := e.session.SaveTokens(ctx, "not-a-jwt", "also-not"); err != nil {
		t.Fatal(err)
	}
	_, err := e.client.GetMyTrips(ctx)
	if !errors.Is(err, apperrors.ErrNotLoggedIn) {
		t.Errorf("GetMyTrips() error = %v, want ErrNotLoggedIn", err)
	}
}

func TestTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c, err := New(url+"/api/", session.New(session.NewMemoryStore()), WithLogger(discard))
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "secret"})
	if !errors.Is(err, apperrors.ErrRequestFailed) {
		t.Fatalf("Login() error = %v, want ErrRequestFailed", err)
	}
	if got := apperrors.Describe(err); got != "request failed" {
		t.Errorf("Describe() = %q, want %q", got, "request failed")
	}
}

func TestUndecodableResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>oops</html>"))
	}))
	defer ts.Close()

	c, _ := New(ts.URL, nil, WithLogger(discard))
	_, err := c.GetMyTrips(context.Background())
	if !errors.Is(err, apperrors.ErrRequestFailed) {
		t.Errorf("GetMyTrips() error = %v, want ErrRequestFailed", err)
	}
}

func TestLoginRejected(t *testing.T) {
	e := newTestEnv(t)
	if _, err := e.api.CreateUser(fakeapi.PassengerFixture("alice")); err != nil {
		t.Fatal(err)
	}

	_, err := e.client.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "wrong"})
	var apiErr *apperrors.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Login() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", apiErr.StatusCode)
	}
	if apiErr.Message != "No active account found with the given credentials" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestRegister(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	user, err := e.client.Register(ctx, fakeapi.DriverFixture("dave"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.DriverProfile == nil || user.PassengerProfile != nil {
		t.Errorf("driver profiles = %+v / %+v", user.DriverProfile, user.PassengerProfile)
	}
	if !utils.IsValidUUID(e.rec.header.Get(IdempotencyHeader)) {
		t.Errorf("Idempotency-Key = %q, want a UUID", e.rec.header.Get(IdempotencyHeader))
	}

	_, err = e.client.Register(ctx, fakeapi.DriverFixture("dave"))
	var apiErr *apperrors.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("duplicate Register() error = %v, want *APIError", err)
	}
	if got := apiErr.Fields["username"]; len(got) == 0 {
		t.Errorf("Fields = %v, want username error", apiErr.Fields)
	}
	if apiErr.Message != "username: A user with that username already exists." {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestUpdateProfile(t *testing.T) {
	e := newTestEnv(t)
	e.login(t, fakeapi.PassengerFixture("alice"))

	first := "Alicia"
	user, err := e.client.UpdateProfile(context.Background(), models.ProfileUpdateRequest{FirstName: &first})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if user.FirstName != first {
		t.Errorf("FirstName = %q, want %q", user.FirstName, first)
	}

	var sent map[string]interface{}
	json.Unmarshal(e.rec.body, &sent)
	if len(sent) != 1 || sent["first_name"] != first {
		t.Errorf("sent body = %v, want only first_name", sent)
	}
}

func TestCreateTripSendsPassengerCountUnchanged(t *testing.T) {
	e := newTestEnv(t)
	e.login(t, fakeapi.PassengerFixture("alice"))
	ctx := context.Background()

	for _, count := range []int{0, 9} {
		req := fakeapi.TripFixture()
		req.NumberOfPassengers = &count

		_, err := e.client.CreateTrip(ctx, req)

		var sent models.TripCreateRequest
		if err := json.Unmarshal(e.rec.body, &sent); err != nil {
			t.Fatal(err)
		}
		if sent.NumberOfPassengers == nil || *sent.NumberOfPassengers != count {
			t.Errorf("sent number_of_passengers = %v, want %d", sent.NumberOfPassengers, count)
		}

		var apiErr *apperrors.APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
			t.Fatalf("CreateTrip(%d passengers) error = %v, want 400", count, err)
		}
		if len(apiErr.Fields["number_of_passengers"]) == 0 {
			t.Errorf("Fields = %v, want number_of_passengers error", apiErr.Fields)
		}
	}

	trips, err := e.client.GetMyTrips(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(trips) != 0 {
		t.Errorf("rejected trips were stored: %+v", trips)
	}
}

func TestCreateTripOmitsUnsetPassengerCount(t *testing.T) {
	e := newTestEnv(t)
	e.login(t, fakeapi.PassengerFixture("alice"))

	req := fakeapi.TripFixture()
	req.NumberOfPassengers = nil

	trip, err := e.client.CreateTrip(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateTrip() error = %v", err)
	}

	var sent map[string]interface{}
	json.Unmarshal(e.rec.body, &sent)
	if _, ok := sent["number_of_passengers"]; ok {
		t.Errorf("sent body = %v, want number_of_passengers left out", sent)
	}
	if trip.NumberOfPassengers != models.DefaultPassengers {
		t.Errorf("NumberOfPassengers = %d, want server default %d", trip.NumberOfPassengers, models.DefaultPassengers)
	}
}

func TestTripHistoryRoleQuery(t *testing.T) {
	e := newTestEnv(t)
	e.login(t, fakeapi.PassengerFixture("alice"))

	for _, role := range []string{models.RoleAll, models.RolePassenger, models.RoleDriver} {
		entries, err := e.client.GetTripHistory(context.Background(), role)
		if err != nil {
			t.Fatalf("GetTripHistory(%q) error = %v", role, err)
		}
		if entries == nil {
			t.Errorf("GetTripHistory(%q) = nil, want empty slice", role)
		}
		if e.rec.query != "role="+role {
			t.Errorf("query = %q, want role=%s", e.rec.query, role)
		}
	}
}

func TestTripLifecycleAndReviews(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.login(t, fakeapi.PassengerFixture("alice"))
	driver, dave := e.as(t, fakeapi.DriverFixture("dave"))

	trip, err := e.client.CreateTrip(ctx, fakeapi.TripFixture())
	if err != nil {
		t.Fatalf("CreateTrip() error = %v", err)
	}
	if trip.Status != models.TripStatusRequested || trip.Passenger != alice.ID {
		t.Fatalf("created trip = %+v", trip)
	}
	if !utils.IsValidUUID(e.rec.header.Get(IdempotencyHeader)) {
		t.Error("CreateTrip should send an Idempotency-Key")
	}

	if _, err := e.client.GetPendingTrips(ctx); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("passenger GetPendingTrips() error = %v, want ErrForbidden", err)
	}
	pending, err := driver.GetPendingTrips(ctx)
	if err != nil || len(pending) != 1 {
		t.Fatalf("driver GetPendingTrips() = %v, %v", pending, err)
	}

	if trip, err = driver.AcceptTrip(ctx, trip.ID); err != nil {
		t.Fatalf("AcceptTrip() error = %v", err)
	}
	if trip.Driver == nil || *trip.Driver != dave.ID {
		t.Errorf("accepted trip driver = %v, want %d", trip.Driver, dave.ID)
	}

	_, err = driver.AcceptTrip(ctx, trip.ID)
	if !errors.Is(err, apperrors.ErrBadRequest) || apperrors.Describe(err) != "Trip is not available for acceptance." {
		t.Errorf("second AcceptTrip() error = %v", err)
	}

	if trip, err = driver.StartTrip(ctx, trip.ID); err != nil || trip.Status != models.TripStatusInProgress {
		t.Fatalf("StartTrip() = %+v, %v", trip, err)
	}
	if trip, err = driver.CompleteTrip(ctx, trip.ID); err != nil || trip.Status != models.TripStatusCompleted {
		t.Fatalf("CompleteTrip() = %+v, %v", trip, err)
	}
	if trip.Fare == nil || trip.Fare.Float64() <= 0 {
		t.Errorf("completed trip fare = %v", trip.Fare)
	}

	active, _ := e.client.GetMyTrips(ctx)
	if len(active) != 0 {
		t.Errorf("active trips after completion = %d", len(active))
	}
	history, _ := e.client.GetTripHistory(ctx, models.RolePassenger)
	if len(history) != 1 || history[0].ID != trip.ID {
		t.Errorf("history = %+v", history)
	}

	reviews, err := e.client.GetPendingReviews(ctx)
	if err != nil || len(reviews) != 1 || reviews[0].UserToReview.ID != dave.ID {
		t.Fatalf("GetPendingReviews() = %+v, %v", reviews, err)
	}

	punctuality := 4
	review, err := e.client.CreateReview(ctx, models.ReviewCreateRequest{
		Trip:              trip.ID,
		ReviewedUser:      dave.ID,
		Rating:            4,
		Comment:           "on time",
		PunctualityRating: &punctuality,
	})
	if err != nil {
		t.Fatalf("CreateReview() error = %v", err)
	}
	if review.Reviewer != alice.ID || review.PunctualityRating == nil || *review.PunctualityRating != 4 {
		t.Errorf("review = %+v", review)
	}

	given, _ := e.client.GetMyReviewsGiven(ctx)
	received, _ := driver.GetMyReviewsReceived(ctx)
	if len(given) != 1 || len(received) != 1 || given[0].ID != received[0].ID {
		t.Errorf("given/received = %+v / %+v", given, received)
	}

	summary, err := e.client.GetUserSummary(ctx, dave.ID)
	if err != nil {
		t.Fatalf("GetUserSummary() error = %v", err)
	}
	if e.rec.query != "user_id="+itoa(dave.ID) {
		t.Errorf("summary query = %q", e.rec.query)
	}
	if summary.AverageRating == nil || summary.AverageRating.Float64() != 4 || summary.Stars()[3] != 1 {
		t.Errorf("summary = %+v", summary)
	}

	own, err := driver.GetUserSummary(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if e.rec.query != "" || own.UserID != dave.ID {
		t.Errorf("own summary query = %q, user = %d", e.rec.query, own.UserID)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
