package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/aditya/bakshish/internal/models"
	"github.com/aditya/bakshish/internal/service"
	"github.com/aditya/bakshish/internal/task"
)

// Container owns the current snapshot. Operations run as tasks and
// dispatch their outcome when the request finishes, so the snapshot is
// guarded by a mutex.
type Container struct {
	mu          sync.Mutex
	state       State
	subscribers map[int]func(State)
	nextSub     int

	auth  service.AuthService
	trips service.TripService
}

func NewContainer(auth service.AuthService, trips service.TripService) *Container {
	return &Container{
		subscribers: make(map[int]func(State)),
		auth:        auth,
		trips:       trips,
	}
}

func (c *Container) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch applies a and notifies subscribers with the new snapshot.
func (c *Container) Dispatch(a Action) State {
	c.mu.Lock()
	c.state = Reduce(c.state, a)
	next := c.state
	subs := make([]func(State), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

// Subscribe registers fn to receive every new snapshot. The returned
// function removes it.
func (c *Container) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// Restore marks the session as authenticated when a token is already
// stored, loading the user in the background.
func (c *Container) Restore(ctx context.Context) *task.Task[*models.User] {
	return run(c, ctx, func(ctx context.Context) (*models.User, error) {
		loggedIn, err := c.auth.IsLoggedIn(ctx)
		if err != nil || !loggedIn {
			return nil, err
		}
		return c.auth.CurrentUser(ctx)
	}, func(u *models.User) Action {
		if u == nil {
			return LoggedOut{}
		}
		return UserLoaded{User: u}
	})
}

func (c *Container) Login(ctx context.Context, username, password string) *task.Task[*models.User] {
	return run(c, ctx, func(ctx context.Context) (*models.User, error) {
		return c.auth.Login(ctx, username, password)
	}, func(u *models.User) Action {
		return LoginSucceeded{User: u}
	})
}

func (c *Container) RefreshUser(ctx context.Context) *task.Task[*models.User] {
	return run(c, ctx, c.auth.CurrentUser, func(u *models.User) Action {
		return UserLoaded{User: u}
	})
}

func (c *Container) Logout(ctx context.Context) *task.Task[struct{}] {
	return run(c, ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.auth.Logout(ctx)
	}, func(struct{}) Action {
		return LoggedOut{}
	})
}

func (c *Container) FetchMyTrips(ctx context.Context) *task.Task[[]models.Trip] {
	return run(c, ctx, c.trips.MyTrips, func(trips []models.Trip) Action {
		return MyTripsLoaded{Trips: trips}
	})
}

func (c *Container) FetchTripHistory(ctx context.Context, role string) *task.Task[[]models.TripHistoryEntry] {
	return run(c, ctx, func(ctx context.Context) ([]models.TripHistoryEntry, error) {
		return c.trips.TripHistory(ctx, role)
	}, func(entries []models.TripHistoryEntry) Action {
		return HistoryLoaded{Entries: entries}
	})
}

func (c *Container) CreateTrip(ctx context.Context, req models.TripCreateRequest) *task.Task[*models.Trip] {
	return run(c, ctx, func(ctx context.Context) (*models.Trip, error) {
		return c.trips.CreateTrip(ctx, req)
	}, func(t *models.Trip) Action {
		return TripCreated{Trip: *t}
	})
}

// Transition asks the server to move a trip along. A rejected transition
// leaves the cached trip as it was.
func (c *Container) Transition(ctx context.Context, tripID int64, action string) *task.Task[*models.Trip] {
	return run(c, ctx, func(ctx context.Context) (*models.Trip, error) {
		return c.trips.Transition(ctx, tripID, action)
	}, func(t *models.Trip) Action {
		return TripUpdated{Trip: *t}
	})
}

// run marks the container busy, then performs call on a task and
// dispatches either its success action or RequestFailed. A panic in call
// is reported as a failure so the snapshot never stays loading.
func run[T any](c *Container, ctx context.Context, call func(context.Context) (T, error), done func(T) Action) *task.Task[T] {
	c.Dispatch(RequestStarted{})

	return task.Run(ctx, func(ctx context.Context) (v T, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task panicked: %v", r)
			}
			if err != nil {
				c.Dispatch(RequestFailed{Err: err})
			}
		}()

		v, err = call(ctx)
		if err == nil {
			c.Dispatch(done(v))
		}
		return v, err
	})
}
