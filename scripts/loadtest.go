//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aditya/bakshish/internal/client"
	"github.com/aditya/bakshish/internal/config"
	"github.com/aditya/bakshish/internal/fakeapi"
	"github.com/aditya/bakshish/internal/service"
	"github.com/aditya/bakshish/internal/session"
)

type Stats struct {
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
	TotalLatency    int64
	MinLatency      int64
	MaxLatency      int64
}

func newStats() *Stats {
	return &Stats{MinLatency: int64(^uint64(0) >> 1)}
}

func (s *Stats) record(latency int64, err error) {
	atomic.AddInt64(&s.TotalRequests, 1)
	atomic.AddInt64(&s.TotalLatency, latency)
	if err != nil {
		atomic.AddInt64(&s.FailedRequests, 1)
		return
	}
	atomic.AddInt64(&s.SuccessRequests, 1)

	for {
		old := atomic.LoadInt64(&s.MinLatency)
		if latency >= old || atomic.CompareAndSwapInt64(&s.MinLatency, old, latency) {
			break
		}
	}
	for {
		old := atomic.LoadInt64(&s.MaxLatency)
		if latency <= old || atomic.CompareAndSwapInt64(&s.MaxLatency, old, latency) {
			break
		}
	}
}

type rider struct {
	trips service.TripService
	auth  service.AuthService
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	ctx := context.Background()

	fmt.Println("Bakshish Load Test")
	fmt.Println("==================")

	fmt.Println("\n1. Creating test accounts...")
	riders := createRiders(ctx, cfg, 20)
	if len(riders) == 0 {
		log.Fatal("Failed to create test data")
	}
	fmt.Printf("Created %d passengers\n", len(riders))

	fmt.Println("\n2. Testing Trip Requests (200 trips, 10 concurrent)...")
	stats := hammer(riders, 200, 10, func(ctx context.Context, r rider) error {
		_, err := r.trips.CreateTrip(ctx, fakeapi.TripFixture())
		return err
	})
	printStats("Trip Requests", stats)

	fmt.Println("\n3. Testing Trip Listing (500 requests, 50 concurrent)...")
	stats = hammer(riders, 500, 50, func(ctx context.Context, r rider) error {
		_, err := r.trips.MyTrips(ctx)
		return err
	})
	printStats("Trip Listing", stats)

	fmt.Println("\n4. Testing Profile Reads (500 requests, 50 concurrent)...")
	stats = hammer(riders, 500, 50, func(ctx context.Context, r rider) error {
		_, err := r.auth.CurrentUser(ctx)
		return err
	})
	printStats("Profile Reads", stats)

	fmt.Println("\nLoad test completed!")
}

func createRiders(ctx context.Context, cfg *config.Config, n int) []rider {
	riders := make([]rider, 0, n)
	for i := 0; i < n; i++ {
		sess := session.New(session.NewMemoryStore())
		api, err := client.New(cfg.APIBaseURL, sess, client.WithTimeout(cfg.HTTPTimeout))
		if err != nil {
			log.Fatalf("Failed to create API client: %v", err)
		}
		auth := service.NewAuthService(api, sess, nil)

		username := fmt.Sprintf("loadtest_%d_%d", i, time.Now().UnixNano()%100000)
		if _, err := auth.Register(ctx, fakeapi.PassengerFixture(username)); err != nil {
			continue
		}
		if _, err := auth.Login(ctx, username, fakeapi.FixturePassword); err != nil {
			continue
		}
		riders = append(riders, rider{trips: service.NewTripService(api), auth: auth})
	}
	return riders
}

// hammer runs op numRequests times with at most concurrency in flight,
// spreading the calls across riders.
func hammer(riders []rider, numRequests, concurrency int, op func(context.Context, rider) error) *Stats {
	stats := newStats()
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(r rider) {
			defer wg.Done()
			defer func() { <-semaphore }()

			start := time.Now()
			err := op(context.Background(), r)
			stats.record(time.Since(start).Milliseconds(), err)
		}(riders[i%len(riders)])
	}

	wg.Wait()
	return stats
}

func printStats(name string, stats *Stats) {
	avgLatency := float64(0)
	if stats.TotalRequests > 0 {
		avgLatency = float64(stats.TotalLatency) / float64(stats.TotalRequests)
	}

	fmt.Printf("\n%s Results:\n", name)
	fmt.Printf("  Total Requests:   %d\n", stats.TotalRequests)
	fmt.Printf("  Successful:       %d\n", stats.SuccessRequests)
	fmt.Printf("  Failed:           %d\n", stats.FailedRequests)
	fmt.Printf("  Success Rate:     %.2f%%\n", float64(stats.SuccessRequests)/float64(stats.TotalRequests)*100)
	fmt.Printf("  Avg Latency:      %.2f ms\n", avgLatency)
	if stats.MinLatency != int64(^uint64(0)>>1) {
		fmt.Printf("  Min Latency:      %d ms\n", stats.MinLatency)
	}
	fmt.Printf("  Max Latency:      %d ms\n", stats.MaxLatency)
}
