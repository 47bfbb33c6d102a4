package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/aditya/bakshish/internal/config"
	"github.com/aditya/bakshish/internal/fakeapi"
)

// fakeapi serves the in-memory development backend so the CLI can be
// driven end to end without the real API.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize New Relic (optional)
	var nrApp *newrelic.Application
	if cfg.NewRelicEnabled && cfg.NewRelicLicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelicAppName+"-fakeapi"),
			newrelic.ConfigLicense(cfg.NewRelicLicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
			newrelic.ConfigInfoLogger(os.Stdout),
		)
		if err != nil {
			log.Printf("Warning: Failed to initialize New Relic: %v", err)
		} else if err := nrApp.WaitForConnection(10 * time.Second); err != nil {
			log.Printf("Warning: New Relic connection timeout: %v", err)
		}
	}

	api := fakeapi.New(
		fakeapi.WithLogger(log.Default()),
		fakeapi.WithNewRelic(nrApp),
	)

	srv := &http.Server{
		Addr:         cfg.FakeAPIAddr,
		Handler:      api,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		if nrApp != nil {
			nrApp.Shutdown(5 * time.Second)
		}
	}()

	log.Printf("Fake API listening on %s", cfg.FakeAPIAddr)
	log.Println("API endpoints:")
	log.Println("  POST /api/users/                       - Register")
	log.Println("  POST /api/users/token/                 - Obtain token pair")
	log.Println("  GET  /api/users/me/                    - Current user")
	log.Println("  POST /api/trips/                       - Request trip")
	log.Println("  POST /api/trips/{id}/accept|start|complete|cancel/")
	log.Println("  POST /api/ratings/reviews/             - Review a completed trip")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped gracefully")
}
