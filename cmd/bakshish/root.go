package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aditya/bakshish/internal/client"
	"github.com/aditya/bakshish/internal/config"
	"github.com/aditya/bakshish/internal/service"
	"github.com/aditya/bakshish/internal/session"
	"github.com/aditya/bakshish/internal/state"
)

var cfgFile string

// application is everything a command needs once flags are parsed.
type application struct {
	cfg       *config.Config
	session   *session.Session
	closer    io.Closer
	nrApp     *newrelic.Application
	txn       *newrelic.Transaction
	auth      service.AuthService
	trips     service.TripService
	reviews   service.ReviewService
	container *state.Container
}

var app = &application{}

var rootCmd = &cobra.Command{
	Use:   "bakshish",
	Short: "Command-line client for the Euro Bakshish ride-hailing API",
	Long: `bakshish talks to the Euro Bakshish REST API: log in, request and drive
trips through their lifecycle, and review the other party once a trip is done.`,
	SilenceUsage:     true,
	SilenceErrors:    true,
	PersistentPreRun: setup,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.bakshish.yaml)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (default http://localhost:8000/api/)")
	rootCmd.PersistentFlags().String("session-backend", "", "where tokens are kept: file, redis or postgres")
	rootCmd.PersistentFlags().String("profile", "", "session profile, for keeping several accounts side by side")
	rootCmd.PersistentFlags().Duration("timeout", 0, "per-request timeout")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every HTTP request to stderr")

	viper.BindPFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, whoamiCmd, profileCmd, tripsCmd, reviewsCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".bakshish")
	}

	viper.SetEnvPrefix("bakshish")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setup loads configuration, opens the session store and wires the
// client, services and state container for the command about to run.
func setup(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if v := viper.GetString("api-url"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := viper.GetString("session-backend"); v != "" {
		cfg.SessionBackend = v
	}
	if v := viper.GetString("profile"); v != "" {
		cfg.Profile = v
	}
	if v := viper.GetDuration("timeout"); v != 0 {
		cfg.HTTPTimeout = v
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	app.cfg = cfg

	logger := log.New(io.Discard, "", 0)
	if viper.GetBool("verbose") {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	// Initialize New Relic (optional)
	if cfg.NewRelicEnabled && cfg.NewRelicLicenseKey != "" {
		app.nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelicAppName),
			newrelic.ConfigLicense(cfg.NewRelicLicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
		)
		if err != nil {
			logger.Printf("Warning: Failed to initialize New Relic: %v", err)
		} else if err := app.nrApp.WaitForConnection(5 * time.Second); err != nil {
			logger.Printf("Warning: New Relic connection timeout: %v", err)
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if app.nrApp != nil {
		app.txn = app.nrApp.StartTransaction(cmd.CommandPath())
		ctx = newrelic.NewContext(ctx, app.txn)
	}

	app.session, app.closer, err = session.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s session store: %v", cfg.SessionBackend, err)
	}

	opts := []client.Option{client.WithTimeout(cfg.HTTPTimeout), client.WithLogger(logger)}
	if app.nrApp != nil {
		opts = append(opts, client.WithNewRelic(app.nrApp))
	}
	api, err := client.New(cfg.APIBaseURL, app.session, opts...)
	if err != nil {
		log.Fatalf("Failed to create API client: %v", err)
	}

	app.auth = service.NewAuthService(api, app.session, logger)
	app.trips = service.NewTripService(api)
	app.reviews = service.NewReviewService(api)
	app.container = state.NewContainer(app.auth, app.trips)

	cmd.SetContext(ctx)
}

func (a *application) close() {
	if a.txn != nil {
		a.txn.End()
	}
	if a.nrApp != nil {
		a.nrApp.Shutdown(5 * time.Second)
	}
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			log.Printf("Failed to close session store: %v", err)
		}
	}
}
