package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aditya/bakshish/internal/models"
	"github.com/aditya/bakshish/internal/task"
)

var tripsCmd = &cobra.Command{
	Use:   "trips",
	Short: "Request, list and drive trips",
}

var tripsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Request a trip as a passenger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		req := models.TripCreateRequest{}
		req.StartLocationName, _ = f.GetString("from")
		req.StartLatitude, _ = f.GetFloat64("from-lat")
		req.StartLongitude, _ = f.GetFloat64("from-lng")
		req.EndLocationName, _ = f.GetString("to")
		req.EndLatitude, _ = f.GetFloat64("to-lat")
		req.EndLongitude, _ = f.GetFloat64("to-lng")
		req.PassengerNotes, _ = f.GetString("notes")
		req.NumberOfPassengers = optionalInt(cmd, "passengers")

		trip, err := await(cmd.Context(), "Requesting trip", app.container.CreateTrip(cmd.Context(), req))
		if err != nil {
			return err
		}
		return printJSON(trip)
	},
}

var tripsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show your trips that are not finished yet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		trips, err := await(cmd.Context(), "Loading trips", app.container.FetchMyTrips(cmd.Context()))
		if err != nil {
			return err
		}
		return printJSON(trips)
	},
}

var tripsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show finished and cancelled trips",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		entries, err := await(cmd.Context(), "Loading history", app.container.FetchTripHistory(cmd.Context(), role))
		if err != nil {
			return err
		}
		return printJSON(entries)
	},
}

var tripsPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Show requested trips waiting for a driver",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		trips, err := await(cmd.Context(), "Loading requests", task.Run(cmd.Context(), app.trips.PendingTrips))
		if err != nil {
			return err
		}
		return printJSON(trips)
	},
}

// transitionCmd builds the accept/start/complete/cancel subcommands,
// which differ only in the action they post.
func transitionCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <trip-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid trip id %q", args[0])
			}

			trip, err := await(cmd.Context(), "Updating trip", app.container.Transition(cmd.Context(), id, action))
			if err != nil {
				return err
			}
			return printJSON(trip)
		},
	}
}

func init() {
	f := tripsCreateCmd.Flags()
	f.String("from", "", "pickup location name")
	f.Float64("from-lat", 0, "pickup latitude")
	f.Float64("from-lng", 0, "pickup longitude")
	f.String("to", "", "destination name")
	f.Float64("to-lat", 0, "destination latitude")
	f.Float64("to-lng", 0, "destination longitude")
	f.String("notes", "", "note for the driver")
	f.Int("passengers", models.DefaultPassengers, "number of passengers (1-8, server default when omitted)")
	tripsCreateCmd.MarkFlagRequired("from")
	tripsCreateCmd.MarkFlagRequired("to")

	tripsHistoryCmd.Flags().String("role", models.RoleAll, "all, passenger or driver")

	tripsCmd.AddCommand(
		tripsCreateCmd,
		tripsListCmd,
		tripsHistoryCmd,
		tripsPendingCmd,
		transitionCmd(models.TripActionAccept, "Accept a requested trip as its driver"),
		transitionCmd(models.TripActionStart, "Start an accepted trip"),
		transitionCmd(models.TripActionComplete, "Complete a trip in progress"),
		transitionCmd(models.TripActionCancel, "Cancel a trip that has not started"),
	)
}
