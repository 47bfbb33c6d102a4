package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aditya/bakshish/internal/models"
	"github.com/aditya/bakshish/internal/task"
)

var reviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "Rate the other party of a completed trip",
}

var reviewsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Review a user from a completed trip",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		req := models.ReviewCreateRequest{}
		req.Trip, _ = f.GetInt64("trip")
		req.ReviewedUser, _ = f.GetInt64("user")
		req.Rating, _ = f.GetInt("rating")
		req.Comment, _ = f.GetString("comment")
		req.PunctualityRating = optionalInt(cmd, "punctuality")
		req.CleanlinessRating = optionalInt(cmd, "cleanliness")
		req.SafetyRating = optionalInt(cmd, "safety")
		req.CommunicationRating = optionalInt(cmd, "communication")

		review, err := await(cmd.Context(), "Submitting review", task.Run(cmd.Context(), func(ctx context.Context) (*models.Review, error) {
			return app.reviews.CreateReview(ctx, req)
		}))
		if err != nil {
			return err
		}
		return printJSON(review)
	},
}

var reviewsReceivedCmd = &cobra.Command{
	Use:   "received",
	Short: "Reviews other users wrote about you",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reviews, err := await(cmd.Context(), "Loading reviews", task.Run(cmd.Context(), app.reviews.ReviewsReceived))
		if err != nil {
			return err
		}
		return printJSON(reviews)
	},
}

var reviewsGivenCmd = &cobra.Command{
	Use:   "given",
	Short: "Reviews you wrote",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reviews, err := await(cmd.Context(), "Loading reviews", task.Run(cmd.Context(), app.reviews.ReviewsGiven))
		if err != nil {
			return err
		}
		return printJSON(reviews)
	},
}

var reviewsPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Completed trips you have not reviewed yet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pending, err := await(cmd.Context(), "Loading pending reviews", task.Run(cmd.Context(), app.reviews.PendingReviews))
		if err != nil {
			return err
		}
		return printJSON(pending)
	},
}

var reviewsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Rating summary for a user (yourself by default)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user")
		summary, err := await(cmd.Context(), "Loading summary", task.Run(cmd.Context(), func(ctx context.Context) (*models.ReviewSummary, error) {
			return app.reviews.UserSummary(ctx, userID)
		}))
		if err != nil {
			return err
		}
		return printJSON(summary)
	},
}

// optionalInt returns nil unless the flag was given, so unset sub-ratings
// are left out of the request.
func optionalInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

func init() {
	f := reviewsCreateCmd.Flags()
	f.Int64("trip", 0, "trip id")
	f.Int64("user", 0, "id of the user being reviewed")
	f.Int("rating", 0, "overall rating (1-5)")
	f.String("comment", "", "free-form comment")
	f.Int("punctuality", 0, "punctuality rating (1-5)")
	f.Int("cleanliness", 0, "cleanliness rating (1-5)")
	f.Int("safety", 0, "safety rating (1-5)")
	f.Int("communication", 0, "communication rating (1-5)")
	reviewsCreateCmd.MarkFlagRequired("trip")
	reviewsCreateCmd.MarkFlagRequired("user")
	reviewsCreateCmd.MarkFlagRequired("rating")

	reviewsSummaryCmd.Flags().Int64("user", 0, "user id (defaults to the logged-in user)")

	reviewsCmd.AddCommand(reviewsCreateCmd, reviewsReceivedCmd, reviewsGivenCmd, reviewsPendingCmd, reviewsSummaryCmd)
}
