package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"reviewhub/internal/microservices/http-api/models"
)

var statsCmd = &cobra.Command{
	Use:   "stats [target-type] [target-id]",
	Short: "Show review statistics for a target",
	Long:  `Target type is one of property, city, neighborhood, country.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := models.NewTargetRef(args[0], args[1])
		if err != nil {
			return err
		}

		stats, err := statistics.ComputeStats(cmd.Context(), target)
		if err != nil {
			return fmt.Errorf("failed to compute stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Statistics for %s\n", target.String())
		fmt.Fprintf(out, "Total reviews:  %d\n", stats.TotalReviews)
		fmt.Fprintf(out, "Average rating: %.2f\n", stats.AverageRating)
		for rating := 5; rating >= 1; rating-- {
			fmt.Fprintf(out, "  %d★ %d\n", rating, stats.RatingDistribution[rating])
		}
		if stats.RecommendationRate != nil {
			fmt.Fprintf(out, "Recommended:    %d%%\n", *stats.RecommendationRate)
		}
		if stats.VerifiedReviewsCount != nil {
			fmt.Fprintf(out, "Verified:       %d\n", *stats.VerifiedReviewsCount)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
