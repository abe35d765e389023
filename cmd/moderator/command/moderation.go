package command

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"reviewhub/internal/microservices/http-api/models"
)

var (
	pendingPage  int
	pendingLimit int
	unsetVerify  bool
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List reviews waiting for moderation, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := moderation.ListPending(cmd.Context(), pendingPage, pendingLimit)
		if err != nil {
			return fmt.Errorf("failed to list pending reviews: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(page.Reviews) == 0 {
			fmt.Fprintln(out, "No pending reviews.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTARGET\tRATING\tREVIEWER\tCREATED\tTITLE")
		for _, r := range page.Reviews {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
				r.ID, r.Target.String(), r.Rating, r.ReviewerID,
				r.CreatedAt.Format("2006-01-02 15:04"), truncate(deref(r.Title), 40))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nPage %d, %d of %d pending\n", page.Page, len(page.Reviews), page.Total)
		return nil
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve [review-id]",
	Short: "Approve a pending review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		review, err := moderation.Approve(cmd.Context(), args[0], moderatorID)
		if err != nil {
			return fmt.Errorf("failed to approve review: %w", err)
		}
		printReview(cmd, "✓ Review approved", review)
		return nil
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject [review-id]",
	Short: "Reject a pending review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		review, err := moderation.Reject(cmd.Context(), args[0], moderatorID)
		if err != nil {
			return fmt.Errorf("failed to reject review: %w", err)
		}
		printReview(cmd, "✓ Review rejected", review)
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify [review-id]",
	Short: "Mark a review as verified (--unset clears the flag)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		review, err := moderation.SetVerified(cmd.Context(), args[0], !unsetVerify)
		if err != nil {
			return fmt.Errorf("failed to update verified flag: %w", err)
		}
		printReview(cmd, "✓ Verified flag updated", review)
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge [review-id]",
	Short: "Permanently delete a review with its votes and responses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := moderation.Purge(cmd.Context(), args[0], moderatorID); err != nil {
			return fmt.Errorf("failed to purge review: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Review %s purged\n", args[0])
		return nil
	},
}

func printReview(cmd *cobra.Command, headline string, r *models.Review) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headline)
	fmt.Fprintf(out, "ID:       %s\n", r.ID)
	fmt.Fprintf(out, "Target:   %s\n", r.Target.String())
	fmt.Fprintf(out, "Rating:   %d/5\n", r.Rating)
	fmt.Fprintf(out, "Status:   %s\n", r.Status)
	fmt.Fprintf(out, "Verified: %t\n", r.Verified)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	pendingCmd.Flags().IntVar(&pendingPage, "page", 1, "page number")
	pendingCmd.Flags().IntVar(&pendingLimit, "limit", 20, "reviews per page (max 100)")
	verifyCmd.Flags().BoolVar(&unsetVerify, "unset", false, "clear the verified flag instead of setting it")

	rootCmd.AddCommand(pendingCmd, approveCmd, rejectCmd, verifyCmd, purgeCmd)
}
