package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skilltrack/internal/badges"
	"github.com/abhisek/skilltrack/internal/roadmap"
)

var badgeCmd = &cobra.Command{
	Use:   "badge",
	Short: "Course badges and badge-driven skill completion",
}

var badgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List earned badges",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := userID(cmd)
		if err != nil {
			return err
		}
		d, err := openDeps(cmd, wireOptions{})
		if err != nil {
			return err
		}
		defer d.Close()

		list, err := d.badges.List(cmd.Context(), user)
		if err != nil {
			return err
		}
		printBadges(cmd.OutOrStdout(), list)
		return nil
	},
}

var badgeCompleteCourseCmd = &cobra.Command{
	Use:   "complete-course <courseId>",
	Short: "Record a finished course, issue its badge and complete matching skills",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := userID(cmd)
		if err != nil {
			return err
		}
		d, err := openDeps(cmd, wireOptions{startBus: true})
		if err != nil {
			return err
		}
		defer d.Close()

		b, issued, err := d.badges.CompleteCourse(cmd.Context(), user, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if issued {
			fmt.Fprintf(out, "Issued %s (%s)\n", b.Name, b.VerificationID)
		} else {
			fmt.Fprintf(out, "Already holds %s\n", b.Name)
		}
		return nil
	},
}

var badgeSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Complete roadmap skills covered by earned badges",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := userID(cmd)
		if err != nil {
			return err
		}
		d, err := openDeps(cmd, wireOptions{})
		if err != nil {
			return err
		}
		defer d.Close()

		results, err := d.roadmap.SyncBadges(cmd.Context(), user)
		if err != nil {
			return err
		}
		printSyncResults(cmd.OutOrStdout(), results)
		return nil
	},
}

var badgeRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Unlock every skill, then sync badges",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := userID(cmd)
		if err != nil {
			return err
		}
		d, err := openDeps(cmd, wireOptions{})
		if err != nil {
			return err
		}
		defer d.Close()

		t, results, err := d.roadmap.Refresh(cmd.Context(), user)
		if err != nil {
			return err
		}
		printSyncResults(cmd.OutOrStdout(), results)
		fmt.Fprintln(cmd.OutOrStdout())
		printTracker(cmd.OutOrStdout(), t)
		return nil
	},
}

var badgeBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Issue badges for completed courses that lack one and refresh badge logos",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := userID(cmd)
		if err != nil {
			return err
		}
		d, err := openDeps(cmd, wireOptions{startBus: true})
		if err != nil {
			return err
		}
		defer d.Close()

		generated, err := d.badges.GenerateMissing(cmd.Context(), user)
		if err != nil {
			return err
		}
		updated, err := d.badges.RefreshStyles(cmd.Context(), user)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated %d badge(s), refreshed %d logo(s).\n", len(generated), updated)
		return nil
	},
}

func printBadges(out io.Writer, list []badges.Badge) {
	if len(list) == 0 {
		fmt.Fprintln(out, "No badges yet.")
		return
	}
	fmt.Fprintf(out, "%-40s  %-22s  %s\n", "Badge", "Verification", "Issued")
	fmt.Fprintln(out, strings.Repeat("─", 76))
	for _, b := range list {
		fmt.Fprintf(out, "%-40s  %-22s  %s\n", truncate(b.Name, 40), b.VerificationID, b.IssuedAt.Local().Format("2006-01-02"))
	}
}

func printSyncResults(out io.Writer, results []roadmap.SyncResult) {
	if len(results) == 0 {
		fmt.Fprintln(out, "No badges to sync.")
		return
	}
	for _, r := range results {
		mark := "✓"
		if !r.SkillCompleted {
			mark = "·"
		}
		line := fmt.Sprintf("%s %s", mark, r.BadgeName)
		if r.Reason != "" {
			line += "  (" + r.Reason + ")"
		}
		fmt.Fprintln(out, line)
	}
}

func init() {
	badgeCmd.AddCommand(badgeListCmd)
	badgeCmd.AddCommand(badgeCompleteCourseCmd)
	badgeCmd.AddCommand(badgeSyncCmd)
	badgeCmd.AddCommand(badgeRefreshCmd)
	badgeCmd.AddCommand(badgeBackfillCmd)
}
