package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skilltrack/internal/catalog"
	"github.com/abhisek/skilltrack/internal/roadmap"
)

var roadmapCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Create and update the learner's skill roadmap",
}

var roadmapInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the tracker, or update its profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := userID(cmd)
		if err != nil {
			return err
		}
		goalFlag, _ := cmd.Flags().GetString("goal")
		goal, err := parseGoalArg(goalFlag)
		if err != nil {
			return err
		}
		label, _ := cmd.Flags().GetString("label")
		if label == "" {
			label = goal.DisplayName()
		}
		level, _ := cmd.Flags().GetString("level")
		intensity, _ := cmd.Flags().GetString("intensity")
		timeline, _ := cmd.Flags().GetString("timeline")
		knows, _ := cmd.Flags().GetStringSlice("knows")
		email, _ := cmd.Flags().GetString("email")

		d, err := openDeps(cmd, wireOptions{})
		if err != nil {
			return err
		}
		defer d.Close()

		t, created, err := d.roadmap.Upsert(cmd.Context(), user, roadmap.Profile{
			CareerGoal:        goal,
			CareerGoalLabel:   label,
			CurrentSkillLevel: level,
			LearningIntensity: intensity,
			GoalTimeline:      timeline,
			ExistingKnowledge: knows,
			ContactEmail:      email,
		})
		if errors.Is(err, roadmap.ErrNotEnrolled) {
			return fmt.Errorf("%w: record one with `skilltrack enroll <courseId> <courseName>`", err)
		}
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintln(cmd.OutOrStdout(), "Tracker created.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Profile updated.")
		}
		printTracker(cmd.OutOrStdout(), t)
		return nil
	},
}

var roadmapShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the roadmap",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(d *deps, user string) (*roadmap.Tracker, error) {
			return d.roadmap.Get(cmd.Context(), user)
		})
	},
}

var roadmapProgressCmd = &cobra.Command{
	Use:   "progress <skill> <0-100>",
	Short: "Set progress on an unlocked skill",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid progress %q: %w", args[1], err)
		}
		return withTracker(cmd, func(d *deps, user string) (*roadmap.Tracker, error) {
			return d.roadmap.UpdateProgress(cmd.Context(), user, args[0], p)
		})
	},
}

var roadmapCompleteCmd = &cobra.Command{
	Use:   "complete <skill>",
	Short: "Mark a skill complete",
	Long: "Mark a skill complete. Completions from elsewhere (--source other) need --desc;\n" +
		"platform completions (--source skillion) need --proof, a URL or a local image file to upload.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, _ := cmd.Flags().GetString("source")
		desc, _ := cmd.Flags().GetString("desc")
		proof, _ := cmd.Flags().GetString("proof")
		badge, _ := cmd.Flags().GetString("badge")

		return withTracker(cmd, func(d *deps, user string) (*roadmap.Tracker, error) {
			if proof != "" && !strings.Contains(proof, "://") {
				url, err := uploadProofFile(cmd, d, user, proof)
				if err != nil {
					return nil, err
				}
				proof = url
			}
			return d.roadmap.MarkSkillComplete(cmd.Context(), user, roadmap.CompleteRequest{
				SkillName:         args[0],
				Source:            roadmap.Source(source),
				SourceDescription: desc,
				ProofImageURL:     proof,
				BadgeID:           badge,
			})
		})
	},
}

var roadmapResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the tracker",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := userID(cmd)
		if err != nil {
			return err
		}
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("this deletes %s's roadmap and completion history; pass --yes to confirm", user)
		}
		d, err := openDeps(cmd, wireOptions{})
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.roadmap.Reset(cmd.Context(), user); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Tracker deleted.")
		return nil
	},
}

var roadmapStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show tracker totals per career goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, wireOptions{})
		if err != nil {
			return err
		}
		defer d.Close()
		if d.sqlite == nil {
			return fmt.Errorf("stats are only available on the sqlite store")
		}

		stats, err := d.sqlite.Trackers().Stats(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(stats) == 0 {
			fmt.Fprintln(out, "No trackers yet.")
			return nil
		}
		fmt.Fprintf(out, "%-26s  %8s  %9s  %12s\n", "Goal", "Trackers", "Completed", "Avg Progress")
		fmt.Fprintln(out, strings.Repeat("─", 62))
		for _, s := range stats {
			name := s.Goal
			if g, ok := catalog.ParseGoal(s.Goal); ok {
				name = g.DisplayName()
			}
			fmt.Fprintf(out, "%-26s  %8d  %9d  %11.1f%%\n", name, s.Trackers, s.Completed, s.AverageProgress)
		}
		return nil
	},
}

// withTracker runs fn against the configured services and prints the
// tracker it returns.
func withTracker(cmd *cobra.Command, fn func(d *deps, user string) (*roadmap.Tracker, error)) error {
	user, err := userID(cmd)
	if err != nil {
		return err
	}
	d, err := openDeps(cmd, wireOptions{})
	if err != nil {
		return err
	}
	defer d.Close()

	t, err := fn(d, user)
	if err != nil {
		return err
	}
	printTracker(cmd.OutOrStdout(), t)
	return nil
}

func uploadProofFile(cmd *cobra.Command, d *deps, user, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open proof: %w", err)
	}
	defer f.Close()
	return d.proofs.Upload(cmd.Context(), user, filepath.Base(path), "", f)
}

func printTracker(out io.Writer, t *roadmap.Tracker) {
	label := t.CareerGoalLabel
	if label == "" {
		label = t.CareerGoal.DisplayName()
	}
	fmt.Fprintf(out, "%s  (%s, %d%% complete, %d/%d skills)\n",
		label, t.CurrentSkillLevel, t.OverallProgress, t.CompletedCount(), len(t.Roadmap))
	fmt.Fprintln(out, strings.Repeat("─", 60))
	for i, s := range t.Roadmap {
		fmt.Fprintf(out, "%2d. %s %-24s %-12s %3d%%\n", i+1, s.Status.Icon(), s.Name, s.Status.DisplayName(), s.Progress)
	}
	if t.IsCompleted {
		fmt.Fprintln(out, strings.Repeat("─", 60))
		fmt.Fprintf(out, "Roadmap complete. Verification id: %s\n", t.VerificationID)
	}
}

func init() {
	roadmapInitCmd.Flags().String("goal", "", "Career goal (see `skilltrack catalog goals`)")
	roadmapInitCmd.Flags().String("label", "", "Goal label shown on the dashboard (defaults to the goal name)")
	roadmapInitCmd.Flags().String("level", "beginner", "Current skill level: "+strings.Join(catalog.SkillLevels, ", "))
	roadmapInitCmd.Flags().String("intensity", "", "Hours per week: "+strings.Join(catalog.LearningIntensities, ", "))
	roadmapInitCmd.Flags().String("timeline", "", "Months to goal: "+strings.Join(catalog.GoalTimelines, ", "))
	roadmapInitCmd.Flags().StringSlice("knows", nil, "Skills already known (comma separated)")
	roadmapInitCmd.Flags().String("email", "", "Contact email for the completion notice")
	_ = roadmapInitCmd.MarkFlagRequired("goal")

	roadmapCompleteCmd.Flags().String("source", string(roadmap.SourceExternal), "Where the skill was learned: skillion or other")
	roadmapCompleteCmd.Flags().String("desc", "", "Description of the external source")
	roadmapCompleteCmd.Flags().String("proof", "", "Proof image URL or local image file")
	roadmapCompleteCmd.Flags().String("badge", "", "Badge id backing the completion")

	roadmapResetCmd.Flags().Bool("yes", false, "Confirm deletion")

	roadmapCmd.AddCommand(roadmapInitCmd)
	roadmapCmd.AddCommand(roadmapShowCmd)
	roadmapCmd.AddCommand(roadmapProgressCmd)
	roadmapCmd.AddCommand(roadmapCompleteCmd)
	roadmapCmd.AddCommand(roadmapResetCmd)
	roadmapCmd.AddCommand(roadmapStatsCmd)
}
