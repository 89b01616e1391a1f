package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skilltrack/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse career goals, roadmap templates and knowledge options",
}

var catalogGoalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "List career goals",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-14s  %-6s  %-26s  %s\n", "Goal", "Code", "Name", "Skills")
		fmt.Fprintln(out, strings.Repeat("─", 60))
		for _, g := range catalog.AllGoals() {
			fmt.Fprintf(out, "%-14s  %-6s  %-26s  %d\n", g, g.Code(), g.DisplayName(), len(catalog.Template(g)))
		}
	},
}

var catalogTemplatesCmd = &cobra.Command{
	Use:   "templates <goal>",
	Short: "Show the roadmap template for a goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		goal, err := parseGoalArg(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		entries := catalog.Template(goal)
		if len(entries) == 0 {
			fmt.Fprintf(out, "%s has no template; the roadmap starts empty.\n", goal.DisplayName())
			return nil
		}
		fmt.Fprintln(out, goal.DisplayName())
		fmt.Fprintln(out, strings.Repeat("─", 60))
		for i, e := range entries {
			fmt.Fprintf(out, "%2d. %-22s %s\n", i+1, e.Name, e.Description)
		}
		return nil
	},
}

var catalogKnowledgeCmd = &cobra.Command{
	Use:   "knowledge <goal>",
	Short: "List existing-knowledge options offered at setup",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		goal, _ := catalog.ParseGoal(args[0])
		opts := catalog.KnowledgeOptions(goal)
		if len(opts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No predefined options for this goal.")
			return
		}
		for _, o := range opts {
			fmt.Fprintln(cmd.OutOrStdout(), "-", o)
		}
	},
}

func parseGoalArg(s string) (catalog.Goal, error) {
	goal, ok := catalog.ParseGoal(s)
	if !ok {
		names := make([]string, 0, len(catalog.AllGoals()))
		for _, g := range catalog.AllGoals() {
			names = append(names, string(g))
		}
		return "", fmt.Errorf("unknown goal %q (want one of %s)", s, strings.Join(names, ", "))
	}
	return goal, nil
}

func init() {
	catalogCmd.AddCommand(catalogGoalsCmd)
	catalogCmd.AddCommand(catalogTemplatesCmd)
	catalogCmd.AddCommand(catalogKnowledgeCmd)
}
