package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/skilltrack/internal/llm"
)

var coachCmd = &cobra.Command{
	Use:   "coach",
	Short: "Ask the AI coach what to learn next",
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

		t, err := d.roadmap.Get(cmd.Context(), user)
		if err != nil {
			return err
		}
		c, err := d.coach(cmd.Context())
		if errors.Is(err, llm.ErrNotConfigured) {
			return fmt.Errorf("%w; set ANTHROPIC_API_KEY, OPENAI_API_KEY or GEMINI_API_KEY", err)
		}
		if err != nil {
			return err
		}

		advice, err := c.Advise(cmd.Context(), t)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, advice.Summary)
		if advice.NextSkill != "" {
			fmt.Fprintf(out, "\nNext up: %s\n", advice.NextSkill)
		}
		fmt.Fprintln(out)
		for i, s := range advice.Steps {
			fmt.Fprintf(out, "%d. %s\n", i+1, s)
		}
		return nil
	},
}
