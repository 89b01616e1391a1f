package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skilltrack/internal/llm"
	"github.com/abhisek/skilltrack/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the LLM request log",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		repo, closeFn, err := openEventRepo(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		events, err := repo.RecentLLMRequests(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No LLM requests recorded.")
			return nil
		}

		fmt.Fprintf(out, "%-5s  %-19s  %-10s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"Seq", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			fmt.Fprintf(out, "%-5d  %-19s  %-10s  %-28s  %-6d  %-6d  %-7d  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.Purpose, 10),
				truncate(e.Model, 28),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show token usage and estimated cost by purpose and model",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeFn, err := openEventRepo(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		usage, err := repo.LLMUsageByPurpose(cmd.Context())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(usage) == 0 {
			fmt.Fprintln(out, "No LLM usage recorded yet.")
			return nil
		}

		fmt.Fprintf(out, "%-10s  %-28s  %6s  %5s  %10s  %10s  %10s\n",
			"Purpose", "Model", "Calls", "Fail", "Input", "Output", "Cost")
		fmt.Fprintln(out, strings.Repeat("─", 92))

		var totalCost float64
		var unknown []string
		for _, u := range usage {
			cost := "?"
			if mc := llm.LookupCost(u.Model); mc != nil {
				c := mc.Cost(u.InputTokens, u.OutputTokens)
				totalCost += c
				cost = formatCost(c)
			} else {
				unknown = append(unknown, u.Model)
			}
			fmt.Fprintf(out, "%-10s  %-28s  %6d  %5d  %10d  %10d  %10s\n",
				truncate(u.Purpose, 10), truncate(u.Model, 28), u.Requests, u.Failures, u.InputTokens, u.OutputTokens, cost)
		}

		fmt.Fprintln(out, strings.Repeat("─", 92))
		label := "TOTAL"
		if len(unknown) > 0 {
			label = "TOTAL (partial)"
		}
		fmt.Fprintf(out, "%-40s  %49s\n", label, formatCost(totalCost))
		if len(unknown) > 0 {
			fmt.Fprintf(out, "\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
		}
		return nil
	},
}

// openEventRepo opens the SQLite request log directly; no services are needed.
func openEventRepo(cmd *cobra.Command) (store.EventRepo, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DB.Driver == "postgres" {
		return nil, nil, fmt.Errorf("the LLM request log lives in the sqlite store")
	}
	st, err := store.Open(cfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return st.EventRepo(), func() { st.Close() }, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. coach)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmUsageCmd)
}
