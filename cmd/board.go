package cmd

import (
	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/skilltrack/internal/board"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive roadmap board",
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

		p := tea.NewProgram(board.New(d.roadmap, user), tea.WithContext(cmd.Context()))
		_, err = p.Run()
		return err
	},
}
