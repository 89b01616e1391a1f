package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <courseId> <courseName>",
	Short: "Record a paid course enrollment for the learner",
	Args:  cobra.ExactArgs(2),
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

		if err := d.enrollments.Enroll(cmd.Context(), user, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Enrolled %s in %s.\n", user, args[1])
		return nil
	},
}
