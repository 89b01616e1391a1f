package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhisek/skilltrack/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "skilltrack",
	Short: "Career skill roadmaps with badge-backed progress",
	Long: "Skilltrack keeps a learner's career roadmap: skills to learn, progress on each,\n" +
		"completions verified by course badges, and a certificate id once every skill is done.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SKILLTRACK_DB_PATH)")
	rootCmd.PersistentFlags().String("env", "", "Environment name; selects config/.env.<env> (overrides SKILLTRACK_ENV)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log at the configured level instead of warnings only")
	rootCmd.PersistentFlags().StringP("user", "u", os.Getenv("USER"), "Learner id to act as")

	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(roadmapCmd)
	rootCmd.AddCommand(badgeCmd)
	rootCmd.AddCommand(enrollCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(coachCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig builds the configuration with persistent flags bound over
// environment and defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	env, _ := cmd.Flags().GetString("env")
	v, err := config.New(env)
	if err != nil {
		return nil, err
	}
	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}
	return config.FromViper(v)
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if f := cmd.Flags().Lookup("db"); f != nil && f.Changed {
		if err := v.BindPFlag("db.path", f); err != nil {
			return err
		}
	}
	return nil
}

// userID returns the learner selected with --user.
func userID(cmd *cobra.Command) (string, error) {
	u, _ := cmd.Flags().GetString("user")
	if u == "" {
		return "", errNoUser
	}
	return u, nil
}
