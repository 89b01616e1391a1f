package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/skilltrack/internal/api"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an API bearer token for a learner (development)",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := userID(cmd)
		if err != nil {
			return err
		}
		role, _ := cmd.Flags().GetString("role")
		email, _ := cmd.Flags().GetString("email")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.RequireServe(); err != nil {
			return err
		}
		tokens, err := api.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
		if err != nil {
			return err
		}
		tok, err := tokens.Issue(user, role, email)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("role", "learner", "Role claim: learner or admin")
	tokenCmd.Flags().String("email", "", "Email claim, used for completion notices")
}
