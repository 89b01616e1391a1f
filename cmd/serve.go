package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/skilltrack/internal/api"
	"github.com/abhisek/skilltrack/internal/authz"
	"github.com/abhisek/skilltrack/internal/llm"
	"github.com/abhisek/skilltrack/internal/supervisor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the event router",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		d, err := openDeps(cmd, wireOptions{server: true})
		if err != nil {
			return err
		}
		defer d.Close()
		cfg, log := d.cfg, d.log.With("service", "Serve")

		if err := cfg.RequireServe(); err != nil {
			return err
		}
		if cfg.Env == "production" {
			gin.SetMode(gin.ReleaseMode)
		}
		tokens, err := api.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
		if err != nil {
			return err
		}
		enforcer, err := authz.NewEnforcer(cfg.Auth.PolicyPath)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		coach, err := d.coach(ctx)
		switch {
		case errors.Is(err, llm.ErrNotConfigured):
			log.Warn("coach disabled", "reason", err)
		case err != nil:
			return err
		}

		opts := api.Options{RateLimit: cfg.HTTP.RateLimit, RateBurst: cfg.HTTP.RateBurst}
		if d.proofsDir != "" && cfg.Proofs.PublicBaseURL == "" {
			opts.ProofsDir, opts.ProofsURLPrefix = d.proofsDir, localProofsPrefix
		}
		srv, err := api.New(api.Deps{
			Roadmap:     d.roadmap,
			Badges:      d.badges,
			Enrollments: d.enrollments,
			Proofs:      d.proofs,
			Coach:       coach,
			Authz:       enforcer,
			Tokens:      tokens,
			Log:         d.log,
		}, opts)
		if err != nil {
			return err
		}

		if addr == "" {
			addr = cfg.HTTP.Addr
		}
		httpServer := &http.Server{
			Addr:              addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		tree := supervisor.NewTree(d.log, supervisor.DefaultTreeConfig())
		tree.AddMessagingService(supervisor.NewRunnerService("event-router", d.bus))
		tree.AddAPIService(supervisor.NewHTTPService(httpServer, cfg.HTTP.ShutdownTimeout))

		log.Info("listening", "addr", addr, "env", cfg.Env, "db", cfg.DB.Driver)
		err = tree.Serve(ctx)
		if errors.Is(err, context.Canceled) {
			log.Info("shut down")
			return nil
		}
		return err
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides SKILLTRACK_HTTP_ADDR)")
}
