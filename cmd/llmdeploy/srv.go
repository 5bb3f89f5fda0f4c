package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"llmdeploy/internal/auth"
	"llmdeploy/internal/config"
	"llmdeploy/internal/deploy"
	"llmdeploy/internal/server"
	"llmdeploy/internal/tracking"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the task intake API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if err := cfg.ValidateServe(); err != nil {
				return err
			}

			logger := slog.Default()

			addr, err := server.ListenAddr(cfg.ListenAddr)
			if err != nil {
				return err
			}
			verifier, err := auth.NewVerifier(cfg.Secret, cfg.SecretHash)
			if err != nil {
				return err
			}
			publisher, err := newPublisher(cfg, logger)
			if err != nil {
				return err
			}
			gen, err := newGenerator(cfg, logger)
			if err != nil {
				return err
			}

			logger.Info("opening tracking store", "backend", cfg.Tracking.Backend, "path", cfg.Tracking.DBPath)
			st, err := tracking.Open(cfg.Tracking.Backend, cfg.Tracking.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			orch := deploy.New(publisher, gen, newNotifier(cfg, logger), st, deploy.Options{
				Round1Settle:  cfg.Deploy.Round1Settle.Duration,
				Round2Settle:  cfg.Deploy.Round2Settle.Duration,
				MaxChecks:     cfg.GitHub.MaxChecks,
				MaxConcurrent: int64(cfg.Deploy.MaxConcurrent),
			}, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(addr, cfg.EndpointPath, orch, verifier, logger)
			serveErr := srv.ListenAndServe(ctx)

			logger.Info("waiting for background deployments")
			if err := orch.Wait(); err != nil {
				logger.Warn("background deployment failed", "error", err)
			}
			return serveErr
		},
	}
}
