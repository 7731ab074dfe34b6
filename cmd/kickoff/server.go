package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/judnich/Kickoff/internal/config"
	"github.com/judnich/Kickoff/internal/events"
	"github.com/judnich/Kickoff/internal/intern"
	"github.com/judnich/Kickoff/internal/logging"
	"github.com/judnich/Kickoff/internal/taskserver"
	"github.com/judnich/Kickoff/internal/tracing"
)

func newServerCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "server",
		Short: "run the task database and its request/reply socket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Init("kickoff-server")
			log := logging.Log

			cfg, err := config.GetServerConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cfg.Port <= 0 {
				return fmt.Errorf("invalid port number %d", cfg.Port)
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			internCfg, err := config.GetInternConfig()
			if err != nil {
				return err
			}
			pool, err := intern.New(ctx, internCfg)
			if err != nil {
				return fmt.Errorf("failed to initialize intern pool: %w", err)
			}

			eventsCfg, err := config.GetEventsConfig()
			if err != nil {
				return err
			}
			pub, err := events.New(eventsCfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize event publisher: %w", err)
			}
			defer pub.Shutdown()

			tracingCfg, err := config.GetTracingConfig()
			if err != nil {
				return err
			}
			shutdownTracing, err := tracing.Init(ctx, "kickoff-server", tracingCfg)
			if err != nil {
				return fmt.Errorf("failed to initialize tracing: %w", err)
			}
			defer shutdownTracing(context.Background())

			srv, err := taskserver.New(cfg, pool, pub, log)
			if err != nil {
				return err
			}
			defer srv.Close()

			log.Info().Int("port", cfg.Port).Msg("kickoff server starting")
			if err := srv.Run(ctx); err != nil && err != context.Canceled {
				return err
			}

			printlnc(colorLightGreen, "Server was gracefully shut down!")
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", config.DefaultPort, "port to listen on")
	return cmd
}
