package main

import (
	"context"
	"fmt"
	"time"

	"autoapply-agent/internal/adapter/httpapi"
	"autoapply-agent/internal/di"
	"autoapply-agent/internal/infrastructure/env"

	"github.com/spf13/cobra"
)

// shutdownGrace bounds how long serve waits for in-flight runs on exit.
const shutdownGrace = 2 * time.Minute

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the run API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			envs := env.NewEnvService()
			cfg := loadConfig(envs)
			if !cmd.Flags().Changed("addr") {
				addr = envs.GetWithDefault("HTTP_ADDR", addr)
			}
			return serve(cmd.Context(), cfg, httpapi.Config{
				Addr:            addr,
				LogLevel:        cfg.Log.Level,
				LogJSON:         envs.GetBool("LOG_JSON", false),
				HeadlessDefault: cfg.Headless,
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

func serve(ctx context.Context, cfg di.Config, apiCfg httpapi.Config) error {
	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	server := httpapi.NewServer(container.Queue, container.Logger, apiCfg)
	serveErr := server.ListenAndServe(ctx)

	container.Logger.Info("Shutting down, waiting for in-flight runs")
	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := container.Queue.Close(closeCtx); err != nil {
		container.Logger.Warn("Run queue did not drain in time", "error", err)
	}
	_ = container.Close(context.Background())
	return serveErr
}
