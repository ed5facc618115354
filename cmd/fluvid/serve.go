package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"fluvid/internal/app"
	"fluvid/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API server",
	Long: `Starts the HTTP API, the job progress WebSocket endpoint and the
episode release scheduler. SIGINT or SIGTERM drains in-flight requests
and stops background jobs before exiting.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	zapLogger := logger.New(cfg.Logging.Level)
	defer func() { _ = zapLogger.Sync() }()
	log := zapLogger.Sugar()

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := app.New(cfg, zapLogger)
	if err != nil {
		return fmt.Errorf("failed to build app: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Start(ctx)
	serveErr := a.Serve(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Close(closeCtx); err != nil {
		log.Errorw("error during shutdown", "error", err)
	}

	if serveErr != nil {
		return fmt.Errorf("server failed: %w", serveErr)
	}
	log.Info("fluvid server stopped")
	return nil
}
