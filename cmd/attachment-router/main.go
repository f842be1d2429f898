package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/attachment-router/internal/config"
	"github.com/mikey/attachment-router/internal/core"
	"github.com/mikey/attachment-router/internal/di"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the job; any error means a non-zero exit for the scheduler
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	cfg *config.Config,
	service *core.RouterService,
	ledger core.Ledger,
) error {
	defer logger.Sync()

	// Close any resources that need closing
	defer func() {
		if closer, ok := ledger.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close ledger", zap.Error(err))
			}
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source := cfg.GetSource()
	if source.Bucket == "" {
		logger.Error("Source bucket is not configured")
		return fmt.Errorf("source.bucket is required")
	}

	report, err := service.Run(ctx, core.RunRequest{
		Bucket: source.Bucket,
		Key:    source.Key,
		Prefix: source.Prefix,
	})
	if err != nil {
		fields := []zap.Field{zap.Error(err), zap.String("kind", errorKind(err))}
		if report != nil {
			fields = append(fields, zap.Int("completed_writes", len(report.Written)))
		}
		logger.Error("Run failed", fields...)
		return err
	}

	logger.Info("Run finished",
		zap.String("run_id", report.RunID),
		zap.String("status", string(report.Status)),
		zap.Strings("accepted", report.Accepted))
	return nil
}
