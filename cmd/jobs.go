package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ogre/core/config"
	"ogre/core/database"
	"ogre/core/logger"
	"ogre/core/storage"
	"ogre/feature/conversion"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// sweepCmd queues conversions for ebooks missing a target format.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Queue conversions for ebooks missing epub, mobi or azw3",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, l, err := newConversionService()
		if err != nil {
			return err
		}

		report, err := svc.Sweep(cmd.Context())
		if err != nil {
			return fmt.Errorf("sweep failed: %w", err)
		}

		l.Info("Sweep completed",
			zap.Int("scanned", report.Scanned),
			zap.Int("enqueued", report.Enqueued),
			zap.Int("pending", report.Pending),
			zap.Int("skipped", report.Skipped),
		)
		return nil
	},
}

// workerCmd runs the conversion workers without the HTTP server.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the conversion workers until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, l, err := newConversionService()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		l.Info("Conversion workers started")
		svc.RunWorkers(ctx)
		l.Info("Conversion workers stopped")
		return nil
	},
}

func newConversionService() (*conversion.Service, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to storage: %w", err)
	}

	return conversion.NewService(db, client, cfg.Storage, cfg.Jobs, nil, l), l, nil
}

func init() {
	RootCmd.AddCommand(sweepCmd, workerCmd)
}
