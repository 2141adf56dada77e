package cmd

import (
	"fmt"

	"ogre/core/config"
	"ogre/core/database"
	"ogre/core/logger"
	"ogre/feature/conversion"
	"ogre/feature/library"
	"ogre/feature/search"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCmd creates or updates every table the server owns.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long:  `Runs AutoMigrate for the library, conversion job and search tables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		l, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := library.NewStore(db).Migrate(ctx); err != nil {
			return err
		}
		if err := conversion.NewJobStore(db).Migrate(ctx); err != nil {
			return err
		}
		if err := search.NewIndex(db).Migrate(ctx); err != nil {
			return err
		}

		l.Info("Database schema is up to date", zap.String("driver", cfg.Database.Driver))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
