package cmd

import (
	"fmt"

	"ogre/core/config"
	"ogre/core/database"
	"ogre/core/logger"
	"ogre/core/storage"
	"ogre/feature/library"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var preferredFormat string

// userCmd is the parent command for user management.
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage library users",
}

// userCreateCmd registers a user and prints the generated API key.
var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user and print its API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		// The storage client is never touched when creating users.
		svc := library.NewService(db, nil, storage.Config{}, cfg.Library, nil, l)
		user, err := svc.CreateUser(cmd.Context(), args[0], preferredFormat)
		if err != nil {
			return err
		}

		l.Info("User created", zap.String("username", user.Username), zap.Uint("id", user.ID))
		fmt.Println(user.APIKey)
		return nil
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&preferredFormat, "format", "", "Preferred download format (e.g. epub)")
	userCmd.AddCommand(userCreateCmd)
	RootCmd.AddCommand(userCmd)
}
