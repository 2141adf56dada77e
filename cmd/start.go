package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ogre/core/config"
	"ogre/core/database"
	"ogre/core/loader"
	"ogre/core/logger"
	"ogre/core/middleware/auth"
	"ogre/core/middleware/rayid"
	"ogre/core/storage"

	"ogre/feature/conversion"
	"ogre/feature/integrity"
	"ogre/feature/library"
	"ogre/feature/search"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "ogre/docs/swagger"
)

// @title OGRE API
// @version 1.0
// @description Ebook library synchronisation and deduplication server.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-Api-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the OGRE server",
	Long:  `Starts the HTTP server, initializes all enabled features and, when jobs.enabled is set, the conversion workers.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database (library features are disabled without it)
		var db *gorm.DB
		if conn, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Database connection failed, library features disabled", zap.Error(err))
		} else {
			db = conn
			logg = logg.With(zap.String("driver", cfg.Database.Driver))
			logg.Info("Connected to library database")
		}

		// 4. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             cfg.Server.BodyLimit(),
		})

		// 5. Initialize Storage
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}

		// 6. Initialize Feature Loader
		mgr := loader.NewManager(logg)

		var indexer library.Indexer
		if db != nil {
			index := search.NewIndex(db)
			indexer = index
			mgr.Register(search.NewFeature(index, logg))
		}

		libraryFeature := library.NewFeature(db, store, cfg.Storage, cfg.Library, indexer, logg)
		conversionFeature := conversion.NewFeature(db, store, cfg.Storage, cfg.Jobs, logg)
		mgr.Register(libraryFeature)
		mgr.Register(conversionFeature)
		mgr.Register(integrity.NewFeature(store, cfg.Storage, logg, db))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 4. Auth (admin key or a user's key)
		authCfg := auth.Config{ApiKey: cfg.Server.ApiKey}
		if svc := libraryFeature.Service(); svc != nil {
			authCfg.Resolve = func(c *fiber.Ctx, key string) (any, bool, error) {
				user, err := svc.UserByAPIKey(c.UserContext(), key)
				if err != nil || user == nil {
					return nil, false, err
				}
				return user, true, nil
			}
		}
		app.Use(auth.New(authCfg))

		// 5. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 6. Conversion Workers
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if cfg.Jobs.Enabled {
			if svc := conversionFeature.Service(); svc != nil {
				logg.Info("Starting conversion workers", zap.Int("concurrency", cfg.Jobs.Workers()))
				go svc.RunWorkers(ctx)
			} else {
				logg.Warn("Conversion workers need a database, skipping")
			}
		}

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		cancel()
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
