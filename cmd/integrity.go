package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"ogre/core/config"
	"ogre/core/database"
	"ogre/core/logger"
	"ogre/core/storage"
	"ogre/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on storage and database",
	Long:  `Checks the bucket folder structure, the database schema and the stored formats.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			cmd.Help()
			return
		}
		runIntegrityChecks(cmd.Context(), true, true)
	},
}

// structureCmd represents the integrity structure command
var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix folder structure",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd.Context(), true, false)
	},
}

// schemaCmd represents the integrity schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the database schema against the models",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd.Context(), false, true)
	},
}

// formatsCmd represents the integrity formats command
var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "Compare format upload flags with stored objects",
	Long:  `Builds a read-only reconcile plan. Outputs metrics by default or a detailed JSON file with --json. Use "reconcile formats" to repair.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		startTime := time.Now()

		jsonOutput, _ := cmd.Flags().GetBool("json")

		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}

		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("database connection required: %w", err)
		}

		logg.Info("Checking stored formats (this might take a while)...")
		plan, err := integrity.NewService(client, cfg.Storage, logg, db).CheckFormats(ctx)
		if err != nil {
			return fmt.Errorf("formats integrity check failed: %w", err)
		}

		if jsonOutput {
			// Only entities with an issue are written
			issues := plan.Results[:0:0]
			for _, r := range plan.Results {
				if len(r.Mismatch) > 0 || !r.DBPresent {
					issues = append(issues, r)
				}
			}
			filename := fmt.Sprintf("integrity_formats_%d.json", time.Now().Unix())
			data, err := json.MarshalIndent(issues, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			if err := os.WriteFile(filename, data, 0644); err != nil {
				return fmt.Errorf("failed to save JSON file: %w", err)
			}
			logg.Info("Detailed JSON report saved", zap.String("file", filename), zap.Int("items_with_issues", len(issues)))
		}

		s := plan.Summary
		executionTime := time.Since(startTime)

		fmt.Println("\n=== Format Integrity Metrics ===")
		fmt.Printf("Total Items: %d\n", s.TotalItems)
		fmt.Printf("Storage Missing: %d\n", s.MissingStorage)
		fmt.Printf("DB Missing: %d\n", s.MissingDB)
		fmt.Printf("Mismatch: %d\n", s.Mismatches)
		fmt.Printf("Execution Time: %s\n", executionTime.String())

		logg.Info("Format integrity check completed",
			zap.Int("total", s.TotalItems),
			zap.Int("storage_missing", s.MissingStorage),
			zap.Int("db_missing", s.MissingDB),
			zap.Int("mismatch", s.Mismatches),
			zap.Duration("execution_time", executionTime),
		)

		return nil
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, schemaCmd, formatsCmd)

	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Fix missing folders")
	formatsCmd.Flags().Bool("json", false, "Output detailed JSON format")
}

func runIntegrityChecks(ctx context.Context, runStructure, runSchema bool) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewClient(cfg.Storage)
	if err != nil {
		logg.Fatal("Failed to create storage client", zap.Error(err))
	}

	// Connect to Database (Optional for the structure check)
	var db *gorm.DB
	if conn, err := database.Connect(cfg.Database); err != nil {
		logg.Warn("Optional database connection failed", zap.Error(err))
	} else {
		db = conn
		logg = logg.With(zap.String("driver", cfg.Database.Driver))
	}

	svc := integrity.NewService(store, cfg.Storage, logg, db)
	onlyStructure := runStructure && !runSchema

	if runStructure {
		logg.Info("Checking folder structure...")
		missingStructure, err := svc.CheckStructure(ctx, onlyStructure && fixFlag)
		if err != nil {
			logg.Fatal("Structure check failed", zap.Error(err))
		}

		if len(missingStructure) == 0 {
			logg.Info("Structure is intact.")
		} else {
			logg.Warn("Missing folders detected", zap.Strings("missing", missingStructure))

			if onlyStructure && fixFlag {
				logg.Info("Fixing missing folders...")
				if err := svc.FixStructure(ctx, missingStructure); err != nil {
					logg.Fatal("Failed to fix structure", zap.Error(err))
				}
				logg.Info("Structure fixed successfully.")
			} else if onlyStructure {
				logg.Info("Run with --fix to create missing folders.")
			}
		}
	}

	if runSchema {
		logg.Info("Checking database schema integrity...")
		report, err := svc.CheckSchema()
		if err != nil {
			logg.Error("Schema check failed", zap.Error(err))
			return
		}
		if report.Matched {
			logg.Info("Database schema matches the models.", zap.String("dialect", report.Dialect))
			return
		}
		logg.Warn("Database schema mismatches found", zap.String("dialect", report.Dialect))
		for table, tblReport := range report.Tables {
			if tblReport.Status == "ok" {
				continue
			}
			if tblReport.Status == "missing_table" {
				logg.Warn("Missing Table", zap.String("table", table))
			}
			if len(tblReport.MissingColumns) > 0 {
				logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tblReport.MissingColumns))
			}
			if len(tblReport.TypeMismatches) > 0 {
				logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tblReport.TypeMismatches))
			}
		}
		for _, e := range report.Errors {
			logg.Error("Inspection Error", zap.String("error", e))
		}
	}
}
