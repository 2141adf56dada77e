package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"ogre/core/config"
	"ogre/core/database"
	"ogre/core/logger"
	"ogre/core/reconcile"
	"ogre/core/storage"
	"ogre/feature/library"
	formatReconcile "ogre/feature/library/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for reconcile formats command
	purgeFormats  bool
	syncFormats   bool
	dryRunFormats bool
	yesConfirm    bool
)

// reconcileCmd is the parent command for all reconcile operations.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile stored ebook files with the database",
	Long: `Reconcile ebook formats to detect missing objects, orphans, and upload flag mismatches.
Supports optional purge (clear flags, delete orphans) and sync (repair flags) operations.`,
}

// formatsReconcileCmd performs format reconciliation with optional purge/sync.
var formatsReconcileCmd = &cobra.Command{
	Use:   "formats",
	Short: "Reconcile ebook formats (report + optionally purge/sync)",
	Long: `Reconcile ebook formats between the database and storage.

Reports formats flagged uploaded whose object is gone, objects no format refers to,
and objects present for formats not flagged uploaded.
Purge marks missing formats not uploaded and deletes orphan objects.
Sync marks formats with a stored object as uploaded.

Examples:
  # Report only (dry-run)
  reconcile formats

  # Purge (with interactive confirmation)
  reconcile formats --purge

  # Purge with auto-confirm (non-interactive)
  reconcile formats --purge --yes

  # Sync flags with auto-confirm
  reconcile formats --sync --yes

  # Both purge and sync
  reconcile formats --purge --sync --yes`,
	RunE: runFormatsReconcile,
}

func init() {
	reconcileCmd.AddCommand(formatsReconcileCmd)

	formatsReconcileCmd.Flags().BoolVar(&purgeFormats, "purge", false, "Enable purge (clear missing flags, delete orphan objects)")
	formatsReconcileCmd.Flags().BoolVar(&syncFormats, "sync", false, "Enable sync (flag stored formats as uploaded)")
	formatsReconcileCmd.Flags().BoolVar(&dryRunFormats, "dry-run", false, "Force dry-run (no mutations even with --yes)")
	formatsReconcileCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")

	RootCmd.AddCommand(reconcileCmd)
}

func runFormatsReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	l.Info("Starting format reconciliation")

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}

	adapter := formatReconcile.NewAdapter(library.NewStore(db), client, cfg.Storage.Bucket)
	// No caching, so a second run sees the applied changes.
	spec := formatReconcile.Spec(adapter)

	opts := reconcile.ReconcileOptions{
		DoPurge:   purgeFormats,
		DoSync:    syncFormats,
		DryRun:    dryRunFormats,
		Confirmed: false, // Will be set after confirmation prompt
	}

	// Step 1: Plan (always runs)
	l.Info("Planning reconciliation...")
	plan, err := reconcile.ReconcileWithPlan(ctx, spec, db, client, cfg.Storage.Bucket, opts)
	if err != nil {
		return fmt.Errorf("failed to plan reconciliation: %w", err)
	}

	// Step 2: Print report
	printReconcileReport(l, plan)

	// Step 3: Check if actions are requested
	if !purgeFormats && !syncFormats {
		l.Info("No actions requested. Use --purge to clear missing formats and orphans or --sync to repair flags.")
		return nil
	}

	// Step 4: Apply (if confirmed)
	if !dryRunFormats {
		if len(plan.Actions) == 0 {
			l.Info("No actions required based on current flags.")
			return nil
		}

		if !confirmDestructiveAction() {
			l.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}

		opts.Confirmed = true

		l.Info("Applying actions...")
		executed, err := reconcile.ApplyPlan(ctx, spec, plan, opts)
		if err != nil {
			return fmt.Errorf("failed to apply plan: %w", err)
		}

		l.Info("Successfully executed actions", zap.Int("count", executed))
	} else {
		l.Info("Dry-run mode: No changes were made.")
	}

	return nil
}

// printReconcileReport prints a formatted reconciliation report using logger.
func printReconcileReport(l *zap.Logger, plan *reconcile.ReconcilePlan) {
	s := plan.Summary

	l.Info("Reconciliation report",
		zap.Int("total_items", s.TotalItems),
		zap.Int("missing_storage", s.MissingStorage),
		zap.Int("missing_db", s.MissingDB),
		zap.Int("mismatches", s.Mismatches),
	)

	if len(plan.Actions) > 0 {
		l.Info("Planned actions",
			zap.Int("purge_actions", s.PurgeActions),
			zap.Int("sync_actions", s.SyncActions),
			zap.Int("total_actions", len(plan.Actions)),
		)

		// Show a sample of actions (max 5 for logger)
		maxShow := min(5, len(plan.Actions))
		for _, action := range plan.Actions[:maxShow] {
			l.Info("Sample action",
				zap.String("type", string(action.Type)),
				zap.String("key", action.Key),
				zap.String("reason", action.Reason),
			)
		}
		if len(plan.Actions) > maxShow {
			l.Info("Additional actions not shown", zap.Int("count", len(plan.Actions)-maxShow))
		}
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}
