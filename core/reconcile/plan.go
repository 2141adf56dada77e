package reconcile

import (
	"context"
	"fmt"

	"ogre/core/storage"

	"gorm.io/gorm"
)

// ReconcileWithPlan reconciles every entity and plans the actions opts asks
// for. It does NOT execute them; use ApplyPlan for that.
func ReconcileWithPlan(
	ctx context.Context,
	spec *Spec,
	db *gorm.DB,
	client storage.Client,
	bucket string,
	opts ReconcileOptions,
) (*ReconcilePlan, error) {
	cache, err := GetOrBuildCache(ctx, spec, db, client, bucket)
	if err != nil {
		return nil, err
	}

	results := reconcileFromCache(cache, spec.Adapter)
	summary, actions := buildPlanFromResults(results, opts)

	return &ReconcilePlan{
		Results: results,
		Actions: actions,
		Summary: summary,
	}, nil
}

// ApplyPlan executes the actions in a reconcile plan and returns how many ran.
// Nothing runs unless opts.Confirmed is true and opts.DryRun is false.
func ApplyPlan(ctx context.Context, spec *Spec, plan *ReconcilePlan, opts ReconcileOptions) (executed int, err error) {
	if !opts.Confirmed || opts.DryRun {
		return 0, nil
	}

	mutator, ok := spec.Adapter.(Mutator)
	if !ok {
		return 0, fmt.Errorf("adapter %s does not implement Mutator interface", spec.Adapter.Name())
	}

	grouped := make(map[ActionType][]string)
	for _, action := range plan.Actions {
		grouped[action.Type] = append(grouped[action.Type], action.Key)
	}

	steps := []struct {
		action ActionType
		run    func(context.Context, []string) error
	}{
		{ActionMarkMissing, mutator.MarkMissingBatch},
		{ActionMarkStored, mutator.MarkStoredBatch},
		{ActionDeleteStorage, mutator.DeleteStorageBatch},
	}
	for _, step := range steps {
		keys := grouped[step.action]
		if len(keys) == 0 {
			continue
		}
		if err := step.run(ctx, keys); err != nil {
			return executed, fmt.Errorf("failed to apply %s: %w", step.action, err)
		}
		executed += len(keys)
	}

	// Indices are stale once anything changed.
	if executed > 0 {
		InvalidateCache(spec)
	}
	return executed, nil
}

// ReconcileAndApply plans and, when confirmed, applies the actions.
func ReconcileAndApply(
	ctx context.Context,
	spec *Spec,
	db *gorm.DB,
	client storage.Client,
	bucket string,
	opts ReconcileOptions,
) (*ReconcilePlan, int, error) {
	plan, err := ReconcileWithPlan(ctx, spec, db, client, bucket, opts)
	if err != nil {
		return nil, 0, err
	}
	executed, err := ApplyPlan(ctx, spec, plan, opts)
	return plan, executed, err
}

func buildPlanFromResults(results []ReconcileResult, opts ReconcileOptions) (PlanSummary, []Action) {
	var summary PlanSummary
	var actions []Action

	summary.TotalItems = len(results)

	for _, result := range results {
		switch {
		case result.DBPresent && result.ExpectsStorage && !result.StoragePresent:
			summary.MissingStorage++
			if opts.DoPurge {
				actions = append(actions, Action{Type: ActionMarkMissing, Key: result.ID, Reason: "object missing from storage"})
				summary.PurgeActions++
			}

		case !result.DBPresent && result.StoragePresent:
			summary.MissingDB++
			if opts.DoPurge {
				actions = append(actions, Action{Type: ActionDeleteStorage, Key: result.ID, Reason: "no database entry refers to object"})
				summary.PurgeActions++
			}

		case result.DBPresent && !result.ExpectsStorage && result.StoragePresent:
			summary.Mismatches++
			if opts.DoSync {
				actions = append(actions, Action{Type: ActionMarkStored, Key: result.ID, Reason: fmt.Sprintf("mismatch: %v", result.Mismatch)})
				summary.SyncActions++
			}
		}
	}

	return summary, actions
}
