// Package reconcile compares what the database believes is in object storage
// with what actually is, and plans repairs.
//
// The engine builds two in-memory indices concurrently: every database entity
// keyed by its object key, and the set of keys found by a single paginated
// listing of the storage prefix. The union of both yields one ReconcileResult
// per key. Model-specific behavior (loading, key mapping, the "stored" flag)
// lives in an Adapter; adapters that implement Mutator can also apply plans.
//
// # Plans
//
// ReconcileWithPlan summarizes the results and, depending on the options,
// plans three kinds of action:
//
//   - mark_not_uploaded (purge): the database claims an object that is missing.
//   - delete_orphan (purge): an object exists that no database entity refers to.
//   - mark_uploaded (sync): the object exists but the database does not know it.
//
// ApplyPlan executes nothing unless the options are confirmed and not a dry
// run.
//
// # Usage Example
//
//	spec := &reconcile.Spec{
//	    Adapter:       formats.NewAdapter(db, client, bucket),
//	    StoragePrefix: storage.EbookPrefix,
//	}
//	plan, err := reconcile.ReconcileWithPlan(ctx, spec, db, client, bucket, opts)
//	executed, err := reconcile.ApplyPlan(ctx, spec, plan, opts)
package reconcile
