package reconcile

import "time"

// ReconcileResult is the reconciliation output for a single entity.
type ReconcileResult struct {
	// ID is the entity key, shared by the database and storage sides.
	ID string `json:"id"`

	// Name is the display name of the entity.
	Name string `json:"name"`

	// DBPresent indicates whether the entity exists in the database.
	DBPresent bool `json:"db_present"`

	// StoragePresent indicates whether the entity's object exists in storage.
	StoragePresent bool `json:"storage_present"`

	// ExpectsStorage indicates whether the database claims the object was stored.
	ExpectsStorage bool `json:"expects_storage"`

	// Mismatch describes disagreements between the two sides,
	// e.g. "uploaded: db=false storage=true".
	Mismatch []string `json:"mismatch"`

	// Metadata contains model-specific data (e.g. ebook_id, format).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Query represents a targeted lookup of one entity.
type Query struct {
	// ID is the entity key to look up.
	ID string
}

// Spec bundles the adapter with the storage layout and cache settings.
type Spec struct {
	// Adapter provides model-specific reconciliation logic.
	Adapter Adapter

	// CacheTTL is the time-to-live for cached indices.
	// If zero, caching is disabled.
	CacheTTL time.Duration

	// StoragePrefix is the prefix under which to list storage objects.
	StoragePrefix string
}

// CacheKey returns a unique key for caching based on spec parameters.
func (s *Spec) CacheKey() string {
	return s.Adapter.Name() + "|" + s.StoragePrefix
}

// DBItem represents a database entity. Adapters define the concrete type.
type DBItem any

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionMarkMissing clears the database's claim that the object is stored.
	ActionMarkMissing ActionType = "mark_not_uploaded"
	// ActionDeleteStorage deletes an object nothing in the database refers to.
	ActionDeleteStorage ActionType = "delete_orphan"
	// ActionMarkStored records in the database that the object is stored.
	ActionMarkStored ActionType = "mark_uploaded"
)

// Action represents a planned mutation operation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the entity identifier.
	Key string `json:"key"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`
}

// ReconcilePlan contains reconciliation results and planned actions.
type ReconcilePlan struct {
	// Results contains per-entity reconciliation data.
	Results []ReconcileResult `json:"results"`

	// Actions contains planned mutation operations.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a reconcile plan.
type PlanSummary struct {
	// TotalItems is the total number of unique entities.
	TotalItems int `json:"total_items"`

	// MissingStorage counts entities the database claims are stored but are not.
	MissingStorage int `json:"missing_storage"`

	// MissingDB counts storage objects with no database entity.
	MissingDB int `json:"missing_db"`

	// Mismatches counts entities stored but not flagged as such.
	Mismatches int `json:"mismatches"`

	// PurgeActions counts planned purge actions.
	PurgeActions int `json:"purge_actions"`

	// SyncActions counts planned sync actions.
	SyncActions int `json:"sync_actions"`
}

// ReconcileOptions controls reconcile behavior for purge/sync operations.
type ReconcileOptions struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool

	// DoPurge plans mark_not_uploaded and delete_orphan actions.
	DoPurge bool

	// DoSync plans mark_uploaded actions.
	DoSync bool

	// Confirmed indicates user has confirmed destructive actions.
	// If false, mutations will not execute regardless of DryRun.
	Confirmed bool
}
