package reconcile

import (
	"context"

	"ogre/core/storage"

	"gorm.io/gorm"
)

// Adapter defines the model-specific side of a reconciliation between
// database rows and storage objects.
type Adapter interface {
	// Name returns the unique name of this adapter (e.g., "formats").
	Name() string

	// LoadDBIndex loads all relevant DB items indexed by entity key.
	// Implementations should use batch queries selecting minimal columns.
	LoadDBIndex(ctx context.Context, db *gorm.DB) (map[string]DBItem, error)

	// LoadStorageSet lists all objects under prefix and returns the set of
	// entity keys they map to. Objects outside the expected layout are skipped.
	LoadStorageSet(ctx context.Context, client storage.Client, bucket, prefix string) (map[string]struct{}, error)

	// ExpectsStorage reports whether the DB item claims its object is stored.
	ExpectsStorage(item DBItem) bool

	// ResolveName returns the display name of a DB item. item may be nil.
	ResolveName(item DBItem) string

	// GetMetadata returns model-specific metadata for the result. item may be nil.
	GetMetadata(key string, item DBItem) map[string]string

	// QueryDB looks up a single entity by key. Returns nil if not found.
	QueryDB(ctx context.Context, db *gorm.DB, key string) (DBItem, error)

	// CheckStorage reports whether the object of a single entity exists.
	CheckStorage(ctx context.Context, client storage.Client, bucket, key string) (bool, error)
}

// Mutator is implemented by adapters that can apply plan actions.
// Each method receives every key of one action type at once.
type Mutator interface {
	Adapter

	// MarkMissingBatch clears the stored flag of the given DB entities.
	MarkMissingBatch(ctx context.Context, keys []string) error

	// DeleteStorageBatch removes the given objects from storage.
	DeleteStorageBatch(ctx context.Context, keys []string) error

	// MarkStoredBatch sets the stored flag of the given DB entities.
	MarkStoredBatch(ctx context.Context, keys []string) error
}
