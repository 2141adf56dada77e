package reconcile

import (
	"context"
	"fmt"
	"sort"

	"ogre/core/storage"

	"gorm.io/gorm"
)

// ReconcileAll reconciles every entity known to either side and returns the
// results sorted by key.
func ReconcileAll(ctx context.Context, spec *Spec, db *gorm.DB, client storage.Client, bucket string) ([]ReconcileResult, error) {
	cache, err := BuildCache(ctx, spec, db, client, bucket)
	if err != nil {
		return nil, err
	}
	return reconcileFromCache(cache, spec.Adapter), nil
}

// ReconcileOne reconciles a single entity. With a cache TTL it answers from
// the cached indices, otherwise it runs targeted lookups.
func ReconcileOne(ctx context.Context, spec *Spec, db *gorm.DB, client storage.Client, bucket string, query Query) (*ReconcileResult, error) {
	if spec.CacheTTL > 0 {
		cache, err := GetOrBuildCache(ctx, spec, db, client, bucket)
		if err != nil {
			return nil, err
		}
		result := buildResult(query.ID, cache.DBIndex, cache.StorageSet, spec.Adapter)
		return &result, nil
	}

	item, err := spec.Adapter.QueryDB(ctx, db, query.ID)
	if err != nil {
		return nil, err
	}
	stored, err := spec.Adapter.CheckStorage(ctx, client, bucket, query.ID)
	if err != nil {
		return nil, err
	}

	dbIndex := map[string]DBItem{}
	if item != nil {
		dbIndex[query.ID] = item
	}
	storageSet := map[string]struct{}{}
	if stored {
		storageSet[query.ID] = struct{}{}
	}
	result := buildResult(query.ID, dbIndex, storageSet, spec.Adapter)
	return &result, nil
}

func reconcileFromCache(cache *ReconcileCache, adapter Adapter) []ReconcileResult {
	union := buildUnion(cache.DBIndex, cache.StorageSet)
	results := make([]ReconcileResult, 0, len(union))
	for key := range union {
		results = append(results, buildResult(key, cache.DBIndex, cache.StorageSet, adapter))
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].ID < results[j].ID
	})
	return results
}

func buildUnion(dbIndex map[string]DBItem, storageSet map[string]struct{}) map[string]struct{} {
	union := make(map[string]struct{}, len(dbIndex)+len(storageSet))
	for key := range dbIndex {
		union[key] = struct{}{}
	}
	for key := range storageSet {
		union[key] = struct{}{}
	}
	return union
}

func buildResult(key string, dbIndex map[string]DBItem, storageSet map[string]struct{}, adapter Adapter) ReconcileResult {
	item, dbPresent := dbIndex[key]
	_, storagePresent := storageSet[key]

	result := ReconcileResult{
		ID:             key,
		DBPresent:      dbPresent,
		StoragePresent: storagePresent,
		Mismatch:       []string{},
	}
	if !dbPresent {
		item = nil
	}
	result.Name = adapter.ResolveName(item)
	result.Metadata = adapter.GetMetadata(key, item)

	if dbPresent {
		result.ExpectsStorage = adapter.ExpectsStorage(item)
		if result.ExpectsStorage != storagePresent {
			result.Mismatch = append(result.Mismatch,
				fmt.Sprintf("uploaded: db=%t storage=%t", result.ExpectsStorage, storagePresent))
		}
	}
	return result
}
