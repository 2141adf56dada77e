package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"ogre/core/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// mockAdapter indexes DB items as booleans: true means "claims stored".
type mockAdapter struct {
	name       string
	dbIndex    map[string]DBItem
	storageSet map[string]struct{}
	dbErr      error
	storageErr error
	dbLoads    int
}

func (m *mockAdapter) Name() string {
	if m.name != "" {
		return m.name
	}
	return "mock"
}

func (m *mockAdapter) LoadDBIndex(ctx context.Context, db *gorm.DB) (map[string]DBItem, error) {
	m.dbLoads++
	if m.dbErr != nil {
		return nil, m.dbErr
	}
	return m.dbIndex, nil
}

func (m *mockAdapter) LoadStorageSet(ctx context.Context, client storage.Client, bucket, prefix string) (map[string]struct{}, error) {
	if m.storageErr != nil {
		return nil, m.storageErr
	}
	return m.storageSet, nil
}

func (m *mockAdapter) ExpectsStorage(item DBItem) bool {
	return item.(bool)
}

func (m *mockAdapter) ResolveName(item DBItem) string {
	if item == nil {
		return ""
	}
	return "db-name"
}

func (m *mockAdapter) GetMetadata(key string, item DBItem) map[string]string {
	return map[string]string{"key": key}
}

func (m *mockAdapter) QueryDB(ctx context.Context, db *gorm.DB, key string) (DBItem, error) {
	if item, ok := m.dbIndex[key]; ok {
		return item, nil
	}
	return nil, nil
}

func (m *mockAdapter) CheckStorage(ctx context.Context, client storage.Client, bucket, key string) (bool, error) {
	_, ok := m.storageSet[key]
	return ok, nil
}

func sampleAdapter(name string) *mockAdapter {
	return &mockAdapter{
		name: name,
		dbIndex: map[string]DBItem{
			"a": true,  // stored and present
			"b": true,  // claims stored, missing
			"c": false, // pending upload
			"d": false, // present but not flagged
		},
		storageSet: map[string]struct{}{
			"a": {},
			"d": {},
			"e": {}, // orphan
		},
	}
}

func TestBuildCache_Errors(t *testing.T) {
	tests := []struct {
		name       string
		dbErr      error
		storageErr error
		expectErr  string
	}{
		{name: "DB load error", dbErr: errors.New("db error"), expectErr: "db error"},
		{name: "Storage load error", storageErr: errors.New("storage error"), expectErr: "storage error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := &mockAdapter{dbErr: tt.dbErr, storageErr: tt.storageErr, dbIndex: map[string]DBItem{}, storageSet: map[string]struct{}{}}
			_, err := BuildCache(context.Background(), &Spec{Adapter: adapter}, nil, nil, "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectErr)
		})
	}
}

func TestReconcileAll(t *testing.T) {
	results, err := ReconcileAll(context.Background(), &Spec{Adapter: sampleAdapter("all")}, nil, nil, "ebooks")
	require.NoError(t, err)
	require.Len(t, results, 5)

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids)

	byID := map[string]ReconcileResult{}
	for _, r := range results {
		byID[r.ID] = r
	}
	assert.Empty(t, byID["a"].Mismatch)
	assert.Equal(t, []string{"uploaded: db=true storage=false"}, byID["b"].Mismatch)
	assert.Empty(t, byID["c"].Mismatch)
	assert.Equal(t, []string{"uploaded: db=false storage=true"}, byID["d"].Mismatch)

	orphan := byID["e"]
	assert.False(t, orphan.DBPresent)
	assert.True(t, orphan.StoragePresent)
	assert.Empty(t, orphan.Name)
	assert.Equal(t, "e", orphan.Metadata["key"])
	assert.Equal(t, "db-name", byID["a"].Name)
}

func TestReconcileOne_Targeted(t *testing.T) {
	spec := &Spec{Adapter: sampleAdapter("one")}

	res, err := ReconcileOne(context.Background(), spec, nil, nil, "ebooks", Query{ID: "b"})
	require.NoError(t, err)
	assert.True(t, res.DBPresent)
	assert.True(t, res.ExpectsStorage)
	assert.False(t, res.StoragePresent)

	res, err = ReconcileOne(context.Background(), spec, nil, nil, "ebooks", Query{ID: "missing"})
	require.NoError(t, err)
	assert.False(t, res.DBPresent)
	assert.False(t, res.StoragePresent)
}

func TestReconcileOne_UsesCache(t *testing.T) {
	adapter := sampleAdapter("cached")
	spec := &Spec{Adapter: adapter, CacheTTL: time.Minute}
	t.Cleanup(func() { InvalidateCache(spec) })

	for _, key := range []string{"a", "d", "e"} {
		res, err := ReconcileOne(context.Background(), spec, nil, nil, "ebooks", Query{ID: key})
		require.NoError(t, err)
		assert.True(t, res.StoragePresent, key)
	}
	assert.Equal(t, 1, adapter.dbLoads)

	InvalidateCache(spec)
	_, err := ReconcileOne(context.Background(), spec, nil, nil, "ebooks", Query{ID: "a"})
	require.NoError(t, err)
	assert.Equal(t, 2, adapter.dbLoads)
}

func TestReconcileCache_IsExpired(t *testing.T) {
	assert.True(t, (&ReconcileCache{}).IsExpired())
	assert.False(t, (&ReconcileCache{Built: time.Now(), TTL: time.Minute}).IsExpired())
	assert.True(t, (&ReconcileCache{Built: time.Now().Add(-time.Hour), TTL: time.Minute}).IsExpired())
}
