package reconcile

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"ogre/core/reconcile"
	"ogre/core/storage"
	"ogre/feature/library"

	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"
)

// FormatAdapter reconciles Format rows with the ebook objects in storage.
// Entity keys are object keys.
type FormatAdapter struct {
	store  *library.Store
	client storage.Client
	bucket string

	mu    sync.RWMutex
	index map[string]reconcile.DBItem
}

// NewAdapter creates a new format adapter.
func NewAdapter(store *library.Store, client storage.Client, bucket string) *FormatAdapter {
	return &FormatAdapter{store: store, client: client, bucket: bucket}
}

// DBItem is a format row joined with its ebook.
type DBItem struct {
	FormatID   uint   `gorm:"column:format_id"`
	EbookID    string `gorm:"column:ebook_id"`
	Title      string `gorm:"column:title"`
	FileHash   string `gorm:"column:file_hash"`
	Format     string `gorm:"column:format"`
	Uploaded   bool   `gorm:"column:uploaded"`
	S3Filename string `gorm:"column:s3_filename"`
}

// Key returns the object key the format is (or would be) stored under.
func (i DBItem) Key() string {
	if i.S3Filename != "" {
		return i.S3Filename
	}
	return storage.ObjectKey(i.EbookID, i.FileHash, i.Format)
}

// Name returns the unique name of this adapter.
func (a *FormatAdapter) Name() string {
	return "formats"
}

func formatQuery(db *gorm.DB) *gorm.DB {
	return db.Table("formats").
		Select("formats.id AS format_id, versions.ebook_id, ebooks.title, formats.file_hash, formats.format, formats.uploaded, formats.s3_filename").
		Joins("JOIN versions ON versions.id = formats.version_id").
		Joins("JOIN ebooks ON ebooks.ebook_id = versions.ebook_id")
}

// LoadDBIndex loads every format in one query.
func (a *FormatAdapter) LoadDBIndex(ctx context.Context, db *gorm.DB) (map[string]reconcile.DBItem, error) {
	var rows []DBItem
	if err := formatQuery(db.WithContext(ctx)).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load formats: %w", err)
	}

	index := make(map[string]reconcile.DBItem, len(rows))
	for _, row := range rows {
		index[row.Key()] = row
	}

	a.mu.Lock()
	a.index = index
	a.mu.Unlock()
	return index, nil
}

// LoadStorageSet lists every object under prefix that follows the ebook key layout.
func (a *FormatAdapter) LoadStorageSet(ctx context.Context, client storage.Client, bucket, prefix string) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	for obj := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, obj.Err)
		}
		if _, _, _, ok := storage.ParseObjectKey(obj.Key); ok {
			set[obj.Key] = struct{}{}
		}
	}
	return set, nil
}

// ExpectsStorage reports whether the format is flagged uploaded.
func (a *FormatAdapter) ExpectsStorage(item reconcile.DBItem) bool {
	return item.(DBItem).Uploaded
}

// ResolveName returns the ebook title.
func (a *FormatAdapter) ResolveName(item reconcile.DBItem) string {
	if item == nil {
		return ""
	}
	return item.(DBItem).Title
}

// GetMetadata returns the ebook id, hash and format, parsed from the key for orphans.
func (a *FormatAdapter) GetMetadata(key string, item reconcile.DBItem) map[string]string {
	if item != nil {
		row := item.(DBItem)
		return map[string]string{"ebook_id": row.EbookID, "file_hash": row.FileHash, "format": row.Format}
	}
	ebookID, hash, format, ok := storage.ParseObjectKey(key)
	if !ok {
		return nil
	}
	return map[string]string{"ebook_id": ebookID, "file_hash": hash, "format": format}
}

// QueryDB finds the format stored under key, matching s3_filename first and
// then the hash encoded in the key.
func (a *FormatAdapter) QueryDB(ctx context.Context, db *gorm.DB, key string) (reconcile.DBItem, error) {
	var rows []DBItem
	if err := formatQuery(db.WithContext(ctx)).Where("formats.s3_filename = ?", key).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		_, hash, _, ok := storage.ParseObjectKey(key)
		if !ok {
			return nil, nil
		}
		if err := formatQuery(db.WithContext(ctx)).Where("formats.file_hash = ?", strings.ToLower(hash)).Limit(1).Scan(&rows).Error; err != nil {
			return nil, err
		}
	}
	if len(rows) == 0 || rows[0].Key() != key {
		return nil, nil
	}
	return rows[0], nil
}

// CheckStorage reports whether the object exists.
func (a *FormatAdapter) CheckStorage(ctx context.Context, client storage.Client, bucket, key string) (bool, error) {
	return storage.Exists(ctx, client, bucket, key)
}

// resolve maps keys to their format rows using the last loaded index.
func (a *FormatAdapter) resolve(ctx context.Context, keys []string) ([]DBItem, error) {
	a.mu.RLock()
	index := a.index
	a.mu.RUnlock()

	items := make([]DBItem, 0, len(keys))
	for _, key := range keys {
		item, ok := index[key]
		if !ok {
			found, err := a.QueryDB(ctx, a.store.DB(), key)
			if err != nil {
				return nil, err
			}
			if found == nil {
				return nil, fmt.Errorf("%w: no format for %s", library.ErrFormatNotFound, key)
			}
			item = found
		}
		items = append(items, item.(DBItem))
	}
	return items, nil
}

// MarkMissingBatch clears the uploaded flag of formats whose object is gone.
func (a *FormatAdapter) MarkMissingBatch(ctx context.Context, keys []string) error {
	items, err := a.resolve(ctx, keys)
	if err != nil {
		return err
	}
	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.FormatID
	}
	_, err = a.store.MarkNotUploaded(ctx, ids)
	return err
}

// MarkStoredBatch flags formats uploaded whose object exists.
func (a *FormatAdapter) MarkStoredBatch(ctx context.Context, keys []string) error {
	items, err := a.resolve(ctx, keys)
	if err != nil {
		return err
	}
	return a.store.Transaction(ctx, func(tx *library.Store) error {
		for _, item := range items {
			if err := tx.MarkUploaded(ctx, item.FormatID, item.Key(), 0); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteStorageBatch removes orphaned objects using the batch API.
func (a *FormatAdapter) DeleteStorageBatch(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	var failed []string
	for err := range a.client.RemoveObjects(ctx, a.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if err.Err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", err.ObjectName, err.Err))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("batch delete had %d errors: %v", len(failed), failed)
	}
	return nil
}

var _ reconcile.Mutator = (*FormatAdapter)(nil)

// Spec returns the reconcile spec for ebook formats.
func Spec(adapter *FormatAdapter) *reconcile.Spec {
	return &reconcile.Spec{
		Adapter:       adapter,
		StoragePrefix: storage.EbookPrefix,
	}
}
