package integrity

import (
	"context"
	"testing"

	"ogre/core/database"
	"ogre/core/storage"
	"ogre/feature/library/models"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testStorage = storage.Config{Bucket: "test-bucket"}

// setupDB opens an in-memory database with every table migrated.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(Models()...))
	return db
}

// seedFormat inserts one ebook with a single format and returns its object key.
func seedFormat(t *testing.T, db *gorm.DB, ebookID, hash string, uploaded bool) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&models.Ebook{EbookID: ebookID, Author: "Author", Title: "Title " + ebookID}).Error)
	version := &models.Version{EbookID: ebookID, Popularity: 1, Quality: 1, OriginalFileHash: hash}
	require.NoError(t, db.WithContext(ctx).Create(version).Error)
	key := storage.ObjectKey(ebookID, hash, "epub")
	format := &models.Format{VersionID: version.ID, FileHash: hash, Format: "epub", Uploaded: uploaded}
	if uploaded {
		format.S3Filename = key
	}
	require.NoError(t, db.WithContext(ctx).Create(format).Error)
	return key
}

func objects(keys ...string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k}
	}
	close(ch)
	return ch
}
