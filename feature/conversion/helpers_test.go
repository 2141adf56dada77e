package conversion

import (
	"context"
	"testing"

	"ogre/core/database"
	"ogre/core/storage"
	"ogre/feature/library"
	"ogre/feature/library/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, library.NewStore(db).Migrate(context.Background()))
	require.NoError(t, NewJobStore(db).Migrate(context.Background()))
	return db
}

// seedVersion creates an ebook with one version whose source format is
// uploaded when uploaded is true.
func seedVersion(t *testing.T, store *library.Store, title, hash, format string, uploaded, nonFiction bool) (*models.Ebook, *models.Version, *models.Format) {
	t.Helper()
	ctx := context.Background()

	user, err := store.UserByName(ctx, "alice")
	require.NoError(t, err)
	if user == nil {
		user = &models.User{Username: "alice", APIKey: "alice-key"}
		require.NoError(t, store.CreateUser(ctx, user))
	}

	ebook := &models.Ebook{
		EbookID:      library.EbookIDFor("Alice Author", title),
		Author:       "Alice Author",
		Title:        title,
		IsNonFiction: nonFiction,
	}
	require.NoError(t, store.CreateEbook(ctx, ebook))

	version := &models.Version{
		EbookID:          ebook.EbookID,
		UploaderID:       user.ID,
		Popularity:       1,
		Quality:          1,
		Ranking:          library.Rank(1, 1, 1),
		OriginalFileHash: hash,
	}
	f := &models.Format{FileHash: hash, Format: format}
	require.NoError(t, store.CreateVersion(ctx, version, f, user.ID))
	if uploaded {
		key := storage.ObjectKey(ebook.EbookID, hash, format)
		require.NoError(t, store.MarkUploaded(ctx, f.ID, key, user.ID))
		f.Uploaded = true
		f.S3Filename = key
	}
	return ebook, version, f
}
