package library

import (
	"context"
	"testing"

	"ogre/core/database"
	"ogre/feature/library/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, NewStore(db).Migrate(context.Background()))
	return db
}

func createUser(t *testing.T, store *Store, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, APIKey: name + "-key"}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

type fixedUsers int

func (f fixedUsers) TotalUsers(context.Context) int { return int(f) }

func record(hash, format string) SyncRecord {
	return SyncRecord{FileHash: hash, Format: format, Size: 100}
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
