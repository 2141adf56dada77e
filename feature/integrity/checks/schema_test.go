package checks

import (
	"testing"

	"ogre/core/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sampleEbook struct {
	ID     string `gorm:"column:id;primaryKey;size:32"`
	Title  string `gorm:"column:title;size:500"`
	Pages  int    `gorm:"column:pages"`
	Public bool   `gorm:"column:public"`
}

func (sampleEbook) TableName() string { return "sample_ebooks" }

type sampleMissing struct {
	ID uint `gorm:"column:id;primaryKey"`
}

func (sampleMissing) TableName() string { return "sample_missing" }

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	return db
}

func TestCheckSchema_Matched(t *testing.T) {
	db := openDB(t)
	require.NoError(t, db.AutoMigrate(&sampleEbook{}))

	report, err := CheckSchema(db, &sampleEbook{})
	require.NoError(t, err)
	assert.True(t, report.Matched)
	assert.Equal(t, "sqlite", report.Dialect)
	assert.Equal(t, "ok", report.Tables["sample_ebooks"].Status)
}

func TestCheckSchema_Drift(t *testing.T) {
	db := openDB(t)
	require.NoError(t, db.Exec("CREATE TABLE sample_ebooks (id TEXT PRIMARY KEY, title BLOB, public NUMERIC)").Error)

	report, err := CheckSchema(db, &sampleEbook{}, &sampleMissing{})
	require.NoError(t, err)
	assert.False(t, report.Matched)

	tbl := report.Tables["sample_ebooks"]
	assert.Equal(t, "error", tbl.Status)
	assert.Equal(t, []string{"pages"}, tbl.MissingColumns)
	assert.Equal(t, []string{"title: expected string, got blob"}, tbl.TypeMismatches)

	assert.Equal(t, "missing_table", report.Tables["sample_missing"].Status)
}

func TestCheckSchema_NilDB(t *testing.T) {
	_, err := CheckSchema(nil)
	assert.EqualError(t, err, "database connection is nil")
}

func TestTypeFamily(t *testing.T) {
	tests := map[string]string{
		"varchar(36)":              "string",
		"character varying":        "string",
		"bigint unsigned":          "int",
		"tinyint(1)":               "bool",
		"boolean":                  "bool",
		"timestamp with time zone": "time",
		"datetime(3)":              "time",
		"jsonb":                    "json",
		"double precision":         "float",
		"geometry":                 "",
	}
	for in, want := range tests {
		assert.Equal(t, want, typeFamily(in), in)
	}
	assert.True(t, compatible("bool", "float"))
	assert.False(t, compatible("string", "int"))
}
