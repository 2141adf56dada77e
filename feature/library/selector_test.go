package library

import (
	"errors"
	"testing"

	"ogre/feature/library/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultFormats = []string{"mobi", "azw3", "pdf", "epub"}

func selectorVersions() []models.Version {
	return []models.Version{
		{ID: 1, Ranking: 30, Formats: []models.Format{
			{ID: 10, FileHash: "a-epub", Format: "epub", Uploaded: true},
			{ID: 11, FileHash: "a-mobi", Format: "mobi", Uploaded: false},
			{ID: 12, FileHash: "a-pdf", Format: "pdf", Uploaded: true},
		}},
		{ID: 2, Ranking: 5, Formats: []models.Format{
			{ID: 20, FileHash: "b-mobi", Format: "mobi", Uploaded: true},
			{ID: 21, FileHash: "b-azw3", Format: "azw3", Uploaded: true},
		}},
	}
}

func TestSelectBestFormat(t *testing.T) {
	tests := []struct {
		name        string
		versionID   uint
		format      string
		preferred   string
		wantVersion uint
		wantHash    string
	}{
		{"Top version default order skips unuploaded", 0, "", "", 1, "a-pdf"},
		{"User preference wins over defaults", 0, "", "epub", 1, "a-epub"},
		{"Missing preference falls back to defaults", 0, "", "azw3", 1, "a-pdf"},
		{"Explicit format picks first version with it uploaded", 0, "mobi", "epub", 2, "b-mobi"},
		{"Explicit format beats preference", 0, "AZW3", "epub", 2, "b-azw3"},
		{"Explicit version", 2, "", "", 2, "b-mobi"},
		{"Explicit version and format", 1, "epub", "", 1, "a-epub"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, f, err := SelectBestFormat(selectorVersions(), tt.versionID, tt.format, tt.preferred, defaultFormats)
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, v.ID)
			assert.Equal(t, tt.wantHash, f.FileHash)
			assert.True(t, f.Uploaded)
		})
	}
}

func TestSelectBestFormat_NoFormatAvailable(t *testing.T) {
	tests := []struct {
		name      string
		versions  []models.Version
		versionID uint
		format    string
	}{
		{"Unknown version", selectorVersions(), 9, ""},
		{"Format uploaded nowhere", selectorVersions(), 0, "kepub"},
		{"Format only unuploaded", []models.Version{{ID: 1, Formats: []models.Format{{Format: "mobi"}}}}, 0, "mobi"},
		{"Version lacks format", selectorVersions(), 2, "epub"},
		{"Nothing uploaded", []models.Version{{ID: 1, Formats: []models.Format{{Format: "epub"}}}}, 0, ""},
		{"No versions", nil, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := SelectBestFormat(tt.versions, tt.versionID, tt.format, "", defaultFormats)
			assert.True(t, errors.Is(err, ErrNoFormatAvailable))
		})
	}
}
