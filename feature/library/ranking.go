package library

import (
	"encoding/json"
	"strings"
)

const (
	qualityWeight    = 0.7
	popularityWeight = 0.3

	// InitialQuality seeds every new version.
	InitialQuality = 1.0
	// dedrmPopularity seeds versions uploaded without DRM.
	dedrmPopularity = 10.0
	drmPopularity   = 1.0
)

// Rank combines quality and popularity normalized by the user count.
// totalUsers below one is treated as one.
func Rank(quality, popularity float64, totalUsers int) float64 {
	if totalUsers < 1 {
		totalUsers = 1
	}
	return quality*qualityWeight + (popularity/float64(totalUsers)*100)*popularityWeight
}

// InitialPopularity returns the popularity a new version starts with.
func InitialPopularity(dedrm bool) float64 {
	if dedrm {
		return dedrmPopularity
	}
	return drmPopularity
}

// FormatDefinition describes one ebook extension the client scans for.
type FormatDefinition struct {
	Extension     string
	IsValidFormat bool
	IsNonFiction  bool
}

// MarshalJSON encodes a definition as [extension, is_valid_format, is_non_fiction].
func (d FormatDefinition) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{d.Extension, d.IsValidFormat, d.IsNonFiction})
}

// Definitions is the ordered format table. Order is significant to clients.
var Definitions = []FormatDefinition{
	{Extension: "mobi", IsValidFormat: true, IsNonFiction: false},
	{Extension: "azw", IsValidFormat: true, IsNonFiction: false},
	{Extension: "azw3", IsValidFormat: true, IsNonFiction: false},
	{Extension: "azw4", IsValidFormat: true, IsNonFiction: true},
	{Extension: "pdf", IsValidFormat: true, IsNonFiction: true},
	{Extension: "epub", IsValidFormat: true, IsNonFiction: false},
	{Extension: "kepub", IsValidFormat: true, IsNonFiction: false},
	{Extension: "prc", IsValidFormat: false, IsNonFiction: false},
	{Extension: "lit", IsValidFormat: false, IsNonFiction: false},
	{Extension: "cbz", IsValidFormat: false, IsNonFiction: true},
	{Extension: "cbr", IsValidFormat: false, IsNonFiction: true},
}

// IsNonFiction reports whether a format is flagged non-fiction in definitions.
// Unknown formats are not.
func IsNonFiction(format string, definitions []FormatDefinition) bool {
	for _, d := range definitions {
		if strings.EqualFold(d.Extension, format) {
			return d.IsNonFiction
		}
	}
	return false
}

// IsValidFormat reports whether a format may be synced.
func IsValidFormat(format string, definitions []FormatDefinition) bool {
	for _, d := range definitions {
		if strings.EqualFold(d.Extension, format) {
			return d.IsValidFormat
		}
	}
	return false
}
