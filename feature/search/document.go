package search

import (
	"sort"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"gorm.io/datatypes"
)

const (
	FlagNonFiction = "non_fiction"
	FlagCurated    = "curated"
	FlagDeDRM      = "dedrm"
)

// Document is the searchable projection of an ebook.
type Document struct {
	EbookID   string                      `gorm:"column:ebook_id;primaryKey;size:32" json:"id"`
	Author    string                      `gorm:"column:author;size:500;index" json:"author"`
	Title     string                      `gorm:"column:title;size:500;index" json:"title"`
	Flags     datatypes.JSONSlice[string] `gorm:"column:flags" json:"flags"`
	UpdatedAt time.Time                   `gorm:"column:updated_at" json:"-"`
}

func (Document) TableName() string { return "search_documents" }

// NewDocument builds a document with sorted flags.
func NewDocument(ebookID, author, title string, nonFiction, curated, dedrm bool) Document {
	flags := mapset.NewThreadUnsafeSet[string]()
	if nonFiction {
		flags.Add(FlagNonFiction)
	}
	if curated {
		flags.Add(FlagCurated)
	}
	if dedrm {
		flags.Add(FlagDeDRM)
	}
	return Document{EbookID: ebookID, Author: author, Title: title, Flags: sortedFlags(flags)}
}

// HasFlag reports whether the document carries flag.
func (d Document) HasFlag(flag string) bool {
	for _, f := range d.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// mergeFlags unions the flags of an existing document into d.
func (d Document) mergeFlags(existing []string) Document {
	flags := mapset.NewThreadUnsafeSet(existing...)
	flags.Append(d.Flags...)
	d.Flags = sortedFlags(flags)
	return d
}

func sortedFlags(set mapset.Set[string]) datatypes.JSONSlice[string] {
	out := set.ToSlice()
	sort.Strings(out)
	return out
}

func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
