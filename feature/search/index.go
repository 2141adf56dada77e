package search

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Index stores search documents in the database.
type Index struct {
	db *gorm.DB
}

// NewIndex creates an index on db.
func NewIndex(db *gorm.DB) *Index {
	return &Index{db: db}
}

// Migrate creates the document table.
func (i *Index) Migrate(ctx context.Context) error {
	return i.db.WithContext(ctx).AutoMigrate(&Document{})
}

// Index upserts documents. Flags already recorded for an ebook are kept.
func (i *Index) Index(ctx context.Context, docs ...Document) error {
	if len(docs) == 0 {
		return nil
	}

	ids := make([]string, len(docs))
	for n, d := range docs {
		ids[n] = d.EbookID
	}
	var existing []Document
	if err := i.db.WithContext(ctx).Where("ebook_id IN ?", ids).Find(&existing).Error; err != nil {
		return fmt.Errorf("failed to read search documents: %w", err)
	}
	known := make(map[string][]string, len(existing))
	for _, d := range existing {
		known[d.EbookID] = d.Flags
	}

	merged := make([]Document, len(docs))
	for n, d := range docs {
		merged[n] = d.mergeFlags(known[d.EbookID])
	}

	err := i.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ebook_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"author", "title", "flags", "updated_at"}),
	}).Create(&merged).Error
	if err != nil {
		return fmt.Errorf("failed to index documents: %w", err)
	}
	return nil
}

// Search returns documents whose author or title contains every query term.
func (i *Index) Search(ctx context.Context, query string, limit int) ([]Document, error) {
	q := i.db.WithContext(ctx).Model(&Document{})
	for _, term := range splitTerms(query) {
		like := "%" + term + "%"
		q = q.Where("(LOWER(author) LIKE ? OR LOWER(title) LIKE ?)", like, like)
	}
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	var docs []Document
	if err := q.Order("title ASC").Limit(limit).Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	return docs, nil
}

func splitTerms(query string) []string {
	return strings.Fields(normalizeQuery(query))
}
