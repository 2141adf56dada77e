// Package models defines the GORM models of the ebook library.
//
// Ebook (keyed by the derived ebook_id) has many Versions; a Version has many
// Formats. Format owners live in the format_owners join table and SyncEvent is
// a write-only audit log.
package models
