// Package search keeps a searchable projection of the library.
//
// The sync path pushes one Document per newly created ebook: its id, author,
// title and a flag set (non_fiction, curated, dedrm). Documents are upserted
// with ON CONFLICT so re-indexing an ebook only ever adds flags. Queries are
// simple term matches over author and title.
package search
