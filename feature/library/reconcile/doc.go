// Package reconcile plugs ebook formats into the generic storage
// reconciliation engine. A Format is expected in storage when it is flagged
// uploaded; its key is its s3_filename, or ebooks/<ebook_id>/<file_hash>.<format>
// when none was recorded.
package reconcile
