// Package library implements the ebook library reconciliation engine.
//
// # Identity
//
// An ebook is identified by md5("{author}~{title}") over the sanitized
// (lowercased, whitespace collapsed) author and title. The client sends each
// book under a key "firstname\u0006lastname\u0007title"; ParseAuthorTitle
// rejects keys without that structure with a BadMetaDataError and repairs
// mojibake before anything is stored or hashed.
//
// # Classification
//
// The Classifier checks evidence in a fixed order and stops at the first match:
//
//	exact file hash > original file hash > supplied ebook_id > ASIN > ISBN > author/title > new
//
// The result is an Outcome value (New, Duplicate, AttachVersion, AttachFormat);
// duplicates are never errors.
//
// # Sync
//
// Syncer applies outcomes item by item in key order. Each item commits in its
// own transaction so later items of the batch see earlier creations and a bad
// item cannot abort the batch. A lost uniqueness race is reclassified once.
//
// # Confirm
//
// After tagging a file with its ebook_id the client confirms old and new hash.
// The answer is "ok", "fail" or "same"; the move is a single conditional UPDATE.
//
// # Download
//
// SelectBestFormat resolves a version and walks the preference list (explicit
// format, user preference plus defaults, defaults), returning only uploaded
// files. The service then signs a short-lived storage URL.
package library
