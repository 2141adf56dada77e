// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client so ebook files can live on AWS S3 or a self-hosted
// MinIO instance.
//
// # Client Interface
//
// The Client interface abstracts the underlying provider, making storage
// interactions mockable (see core/storage/mocks).
//
// # Ebook Layout
//
// Every file is stored at ebooks/<ebook_id>/<file_hash>.<format>. ObjectKey and
// ParseObjectKey convert between that key and its parts; the format
// reconciliation relies on the round trip.
//
// # Helpers
//
//   - Exists: StatObject with NoSuchKey mapped to false.
//   - Upload: streams a file with PutObject.
//   - Config.DownloadExpiry: lifetime of presigned download URLs.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	key := storage.ObjectKey(ebookID, fileHash, "epub")
//	ok, err := storage.Exists(ctx, client, cfg.Storage.Bucket, key)
package storage
