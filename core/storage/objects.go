package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
)

// EbookPrefix is the key prefix every ebook object lives under.
const EbookPrefix = "ebooks/"

// ObjectKey returns the storage key of one physical ebook file.
func ObjectKey(ebookID, fileHash, format string) string {
	return EbookPrefix + path.Join(ebookID, fileHash+"."+strings.ToLower(format))
}

// ParseObjectKey splits an ebook object key into its parts.
// ok is false for keys outside the ebook layout.
func ParseObjectKey(key string) (ebookID, fileHash, format string, ok bool) {
	rest, found := strings.CutPrefix(key, EbookPrefix)
	if !found {
		return "", "", "", false
	}
	ebookID, file, found := strings.Cut(rest, "/")
	if !found || ebookID == "" || strings.Contains(file, "/") {
		return "", "", "", false
	}
	fileHash, format, found = strings.Cut(file, ".")
	if !found || fileHash == "" || format == "" {
		return "", "", "", false
	}
	return ebookID, fileHash, format, true
}

// Exists reports whether an object is present in the bucket.
func Exists(ctx context.Context, client Client, bucket, key string) (bool, error) {
	_, err := client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", key, err)
}

// Upload streams an ebook file into the bucket and returns the stored key.
func Upload(ctx context.Context, client Client, bucket, key string, r io.Reader, size int64) (string, error) {
	_, err := client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}
