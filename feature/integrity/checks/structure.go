package checks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"ogre/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ErrBucketMissing is returned by CheckStructure when the bucket itself is absent.
var ErrBucketMissing = errors.New("bucket does not exist")

// RequiredFolders lists the folders that must exist in the bucket.
var RequiredFolders = []string{
	strings.TrimSuffix(storage.EbookPrefix, "/"),
}

// CheckStructure returns the required folders with no object under them.
// An empty bucket is reported as missing every folder.
func CheckStructure(ctx context.Context, client storage.Client, bucket string) ([]string, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist: %w", bucket, ErrBucketMissing)
	}

	var missing []string
	for _, folder := range RequiredFolders {
		if !hasAnyObject(ctx, client, bucket, folder+"/") {
			missing = append(missing, folder)
		}
	}
	return missing, nil
}

func hasAnyObject(ctx context.Context, client storage.Client, bucket, prefix string) bool {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel() // stops the listing goroutine after the first hit

	for obj := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, MaxKeys: 1}) {
		if obj.Err == nil {
			return true
		}
	}
	return false
}

// FixStructure creates the bucket when needed, then a placeholder object for
// each missing folder.
func FixStructure(ctx context.Context, client storage.Client, bucket, region string, logger *zap.Logger, missing []string) error {
	created, err := storage.EnsureBucket(ctx, client, bucket, region)
	if err != nil {
		logger.Error("Failed to create bucket", zap.String("bucket", bucket), zap.Error(err))
		return err
	}
	if created {
		logger.Info("Created missing bucket", zap.String("bucket", bucket))
	}

	for _, folder := range missing {
		key := strings.TrimSuffix(folder, "/") + "/"
		if _, err := client.PutObject(ctx, bucket, key, bytes.NewReader(nil), 0, minio.PutObjectOptions{}); err != nil {
			logger.Error("Failed to create folder", zap.String("folder", folder), zap.Error(err))
			return err
		}
		logger.Info("Created missing folder", zap.String("folder", folder))
	}
	return nil
}
