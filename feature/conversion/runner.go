package conversion

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ogre/core/storage"
	"ogre/feature/library"
	"ogre/feature/library/models"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Runner executes one conversion job end to end.
type Runner struct {
	store     *library.Store
	client    storage.Client
	bucket    string
	converter Converter
	logger    *zap.Logger
}

// NewRunner creates a new Runner.
func NewRunner(store *library.Store, client storage.Client, bucket string, converter Converter, logger *zap.Logger) *Runner {
	return &Runner{store: store, client: client, bucket: bucket, converter: converter, logger: logger}
}

// Run fetches the source file, converts it, uploads the result and attaches
// it to the job's version as an uploaded format without owners. It returns
// the id of the resulting format.
func (r *Runner) Run(ctx context.Context, job *Job) (uint, error) {
	source, err := r.store.FormatByID(ctx, job.SourceFormatID)
	if err != nil {
		return 0, fmt.Errorf("failed to load source format: %w", err)
	}
	if source == nil || !source.Uploaded {
		return 0, fmt.Errorf("%w: source format %d is not uploaded", library.ErrNoFormatAvailable, job.SourceFormatID)
	}

	if existing, err := r.existingTarget(ctx, job); err != nil || existing != 0 {
		return existing, err
	}

	dir, err := os.MkdirTemp("", "ogre-convert-")
	if err != nil {
		return 0, fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "source."+source.Format)
	if err := r.download(ctx, source, job.EbookID, src); err != nil {
		return 0, err
	}
	dst := filepath.Join(dir, "converted."+job.Target)
	if err := r.converter.Convert(ctx, src, dst); err != nil {
		return 0, err
	}

	hash, size, err := fileHash(dst)
	if err != nil {
		return 0, err
	}
	key := storage.ObjectKey(job.EbookID, hash, job.Target)
	if err := r.upload(ctx, dst, key, size); err != nil {
		return 0, err
	}

	format := &models.Format{
		VersionID:  job.VersionID,
		FileHash:   hash,
		Format:     job.Target,
		Uploaded:   true,
		S3Filename: key,
		DeDRM:      source.DeDRM,
	}
	if err := r.store.CreateFormat(ctx, format, 0); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Identical output already exists.
			if f, lookupErr := r.store.FormatByHash(ctx, hash); lookupErr == nil && f != nil {
				return f.ID, nil
			}
		}
		return 0, fmt.Errorf("failed to attach converted format: %w", err)
	}

	r.logger.Info("Ebook converted",
		zap.String("ebook_id", job.EbookID),
		zap.Uint("version_id", job.VersionID),
		zap.String("from", source.Format),
		zap.String("to", job.Target),
		zap.String("file_hash", hash))
	return format.ID, nil
}

func (r *Runner) existingTarget(ctx context.Context, job *Job) (uint, error) {
	var f models.Format
	res := r.store.DB().WithContext(ctx).
		Where("version_id = ? AND format = ? AND uploaded = ?", job.VersionID, job.Target, true).
		Limit(1).Find(&f)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to check existing %s: %w", job.Target, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, nil
	}
	return f.ID, nil
}

func (r *Runner) download(ctx context.Context, source *models.Format, ebookID, path string) error {
	key := source.S3Filename
	if key == "" {
		key = storage.ObjectKey(ebookID, source.FileHash, source.Format)
	}
	obj, err := r.client.GetObject(ctx, r.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", key, err)
	}
	defer obj.Close()

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, obj); err != nil {
		out.Close()
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	return out.Close()
}

func (r *Runner) upload(ctx context.Context, path, key string, size int64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = storage.Upload(ctx, r.client, r.bucket, key, f, size)
	return err
}

func fileHash(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open converted file: %w", err)
	}
	defer f.Close()

	h := md5.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("failed to hash converted file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}
