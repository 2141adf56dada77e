package integrity

import (
	"context"
	"errors"
	"fmt"

	"ogre/core/reconcile"
	"ogre/core/storage"
	"ogre/feature/conversion"
	"ogre/feature/integrity/checks"
	"ogre/feature/library"
	"ogre/feature/library/models"
	libreconcile "ogre/feature/library/reconcile"
	"ogre/feature/search"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	client storage.Client
	bucket string
	region string
	logger *zap.Logger
	db     *gorm.DB
}

// NewService creates a new integrity service. db may be nil, in which case
// only the storage checks are available.
func NewService(client storage.Client, cfg storage.Config, logger *zap.Logger, db *gorm.DB) *Service {
	return &Service{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		logger: logger,
		db:     db,
	}
}

// CheckStructure returns a list of missing folders. A missing bucket is
// reported as every folder missing when allowMissingBucket is set.
func (s *Service) CheckStructure(ctx context.Context, allowMissingBucket bool) ([]string, error) {
	missing, err := checks.CheckStructure(ctx, s.client, s.bucket)
	if allowMissingBucket && errors.Is(err, checks.ErrBucketMissing) {
		return checks.RequiredFolders, nil
	}
	return missing, err
}

// FixStructure creates the bucket and the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	return checks.FixStructure(ctx, s.client, s.bucket, s.region, s.logger, missing)
}

// Models lists every table the server owns.
func Models() []any {
	return append(models.All(), &conversion.Job{}, &search.Document{})
}

// CheckSchema compares the live database schema against the models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database is not configured")
	}
	return checks.CheckSchema(s.db, Models()...)
}

// CheckFormats builds a report-only reconcile plan between format rows and
// stored objects.
func (s *Service) CheckFormats(ctx context.Context) (*reconcile.ReconcilePlan, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database is not configured")
	}
	adapter := libreconcile.NewAdapter(library.NewStore(s.db), s.client, s.bucket)
	return reconcile.ReconcileWithPlan(ctx, libreconcile.Spec(adapter), s.db, s.client, s.bucket, reconcile.ReconcileOptions{})
}
