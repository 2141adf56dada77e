package conversion

import (
	"context"

	"ogre/core/storage"
	"ogre/feature/library"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service wires the job store, the sweeper and the worker pool together.
type Service struct {
	jobs    *JobStore
	sweeper *Sweeper
	pool    *WorkerPool
	cfg     Config
	logger  *zap.Logger
}

// NewService creates the conversion service. converter may be nil, in which
// case calibre is used.
func NewService(db *gorm.DB, client storage.Client, storageCfg storage.Config, cfg Config, converter Converter, logger *zap.Logger) *Service {
	if converter == nil {
		converter = NewCalibreConverter(cfg.CalibreBinary)
	}
	store := library.NewStore(db)
	jobs := NewJobStore(db)
	sweeper := NewSweeper(store, jobs, cfg.TargetFormats(), logger)
	runner := NewRunner(store, client, storageCfg.Bucket, converter, logger)
	return &Service{
		jobs:    jobs,
		sweeper: sweeper,
		pool:    NewWorkerPool(jobs, runner, sweeper, cfg, logger),
		cfg:     cfg,
		logger:  logger,
	}
}

// Jobs returns the job store.
func (s *Service) Jobs() *JobStore {
	return s.jobs
}

// Sweep queues conversions for every ebook missing a target format.
func (s *Service) Sweep(ctx context.Context) (*SweepReport, error) {
	return s.sweeper.Sweep(ctx)
}

// RunWorkers blocks processing jobs until ctx is cancelled.
func (s *Service) RunWorkers(ctx context.Context) {
	s.pool.Run(ctx)
}

// Migrate creates the job table.
func (s *Service) Migrate(ctx context.Context) error {
	return s.jobs.Migrate(ctx)
}
