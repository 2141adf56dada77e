package conversion

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobRunner executes a claimed job and returns the produced format id.
type JobRunner interface {
	Run(ctx context.Context, job *Job) (uint, error)
}

// WorkerPool processes queued conversion jobs using a pool of goroutines.
type WorkerPool struct {
	jobs    *JobStore
	runner  JobRunner
	sweeper *Sweeper
	cfg     Config
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewWorkerPool creates a new worker pool. sweeper may be nil.
func NewWorkerPool(jobs *JobStore, runner JobRunner, sweeper *Sweeper, cfg Config, logger *zap.Logger) *WorkerPool {
	return &WorkerPool{jobs: jobs, runner: runner, sweeper: sweeper, cfg: cfg, logger: logger}
}

// Run starts the workers and the maintenance loop and blocks until ctx is
// cancelled and every worker has returned.
func (wp *WorkerPool) Run(ctx context.Context) {
	wp.logger.Info("Conversion workers starting",
		zap.Int("concurrency", wp.cfg.Workers()),
		zap.Int("max_retries", wp.cfg.MaxRetries),
		zap.Duration("poll_interval", wp.cfg.PollInterval()))

	wp.wg.Add(1)
	go func() {
		defer wp.wg.Done()
		wp.maintenanceLoop(ctx)
	}()

	for i := 0; i < wp.cfg.Workers(); i++ {
		wp.wg.Add(1)
		go func(workerID int) {
			defer wp.wg.Done()
			wp.workerLoop(ctx, workerID)
		}(i)
	}

	<-ctx.Done()
	wp.logger.Info("Conversion workers shutting down")
	wp.wg.Wait()
	wp.logger.Info("Conversion workers stopped")
}

func (wp *WorkerPool) workerLoop(ctx context.Context, workerID int) {
	ticker := time.NewTicker(wp.cfg.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Drain the queue before waiting for the next tick.
			for ctx.Err() == nil && wp.ProcessOne(ctx, workerID) {
			}
		}
	}
}

// ProcessOne claims and runs a single job. It reports whether a job was found.
func (wp *WorkerPool) ProcessOne(ctx context.Context, workerID int) bool {
	job, err := wp.jobs.Claim(ctx, wp.cfg.MaxRetries)
	if err != nil {
		wp.logger.Error("Failed to claim conversion job", zap.Int("worker", workerID), zap.Error(err))
		return false
	}
	if job == nil {
		return false
	}

	log := wp.logger.With(
		zap.Int("worker", workerID),
		zap.String("job_id", job.ID),
		zap.String("ebook_id", job.EbookID),
		zap.String("target", job.Target),
		zap.Int("attempt", job.AttemptCount))

	formatID, err := wp.runner.Run(ctx, job)
	if err != nil {
		log.Error("Conversion job failed", zap.Error(err))
		if failErr := wp.jobs.Fail(ctx, job.ID, err.Error(), wp.cfg.MaxRetries); failErr != nil {
			log.Error("Failed to record job failure", zap.Error(failErr))
		}
		return true
	}

	if err := wp.jobs.Complete(ctx, job.ID, formatID); err != nil {
		log.Error("Failed to complete conversion job", zap.Error(err))
		return true
	}
	log.Info("Conversion job completed", zap.Uint("format_id", formatID))
	return true
}

func (wp *WorkerPool) maintenanceLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	lastSweep := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			wp.maintain(ctx)
			if interval := wp.cfg.SweepInterval(); wp.sweeper != nil && interval > 0 && now.Sub(lastSweep) >= interval {
				lastSweep = now
				if _, err := wp.sweeper.Sweep(ctx); err != nil {
					wp.logger.Error("Conversion sweep failed", zap.Error(err))
				}
			}
		}
	}
}

func (wp *WorkerPool) maintain(ctx context.Context) {
	recovered, err := wp.jobs.RequeueStuck(ctx, wp.cfg.StuckTimeout())
	if err != nil {
		wp.logger.Error("Failed to requeue stuck jobs", zap.Error(err))
	} else if recovered > 0 {
		wp.logger.Warn("Requeued stuck conversion jobs", zap.Int64("count", recovered))
	}

	if wp.cfg.RetentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -wp.cfg.RetentionDays)
		deleted, err := wp.jobs.DeleteFinishedBefore(ctx, cutoff)
		if err != nil {
			wp.logger.Error("Failed to delete finished jobs", zap.Error(err))
		} else if deleted > 0 {
			wp.logger.Info("Deleted finished conversion jobs", zap.Int64("count", deleted))
		}
	}
}
