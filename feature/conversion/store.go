package conversion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrJobNotFound is returned when a job id does not exist.
var ErrJobNotFound = errors.New("conversion job not found")

var activeStates = []State{StateQueued, StateRunning}

// JobStore persists conversion jobs.
type JobStore struct {
	db *gorm.DB
}

// NewJobStore creates a new JobStore.
func NewJobStore(db *gorm.DB) *JobStore {
	return &JobStore{db: db}
}

// Migrate creates or updates the conversion_jobs table.
func (s *JobStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&Job{})
}

// Enqueue queues a job unless an active job with the same idempotency key
// exists, in which case that job is returned and created is false.
func (s *JobStore) Enqueue(ctx context.Context, job *Job) (result *Job, created bool, err error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.IdempotencyKey == "" {
		job.IdempotencyKey = JobKey(job.EbookID, job.VersionID, job.Target)
	}
	job.State = StateQueued
	if job.RequestedAt.IsZero() {
		job.RequestedAt = time.Now()
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Job
		res := tx.Where("idempotency_key = ? AND state IN ?", job.IdempotencyKey, activeStates).Limit(1).Find(&existing)
		if res.Error != nil {
			return fmt.Errorf("check idempotency key: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			result = &existing
			return nil
		}

		// Finished jobs give up their key so the unique index admits a new attempt.
		if err := tx.Model(&Job{}).
			Where("idempotency_key = ? AND state NOT IN ?", job.IdempotencyKey, activeStates).
			Update("idempotency_key", gorm.Expr("id")).Error; err != nil {
			return fmt.Errorf("release idempotency key: %w", err)
		}

		if err := tx.Create(job).Error; err != nil {
			return err
		}
		result, created = job, true
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Another sweep queued the same conversion first.
		var existing Job
		if lookupErr := s.db.WithContext(ctx).Where("idempotency_key = ?", job.IdempotencyKey).First(&existing).Error; lookupErr == nil {
			return &existing, false, nil
		}
	}
	if err != nil {
		return nil, false, fmt.Errorf("enqueue job: %w", err)
	}
	return result, created, nil
}

// Claim picks the oldest queued job and moves it to running.
// It returns nil when the queue is empty.
func (s *JobStore) Claim(ctx context.Context, maxRetries int) (*Job, error) {
	var job Job
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("state = ? AND attempt_count < ?", StateQueued, maxRetries).
			Order("requested_at ASC").
			Limit(1)
		if tx.Dialector.Name() != "sqlite" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}
		res := q.Find(&job)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		now := time.Now()
		res = tx.Model(&Job{}).Where("id = ? AND state = ?", job.ID, StateQueued).
			Updates(map[string]any{
				"state":         StateRunning,
				"started_at":    now,
				"attempt_count": gorm.Expr("attempt_count + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			job = Job{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}
	if job.ID == "" {
		return nil, nil
	}
	return s.Get(ctx, job.ID)
}

// Complete marks a job succeeded and records the format it produced.
func (s *JobStore) Complete(ctx context.Context, jobID string, resultFormatID uint) error {
	updates := map[string]any{
		"state":       StateSucceeded,
		"finished_at": time.Now(),
		"last_error":  "",
	}
	if resultFormatID != 0 {
		updates["result_format_id"] = resultFormatID
	}
	if err := s.db.WithContext(ctx).Model(&Job{}).Where("id = ?", jobID).Updates(updates).Error; err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return nil
}

// Fail records a failed attempt. The job is re-queued while attempts remain.
func (s *JobStore) Fail(ctx context.Context, jobID, errMsg string, maxRetries int) error {
	job, err := s.Get(ctx, jobID)
	if err != nil {
		return err
	}

	updates := map[string]any{"last_error": errMsg}
	if job.AttemptCount < maxRetries {
		updates["state"] = StateQueued
		updates["started_at"] = nil
	} else {
		updates["state"] = StateFailed
		updates["finished_at"] = time.Now()
	}
	if err := s.db.WithContext(ctx).Model(&Job{}).Where("id = ?", jobID).Updates(updates).Error; err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	return nil
}

// Get returns a job by id.
func (s *JobStore) Get(ctx context.Context, jobID string) (*Job, error) {
	var job Job
	if err := s.db.WithContext(ctx).First(&job, "id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

// List returns the most recent jobs, optionally filtered by state.
func (s *JobStore) List(ctx context.Context, state State, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	q := s.db.WithContext(ctx).Order("requested_at DESC").Limit(limit)
	if state != "" {
		q = q.Where("state = ?", state)
	}
	var jobs []Job
	if err := q.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// RequeueStuck moves running jobs started before now-timeout back to queued.
func (s *JobStore) RequeueStuck(ctx context.Context, timeout time.Duration) (int64, error) {
	cutoff := time.Now().Add(-timeout)
	res := s.db.WithContext(ctx).Model(&Job{}).
		Where("state = ? AND started_at < ?", StateRunning, cutoff).
		Updates(map[string]any{
			"state":      StateQueued,
			"started_at": nil,
			"last_error": "timed out while running",
		})
	if res.Error != nil {
		return 0, fmt.Errorf("requeue stuck jobs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteFinishedBefore removes terminal jobs that finished before cutoff.
func (s *JobStore) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("state IN ? AND finished_at < ?", []State{StateSucceeded, StateFailed}, cutoff).
		Delete(&Job{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete finished jobs: %w", res.Error)
	}
	return res.RowsAffected, nil
}
