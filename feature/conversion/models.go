package conversion

import (
	"fmt"
	"time"
)

// State is the lifecycle state of a conversion job.
type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Job converts one uploaded format of a version into a missing target format.
type Job struct {
	ID             string     `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	EbookID        string     `gorm:"column:ebook_id;size:32;index;not null" json:"ebook_id"`
	VersionID      uint       `gorm:"column:version_id;not null" json:"version_id"`
	SourceFormatID uint       `gorm:"column:source_format_id;not null" json:"source_format_id"`
	Target         string     `gorm:"column:target;size:10;not null" json:"target"`
	State          State      `gorm:"column:state;size:16;index;not null;default:queued" json:"state"`
	AttemptCount   int        `gorm:"column:attempt_count;default:0" json:"attempt_count"`
	LastError      string     `gorm:"column:last_error;type:text" json:"last_error,omitempty"`
	ResultFormatID *uint      `gorm:"column:result_format_id" json:"result_format_id,omitempty"`
	IdempotencyKey string     `gorm:"column:idempotency_key;size:100;uniqueIndex" json:"idempotency_key"`
	RequestedAt    time.Time  `gorm:"column:requested_at;not null" json:"requested_at"`
	StartedAt      *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	FinishedAt     *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`
}

func (Job) TableName() string { return "conversion_jobs" }

// IsTerminal reports whether the job will not run again.
func (j *Job) IsTerminal() bool {
	return j.State == StateSucceeded || j.State == StateFailed
}

// JobKey is the idempotency key of a conversion: one job per version and target.
func JobKey(ebookID string, versionID uint, target string) string {
	return fmt.Sprintf("%s:%d:%s", ebookID, versionID, target)
}
