package conversion

import (
	"context"
	"fmt"

	"ogre/feature/library"
	"ogre/feature/library/models"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"
)

// SweepReport summarizes one sweep.
type SweepReport struct {
	Scanned  int `json:"scanned"`
	Enqueued int `json:"enqueued"`
	Pending  int `json:"pending"`
	Skipped  int `json:"skipped"`
}

// Sweeper finds fiction ebooks whose top version lacks an uploaded copy of a
// target format and queues conversions for them.
type Sweeper struct {
	store   *library.Store
	jobs    *JobStore
	targets []string
	logger  *zap.Logger
}

// NewSweeper creates a new Sweeper.
func NewSweeper(store *library.Store, jobs *JobStore, targets []string, logger *zap.Logger) *Sweeper {
	return &Sweeper{store: store, jobs: jobs, targets: targets, logger: logger}
}

// Sweep walks every fiction ebook once.
func (s *Sweeper) Sweep(ctx context.Context) (*SweepReport, error) {
	var ids []string
	err := s.store.DB().WithContext(ctx).Model(&models.Ebook{}).
		Where("is_non_fiction = ?", false).
		Order("ebook_id").
		Pluck("ebook_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ebooks: %w", err)
	}

	report := &SweepReport{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++
		if err := s.sweepEbook(ctx, id, report); err != nil {
			return report, fmt.Errorf("sweep %s: %w", id, err)
		}
	}

	s.logger.Info("Conversion sweep finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("enqueued", report.Enqueued),
		zap.Int("pending", report.Pending),
		zap.Int("skipped", report.Skipped))
	return report, nil
}

func (s *Sweeper) sweepEbook(ctx context.Context, ebookID string, report *SweepReport) error {
	ebook, err := s.store.LoadEbook(ctx, ebookID)
	if err != nil {
		return err
	}
	if len(ebook.Versions) == 0 {
		return nil
	}
	top := &ebook.Versions[0]

	have := mapset.NewThreadUnsafeSet[string]()
	for _, f := range top.Formats {
		if f.Uploaded {
			have.Add(f.Format)
		}
	}
	source := pickSource(top, s.targets)
	if source == nil {
		report.Skipped++
		return nil
	}

	for _, target := range s.targets {
		if have.Contains(target) {
			continue
		}
		_, created, err := s.jobs.Enqueue(ctx, &Job{
			EbookID:        ebook.EbookID,
			VersionID:      top.ID,
			SourceFormatID: source.ID,
			Target:         target,
		})
		if err != nil {
			return err
		}
		if created {
			report.Enqueued++
		} else {
			report.Pending++
		}
	}
	return nil
}

// pickSource returns the uploaded format to convert from, preferring the
// target formats in order.
func pickSource(v *models.Version, targets []string) *models.Format {
	for _, target := range targets {
		for i := range v.Formats {
			if v.Formats[i].Uploaded && v.Formats[i].Format == target {
				return &v.Formats[i]
			}
		}
	}
	for i := range v.Formats {
		f := &v.Formats[i]
		if f.Uploaded && library.IsValidFormat(f.Format, library.Definitions) && !library.IsNonFiction(f.Format, library.Definitions) {
			return f
		}
	}
	return nil
}
