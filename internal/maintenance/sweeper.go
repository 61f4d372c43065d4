package maintenance

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/localconnect/directory/internal/metrics"
	"github.com/localconnect/directory/internal/store"
	"github.com/localconnect/directory/pkg/logger"
)

// BusinessLister enumerates businesses for a sweep.
type BusinessLister interface {
	Search(ctx context.Context, term string) ([]store.Business, error)
}

// ImageLister lists gallery rows for a business.
type ImageLister interface {
	ListByBusiness(ctx context.Context, businessID string) ([]store.BusinessImage, error)
}

// ObjectLister lists and removes stored objects.
type ObjectLister interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Remove(ctx context.Context, paths []string) error
}

// Report summarizes one sweep run.
type Report struct {
	Businesses int
	Objects    int
	Orphans    int
	Removed    int
}

// Sweeper removes gallery objects that no image row references. Failed
// image uploads leave such objects behind; the sweep reclaims them. It
// never touches rows: a row without a backing object is a rendering
// problem the owner must see, not one to clean up silently. Only current
// businesses are swept; orphans left under a since-deleted business's
// prefix stay where they are.
type Sweeper struct {
	businesses BusinessLister
	images     ImageLister
	objects    ObjectLister
	log        *logger.Logger

	// DryRun reports orphans without removing them.
	DryRun bool
}

// New creates a sweeper.
func New(businesses BusinessLister, images ImageLister, objects ObjectLister, log *logger.Logger) *Sweeper {
	if log == nil {
		log = logger.NewNop()
	}
	return &Sweeper{businesses: businesses, images: images, objects: objects, log: log}
}

// RunOnce sweeps every business. A failure scanning one business aborts the
// run; partial removals already made are kept (removing an orphan twice is
// harmless).
func (s *Sweeper) RunOnce(ctx context.Context) (*Report, error) {
	all, err := s.businesses.Search(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}

	report := &Report{Businesses: len(all)}
	for _, b := range all {
		if err := s.sweepBusiness(ctx, b.ID, report); err != nil {
			return report, fmt.Errorf("sweep business %s: %w", b.ID, err)
		}
	}

	s.log.Infof("sweep complete: businesses=%d objects=%d orphans=%d removed=%d",
		report.Businesses, report.Objects, report.Orphans, report.Removed)
	return report, nil
}

func (s *Sweeper) sweepBusiness(ctx context.Context, businessID string, report *Report) error {
	stored, err := s.objects.List(ctx, "gallery/"+businessID)
	if err != nil {
		return fmt.Errorf("list objects: %w", err)
	}
	report.Objects += len(stored)
	if len(stored) == 0 {
		return nil
	}

	rows, err := s.images.ListByBusiness(ctx, businessID)
	if err != nil {
		return fmt.Errorf("list image rows: %w", err)
	}
	referenced := make(map[string]bool, len(rows))
	for _, row := range rows {
		referenced[row.ImageURL] = true
	}

	var orphans []string
	for _, path := range stored {
		if !referenced[path] {
			orphans = append(orphans, path)
		}
	}
	report.Orphans += len(orphans)
	if len(orphans) == 0 {
		return nil
	}

	s.log.Warnf("found %d orphaned objects for business %s", len(orphans), businessID)
	if s.DryRun {
		return nil
	}

	if err := s.objects.Remove(ctx, orphans); err != nil {
		return fmt.Errorf("remove orphans: %w", err)
	}
	report.Removed += len(orphans)
	metrics.SweepRemoved.Add(float64(len(orphans)))
	return nil
}

// Schedule runs the sweep on a cron schedule until the returned stop
// function is called.
func (s *Sweeper) Schedule(spec string) (stop func(), err error) {
	c := cron.New()
	_, err = c.AddFunc(spec, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			s.log.Errorf("scheduled sweep failed: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule sweep: %w", err)
	}
	c.Start()
	return func() { c.Stop() }, nil
}
