// Package gallery keeps a business's image set consistent across the record
// store and the object store while giving the caller immediate, reversible
// feedback on the in-memory view.
package gallery

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/localconnect/directory/internal/fault"
	"github.com/localconnect/directory/internal/metrics"
	"github.com/localconnect/directory/internal/store"
	"github.com/localconnect/directory/pkg/logger"
)

// PlaceholderURL is returned for empty object paths.
const PlaceholderURL = "https://placehold.co/150"

// RecordStore is the slice of the record store the synchronizer needs.
type RecordStore interface {
	ListByBusiness(ctx context.Context, businessID string) ([]store.BusinessImage, error)
	Insert(ctx context.Context, img *store.BusinessImage) (*store.BusinessImage, error)
	Delete(ctx context.Context, id string) error
}

// ObjectStore is the slice of the object store the synchronizer needs.
type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	Remove(ctx context.Context, paths []string) error
	PublicURL(path string) string
}

// FileData is the caller-supplied file to add to the gallery.
type FileData struct {
	Name string
	Data []byte
}

// Synchronizer owns the local gallery view for one user session. Load,
// AddImage and RemoveImage each hold the lock for their full duration,
// remote calls included, so two in-flight operations never interleave
// their store writes or optimistic updates.
type Synchronizer struct {
	mu      sync.Mutex
	view    view
	records RecordStore
	objects ObjectStore
	log     *logger.Logger

	// now is the clock used for storage-path derivation.
	now func() time.Time
}

// New creates a gallery synchronizer.
func New(records RecordStore, objects ObjectStore, log *logger.Logger) *Synchronizer {
	if log == nil {
		log = logger.NewDefault("gallery")
	}
	return &Synchronizer{
		records: records,
		objects: objects,
		log:     log,
		now:     time.Now,
	}
}

// Images returns a copy of the local gallery view.
func (s *Synchronizer) Images() []Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.snapshot()
}

// Size returns the number of entries in the local gallery view.
func (s *Synchronizer) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.size()
}

// Load replaces the view with the record store's rows for businessID. On
// failure the view is emptied rather than left stale.
func (s *Synchronizer) Load(ctx context.Context, businessID string) error {
	const op = "gallery.Load"

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.records.ListByBusiness(ctx, businessID)
	if err != nil {
		s.view.clear()
		metrics.GalleryOps.WithLabelValues("load", "error").Inc()
		return fault.New(fault.KindFetch, op, err)
	}

	entries := make([]Image, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Image{
			ID:         row.ID,
			BusinessID: row.BusinessID,
			Path:       row.ImageURL,
			CreatedAt:  row.CreatedAt,
		})
	}
	s.view.replace(entries)
	metrics.GalleryOps.WithLabelValues("load", "ok").Inc()
	return nil
}

// AddImage uploads the file to the object store, inserts the referencing
// row, and appends the result to the view. The object store is written
// first so a record failure can only orphan an object, never leave a row
// pointing at nothing.
func (s *Synchronizer) AddImage(ctx context.Context, businessID string, file FileData) (*Image, error) {
	const op = "gallery.AddImage"

	if businessID == "" {
		return nil, fault.Newf(fault.KindPrecondition, op, "no business yet: save business details before adding images")
	}
	if len(file.Data) == 0 {
		return nil, fault.Newf(fault.KindValidation, op, "file data is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	storagePath := s.derivePath(businessID, file.Name)
	contentType := http.DetectContentType(file.Data)

	if err := s.objects.Upload(ctx, storagePath, file.Data, contentType); err != nil {
		metrics.GalleryOps.WithLabelValues("add", "error").Inc()
		return nil, fault.New(fault.KindUpload, op, err)
	}

	row, err := s.records.Insert(ctx, &store.BusinessImage{
		BusinessID: businessID,
		ImageURL:   storagePath,
	})
	if err != nil {
		// The uploaded object is now unreferenced. Left for the
		// maintenance sweep; never cleaned inline.
		s.log.Warnf("image row insert failed, object %s orphaned: %v", storagePath, err)
		metrics.OrphanedObjects.Inc()
		metrics.GalleryOps.WithLabelValues("add", "error").Inc()
		return nil, fault.New(fault.KindRecordInsert, op, err)
	}

	img := Image{
		ID:         row.ID,
		BusinessID: row.BusinessID,
		Path:       row.ImageURL,
		CreatedAt:  row.CreatedAt,
	}
	s.view.append(img)

	metrics.GalleryOps.WithLabelValues("add", "ok").Inc()
	return &img, nil
}

// RemoveImage optimistically drops the image from the view, then removes
// the object and its row in that order. Either remote failure rolls the
// view back and is reported with the failing step named.
func (s *Synchronizer) RemoveImage(ctx context.Context, img Image) error {
	const op = "gallery.RemoveImage"

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &removeTransition{image: img}
	t.Apply(&s.view)

	if err := s.objects.Remove(ctx, []string{img.Path}); err != nil {
		s.rollback(t)
		metrics.GalleryOps.WithLabelValues("remove", "error").Inc()
		return fault.New(fault.KindRemoval, op, err)
	}

	if err := s.records.Delete(ctx, img.ID); err != nil {
		// The object is already gone; the row now references a missing
		// file. Reported, not retried.
		s.log.Warnf("image row delete failed after object removal, row %s references missing object %s: %v", img.ID, img.Path, err)
		s.rollback(t)
		metrics.GalleryOps.WithLabelValues("remove", "error").Inc()
		return fault.New(fault.KindRecordDelete, op, err)
	}

	metrics.GalleryOps.WithLabelValues("remove", "ok").Inc()
	return nil
}

// rollback reverses an applied removal. Caller holds the lock.
func (s *Synchronizer) rollback(t *removeTransition) {
	t.Compensate(&s.view)
	metrics.GalleryRollbacks.Inc()
}

// PublicURL derives a displayable URL for a stored path. Empty paths map to
// a fixed placeholder. Pure; no remote call.
func (s *Synchronizer) PublicURL(path string) string {
	if path == "" {
		return PlaceholderURL
	}
	return s.objects.PublicURL(path)
}

// derivePath builds a unique object path inside the business's namespace
// from the upload time and the file's extension.
func (s *Synchronizer) derivePath(businessID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("gallery/%s/%d%s", businessID, s.now().UnixMilli(), ext)
}
