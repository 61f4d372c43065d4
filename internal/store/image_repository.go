package store

import (
	"context"
	"fmt"

	"github.com/localconnect/directory/infra/supabase"
)

const imageColumns = "id, business_id, image_url, created_at"

// ImageStore defines gallery-row access.
type ImageStore interface {
	ListByBusiness(ctx context.Context, businessID string) ([]BusinessImage, error)
	Insert(ctx context.Context, img *BusinessImage) (*BusinessImage, error)
	Delete(ctx context.Context, id string) error
}

// Ensure ImageRepository implements ImageStore.
var _ ImageStore = (*ImageRepository)(nil)

// ImageRepository provides gallery-row access over PostgREST.
type ImageRepository struct {
	db *supabase.DatabaseClient
}

// NewImageRepository creates an image repository.
func NewImageRepository(db *supabase.DatabaseClient) *ImageRepository {
	return &ImageRepository{db: db}
}

// ListByBusiness fetches all image rows for a business in store insertion
// order.
func (r *ImageRepository) ListByBusiness(ctx context.Context, businessID string) ([]BusinessImage, error) {
	if businessID == "" {
		return nil, fmt.Errorf("business id cannot be empty")
	}

	var rows []BusinessImage
	err := r.db.From(TableBusinessImages).
		Select(imageColumns).
		Eq("business_id", businessID).
		ExecuteInto(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list business images: %w", err)
	}
	return rows, nil
}

// imageInsert is the write payload; id and created_at are server-assigned.
type imageInsert struct {
	BusinessID string `json:"business_id"`
	ImageURL   string `json:"image_url"`
}

// Insert creates an image row referencing an already-uploaded object.
func (r *ImageRepository) Insert(ctx context.Context, img *BusinessImage) (*BusinessImage, error) {
	if img == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}
	if img.BusinessID == "" {
		return nil, fmt.Errorf("business_id cannot be empty")
	}
	if img.ImageURL == "" {
		return nil, fmt.Errorf("image_url cannot be empty")
	}

	var rows []BusinessImage
	err := r.db.From(TableBusinessImages).
		Insert(imageInsert{BusinessID: img.BusinessID, ImageURL: img.ImageURL}).
		ExecuteInto(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("insert business image: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert business image: empty representation returned")
	}
	return &rows[0], nil
}

// Delete removes an image row by identity.
func (r *ImageRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}

	_, err := r.db.From(TableBusinessImages).
		Delete().
		Eq("id", id).
		Execute(ctx)
	if err != nil {
		return fmt.Errorf("delete business image: %w", err)
	}
	return nil
}
