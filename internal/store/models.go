// Package store provides directory-specific data access over the Supabase
// record and object stores.
package store

import "time"

// Table and bucket names owned by the directory schema.
const (
	TableBusinesses     = "businesses"
	TableBusinessImages = "business_images"
	BucketImages        = "business-images"
)

// Business is a row in the businesses table. One row per owner; the record
// store assigns ID on first creation and it never changes afterwards.
type Business struct {
	ID          string    `json:"id,omitempty"`
	OwnerID     string    `json:"user_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	Address     string    `json:"address,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// BusinessImage is a row in the business_images table. ImageURL holds the
// object-store path of the backing file, not a full URL.
type BusinessImage struct {
	ID         string    `json:"id,omitempty"`
	BusinessID string    `json:"business_id"`
	ImageURL   string    `json:"image_url"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}
