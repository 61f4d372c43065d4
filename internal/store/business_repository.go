package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/localconnect/directory/infra/supabase"
)

// ErrNotFound is returned when a lookup matches no row. Callers treat it as
// a normal empty result, not a failure.
var ErrNotFound = errors.New("directory: not found")

const businessColumns = "id, user_id, name, category, description, address, phone, created_at"

// BusinessStore defines business-row access. The interface keeps the
// coordinator and discovery layers mockable in tests.
type BusinessStore interface {
	GetByOwner(ctx context.Context, ownerID string) (*Business, error)
	GetByID(ctx context.Context, id string) (*Business, error)
	Search(ctx context.Context, term string) ([]Business, error)
	ListByIDs(ctx context.Context, ids []string) ([]Business, error)
	Upsert(ctx context.Context, b *Business) (*Business, error)
	Delete(ctx context.Context, id string) error
}

// Ensure BusinessRepository implements BusinessStore.
var _ BusinessStore = (*BusinessRepository)(nil)

// BusinessRepository provides business-row access over PostgREST.
type BusinessRepository struct {
	db *supabase.DatabaseClient
}

// NewBusinessRepository creates a business repository.
func NewBusinessRepository(db *supabase.DatabaseClient) *BusinessRepository {
	return &BusinessRepository{db: db}
}

// GetByOwner fetches the single business owned by ownerID. Returns
// ErrNotFound when the owner has no profile yet.
func (r *BusinessRepository) GetByOwner(ctx context.Context, ownerID string) (*Business, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner id cannot be empty")
	}

	var b Business
	err := r.db.From(TableBusinesses).
		Select(businessColumns).
		Eq("user_id", ownerID).
		Single().
		ExecuteInto(ctx, &b)
	if err != nil {
		if supabase.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get business by owner: %w", err)
	}
	return &b, nil
}

// GetByID fetches a business by its identity.
func (r *BusinessRepository) GetByID(ctx context.Context, id string) (*Business, error) {
	if id == "" {
		return nil, fmt.Errorf("id cannot be empty")
	}

	var b Business
	err := r.db.From(TableBusinesses).
		Select(businessColumns).
		Eq("id", id).
		Single().
		ExecuteInto(ctx, &b)
	if err != nil {
		if supabase.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get business: %w", err)
	}
	return &b, nil
}

// Search lists businesses, optionally filtered by a case-insensitive name
// match. An empty term lists everything.
func (r *BusinessRepository) Search(ctx context.Context, term string) ([]Business, error) {
	q := r.db.From(TableBusinesses).Select(businessColumns)
	if term != "" {
		q = q.ILike("name", "%"+term+"%")
	}

	var rows []Business
	if err := q.ExecuteInto(ctx, &rows); err != nil {
		return nil, fmt.Errorf("search businesses: %w", err)
	}
	return rows, nil
}

// ListByIDs fetches the businesses whose ids are in the given set.
func (r *BusinessRepository) ListByIDs(ctx context.Context, ids []string) ([]Business, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []Business
	err := r.db.From(TableBusinesses).
		Select(businessColumns).
		In("id", ids).
		ExecuteInto(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list businesses by ids: %w", err)
	}
	return rows, nil
}

// businessUpsert is the write payload. ID and created_at stay server-owned;
// the conflict target keeps identity stable across updates.
type businessUpsert struct {
	OwnerID     string `json:"user_id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
}

// Upsert creates or overwrites the owner's business row, keyed on user_id.
func (r *BusinessRepository) Upsert(ctx context.Context, b *Business) (*Business, error) {
	if b == nil {
		return nil, fmt.Errorf("business cannot be nil")
	}
	if b.OwnerID == "" {
		return nil, fmt.Errorf("user_id cannot be empty")
	}

	payload := businessUpsert{
		OwnerID:     b.OwnerID,
		Name:        b.Name,
		Category:    b.Category,
		Description: b.Description,
		Address:     b.Address,
		Phone:       b.Phone,
	}

	var rows []Business
	err := r.db.From(TableBusinesses).
		Upsert(payload, "user_id").
		ExecuteInto(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("upsert business: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("upsert business: empty representation returned")
	}
	return &rows[0], nil
}

// Delete removes a business row by identity.
func (r *BusinessRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}

	_, err := r.db.From(TableBusinesses).
		Delete().
		Eq("id", id).
		Execute(ctx)
	if err != nil {
		return fmt.Errorf("delete business: %w", err)
	}
	return nil
}
