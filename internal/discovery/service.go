package discovery

import (
	"context"

	"github.com/localconnect/directory/internal/fault"
	"github.com/localconnect/directory/internal/store"
)

// DefaultImageURL is shown for businesses with no gallery images.
const DefaultImageURL = "https://placehold.co/600x400"

// BusinessReader is the read-only slice of the record store used for
// discovery.
type BusinessReader interface {
	GetByID(ctx context.Context, id string) (*store.Business, error)
	Search(ctx context.Context, term string) ([]store.Business, error)
	ListByIDs(ctx context.Context, ids []string) ([]store.Business, error)
}

// ImageReader lists gallery rows for a business.
type ImageReader interface {
	ListByBusiness(ctx context.Context, businessID string) ([]store.BusinessImage, error)
}

// URLResolver derives a public URL from an object path.
type URLResolver interface {
	PublicURL(path string) string
}

// Profile is a business with its resolved gallery URLs, ready for display.
type Profile struct {
	Business store.Business
	Images   []string
}

// Service answers the public, read-only queries: search listings and
// individual business profiles.
type Service struct {
	businesses BusinessReader
	images     ImageReader
	urls       URLResolver
}

// New creates a discovery service.
func New(businesses BusinessReader, images ImageReader, urls URLResolver) *Service {
	return &Service{businesses: businesses, images: images, urls: urls}
}

// Search returns businesses whose name matches term, or all businesses when
// term is empty.
func (s *Service) Search(ctx context.Context, term string) ([]store.Business, error) {
	const op = "discovery.Search"

	results, err := s.businesses.Search(ctx, term)
	if err != nil {
		return nil, fault.New(fault.KindFetch, op, err)
	}
	return results, nil
}

// ListByIDs fetches the given businesses, used for rendering the saved
// list. Unknown ids are simply absent from the result.
func (s *Service) ListByIDs(ctx context.Context, ids []string) ([]store.Business, error) {
	const op = "discovery.ListByIDs"

	if len(ids) == 0 {
		return nil, nil
	}
	results, err := s.businesses.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fault.New(fault.KindFetch, op, err)
	}
	return results, nil
}

// PublicProfile fetches one business with its gallery resolved to public
// URLs. A business with no images gets the default placeholder.
func (s *Service) PublicProfile(ctx context.Context, businessID string) (*Profile, error) {
	const op = "discovery.PublicProfile"

	b, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		return nil, fault.New(fault.KindFetch, op, err)
	}

	rows, err := s.images.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, fault.New(fault.KindFetch, op, err)
	}

	p := &Profile{Business: *b}
	for _, row := range rows {
		p.Images = append(p.Images, s.urls.PublicURL(row.ImageURL))
	}
	if len(p.Images) == 0 {
		p.Images = []string{DefaultImageURL}
	}
	return p, nil
}
