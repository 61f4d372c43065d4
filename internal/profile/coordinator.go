package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/localconnect/directory/internal/fault"
	"github.com/localconnect/directory/internal/gallery"
	"github.com/localconnect/directory/internal/metrics"
	"github.com/localconnect/directory/internal/store"
	"github.com/localconnect/directory/pkg/logger"
)

// State tracks the owner's profile lifecycle.
type State int

const (
	// StateAbsent means the owner has no profile row yet.
	StateAbsent State = iota
	// StatePresent means a profile row exists.
	StatePresent
	// StateDegraded means a cascade deletion removed some gallery objects
	// but the profile row survived. Manual follow-up is required.
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StatePresent:
		return "present"
	case StateDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// BusinessStore is the slice of the record store the coordinator needs.
type BusinessStore interface {
	GetByOwner(ctx context.Context, ownerID string) (*store.Business, error)
	Upsert(ctx context.Context, b *store.Business) (*store.Business, error)
	Delete(ctx context.Context, id string) error
}

// ObjectRemover batch-removes objects by path.
type ObjectRemover interface {
	Remove(ctx context.Context, paths []string) error
}

// Gallery is the synchronizer surface the coordinator drives.
type Gallery interface {
	Load(ctx context.Context, businessID string) error
	Images() []gallery.Image
}

// SessionEnder ends the owner's authenticated session.
type SessionEnder interface {
	SignOut(ctx context.Context) error
}

// Details are the caller-editable profile fields.
type Details struct {
	Name        string
	Category    string
	Description string
	Address     string
	Phone       string
}

// Coordinator owns the create-or-update and deletion lifecycle of the
// authenticated owner's single business profile. One instance per active
// user session.
type Coordinator struct {
	mu sync.Mutex

	businesses BusinessStore
	objects    ObjectRemover
	gallery    Gallery
	sessions   SessionEnder
	log        *logger.Logger

	ownerID string
	current *store.Business
	state   State
}

// New creates a coordinator for one owner session.
func New(ownerID string, businesses BusinessStore, objects ObjectRemover, g Gallery, sessions SessionEnder, log *logger.Logger) *Coordinator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Coordinator{
		businesses: businesses,
		objects:    objects,
		gallery:    g,
		sessions:   sessions,
		log:        log,
		ownerID:    ownerID,
		state:      StateAbsent,
	}
}

// State reports the profile lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the loaded profile, or nil when absent.
func (c *Coordinator) Current() *store.Business {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	b := *c.current
	return &b
}

// Load looks up the owner's profile. A missing row is a normal "no profile"
// result, not a failure. When a row is present the gallery is loaded for it.
func (c *Coordinator) Load(ctx context.Context) error {
	const op = "profile.Load"

	b, err := c.businesses.GetByOwner(ctx, c.ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.mu.Lock()
			c.current = nil
			c.state = StateAbsent
			c.mu.Unlock()
			metrics.ProfileOps.WithLabelValues("load", "ok").Inc()
			return nil
		}
		metrics.ProfileOps.WithLabelValues("load", "error").Inc()
		return fault.New(fault.KindFetch, op, err)
	}

	c.mu.Lock()
	c.current = b
	c.state = StatePresent
	c.mu.Unlock()

	if err := c.gallery.Load(ctx, b.ID); err != nil {
		metrics.ProfileOps.WithLabelValues("load", "error").Inc()
		return err
	}
	metrics.ProfileOps.WithLabelValues("load", "ok").Inc()
	return nil
}

// SaveDetails upserts the profile keyed on owner identity. The row identity
// is preserved across updates, so gallery rows are never orphaned by an
// edit.
func (c *Coordinator) SaveDetails(ctx context.Context, d Details) (*store.Business, error) {
	const op = "profile.SaveDetails"

	if strings.TrimSpace(d.Name) == "" {
		return nil, fault.Newf(fault.KindValidation, op, "business name is required")
	}

	saved, err := c.businesses.Upsert(ctx, &store.Business{
		OwnerID:     c.ownerID,
		Name:        d.Name,
		Category:    d.Category,
		Description: d.Description,
		Address:     d.Address,
		Phone:       d.Phone,
	})
	if err != nil {
		metrics.ProfileOps.WithLabelValues("save", "error").Inc()
		return nil, fault.New(fault.KindSave, op, err)
	}

	c.mu.Lock()
	c.current = saved
	c.state = StatePresent
	c.mu.Unlock()

	c.log.Infof("profile saved: business=%s owner=%s", saved.ID, c.ownerID)
	metrics.ProfileOps.WithLabelValues("save", "ok").Inc()
	return saved, nil
}

// Delete runs the destructive cascade: gallery objects first, then the
// profile row, then the owner's session. Object removal failing leaves the
// row untouched; row deletion failing after objects are gone leaves a
// degraded profile that needs manual follow-up.
func (c *Coordinator) Delete(ctx context.Context) error {
	const op = "profile.Delete"

	c.mu.Lock()
	current := c.current
	c.mu.Unlock()
	if current == nil {
		return fault.Newf(fault.KindPrecondition, op, "no profile to delete")
	}

	imgs := c.gallery.Images()
	if len(imgs) > 0 {
		paths := make([]string, 0, len(imgs))
		for _, img := range imgs {
			paths = append(paths, img.Path)
		}
		if err := c.objects.Remove(ctx, paths); err != nil {
			metrics.ProfileOps.WithLabelValues("delete", "error").Inc()
			return fault.New(fault.KindCascade, op, fmt.Errorf("remove gallery objects: %w", err))
		}
	}

	if err := c.businesses.Delete(ctx, current.ID); err != nil {
		c.mu.Lock()
		c.state = StateDegraded
		c.mu.Unlock()
		c.log.Warnf("cascade stalled: business=%s row survived with %d gallery objects removed", current.ID, len(imgs))
		metrics.ProfileOps.WithLabelValues("delete", "error").Inc()
		return fault.New(fault.KindCascade, op, fmt.Errorf("delete business row: %w", err))
	}

	c.mu.Lock()
	c.current = nil
	c.state = StateAbsent
	c.mu.Unlock()

	if err := c.sessions.SignOut(ctx); err != nil {
		// Both remote deletions succeeded; a failed sign-out does not undo
		// them, but the caller should know the session may still be live.
		c.log.Warnf("sign out after deletion failed: %v", err)
		metrics.ProfileOps.WithLabelValues("delete", "error").Inc()
		return fault.New(fault.KindCascade, op, fmt.Errorf("end session: %w", err))
	}

	c.log.Infof("profile deleted: business=%s owner=%s", current.ID, c.ownerID)
	metrics.ProfileOps.WithLabelValues("delete", "ok").Inc()
	return nil
}
