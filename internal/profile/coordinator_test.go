package profile

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localconnect/directory/internal/fault"
	"github.com/localconnect/directory/internal/gallery"
	"github.com/localconnect/directory/internal/store"
	"github.com/localconnect/directory/pkg/logger"
)

type mockBusinesses struct {
	rows map[string]*store.Business // keyed by owner id

	GetCalls    int
	UpsertCalls int
	DeleteCalls int

	ErrorOnNextCall error
}

func newMockBusinesses() *mockBusinesses {
	return &mockBusinesses{rows: make(map[string]*store.Business)}
}

func (m *mockBusinesses) checkError() error {
	err := m.ErrorOnNextCall
	m.ErrorOnNextCall = nil
	return err
}

func (m *mockBusinesses) GetByOwner(_ context.Context, ownerID string) (*store.Business, error) {
	m.GetCalls++
	if err := m.checkError(); err != nil {
		return nil, err
	}
	b, ok := m.rows[ownerID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockBusinesses) Upsert(_ context.Context, b *store.Business) (*store.Business, error) {
	m.UpsertCalls++
	if err := m.checkError(); err != nil {
		return nil, err
	}
	saved := *b
	if existing, ok := m.rows[b.OwnerID]; ok {
		saved.ID = existing.ID
	} else {
		saved.ID = fmt.Sprintf("biz-%d", m.UpsertCalls)
	}
	m.rows[b.OwnerID] = &saved
	cp := saved
	return &cp, nil
}

func (m *mockBusinesses) Delete(_ context.Context, id string) error {
	m.DeleteCalls++
	if err := m.checkError(); err != nil {
		return err
	}
	for owner, b := range m.rows {
		if b.ID == id {
			delete(m.rows, owner)
		}
	}
	return nil
}

type mockRemover struct {
	RemoveCalls     int
	LastPaths       []string
	ErrorOnNextCall error
}

func (m *mockRemover) Remove(_ context.Context, paths []string) error {
	m.RemoveCalls++
	m.LastPaths = paths
	err := m.ErrorOnNextCall
	m.ErrorOnNextCall = nil
	return err
}

type mockGallery struct {
	images          []gallery.Image
	LoadCalls       int
	LastBusinessID  string
	ErrorOnNextCall error
}

func (m *mockGallery) Load(_ context.Context, businessID string) error {
	m.LoadCalls++
	m.LastBusinessID = businessID
	err := m.ErrorOnNextCall
	m.ErrorOnNextCall = nil
	return err
}

func (m *mockGallery) Images() []gallery.Image { return m.images }

type mockSessions struct {
	SignOutCalls    int
	ErrorOnNextCall error
}

func (m *mockSessions) SignOut(_ context.Context) error {
	m.SignOutCalls++
	err := m.ErrorOnNextCall
	m.ErrorOnNextCall = nil
	return err
}

type fixture struct {
	businesses *mockBusinesses
	remover    *mockRemover
	gallery    *mockGallery
	sessions   *mockSessions
	coord      *Coordinator
}

func newFixture(ownerID string) *fixture {
	f := &fixture{
		businesses: newMockBusinesses(),
		remover:    &mockRemover{},
		gallery:    &mockGallery{},
		sessions:   &mockSessions{},
	}
	f.coord = New(ownerID, f.businesses, f.remover, f.gallery, f.sessions, logger.NewNop())
	return f
}

func TestLoadNoProfileIsNotAnError(t *testing.T) {
	f := newFixture("owner-1")

	require.NoError(t, f.coord.Load(context.Background()))
	assert.Equal(t, StateAbsent, f.coord.State())
	assert.Nil(t, f.coord.Current())
	assert.Zero(t, f.gallery.LoadCalls)
}

func TestLoadFailureIsFetch(t *testing.T) {
	f := newFixture("owner-1")
	f.businesses.ErrorOnNextCall = fmt.Errorf("record store down")

	err := f.coord.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, fault.KindFetch, fault.KindOf(err))
	assert.Equal(t, StateAbsent, f.coord.State())
}

func TestLoadPresentTriggersGalleryLoad(t *testing.T) {
	f := newFixture("owner-1")
	f.businesses.rows["owner-1"] = &store.Business{ID: "biz-1", OwnerID: "owner-1", Name: "Joe's Cafe"}

	require.NoError(t, f.coord.Load(context.Background()))
	assert.Equal(t, StatePresent, f.coord.State())
	assert.Equal(t, 1, f.gallery.LoadCalls)
	assert.Equal(t, "biz-1", f.gallery.LastBusinessID)
}

func TestSaveDetailsEmptyNameIsValidation(t *testing.T) {
	f := newFixture("owner-1")

	_, err := f.coord.SaveDetails(context.Background(), Details{Name: "   "})
	require.Error(t, err)
	assert.Equal(t, fault.KindValidation, fault.KindOf(err))
	assert.Zero(t, f.businesses.UpsertCalls)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	f := newFixture("owner-1")

	saved, err := f.coord.SaveDetails(context.Background(), Details{Name: "Joe's Cafe"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.businesses.UpsertCalls)
	assert.Equal(t, StatePresent, f.coord.State())

	require.NoError(t, f.coord.Load(context.Background()))
	assert.Equal(t, "Joe's Cafe", f.coord.Current().Name)
	assert.Equal(t, saved.ID, f.coord.Current().ID)
}

func TestSaveDetailsPreservesIdentityAcrossUpdates(t *testing.T) {
	f := newFixture("owner-1")

	first, err := f.coord.SaveDetails(context.Background(), Details{Name: "Joe's Cafe"})
	require.NoError(t, err)
	second, err := f.coord.SaveDetails(context.Background(), Details{Name: "Joe's Diner"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestSaveDetailsStoreFailureIsSave(t *testing.T) {
	f := newFixture("owner-1")
	f.businesses.ErrorOnNextCall = fmt.Errorf("upsert rejected")

	_, err := f.coord.SaveDetails(context.Background(), Details{Name: "Joe's Cafe"})
	require.Error(t, err)
	assert.Equal(t, fault.KindSave, fault.KindOf(err))
	assert.Equal(t, StateAbsent, f.coord.State())
}

func TestDeleteObjectRemovalFailureKeepsRow(t *testing.T) {
	f := newFixture("owner-1")
	f.businesses.rows["owner-1"] = &store.Business{ID: "biz-1", OwnerID: "owner-1", Name: "Joe's Cafe"}
	require.NoError(t, f.coord.Load(context.Background()))

	f.gallery.images = []gallery.Image{
		{ID: "img-1", Path: "gallery/biz-1/1.jpg"},
		{ID: "img-2", Path: "gallery/biz-1/2.jpg"},
	}
	f.remover.ErrorOnNextCall = fmt.Errorf("storage down")

	err := f.coord.Delete(context.Background())
	require.Error(t, err)
	assert.Equal(t, fault.KindCascade, fault.KindOf(err))

	// The row delete never ran and the state stays Present.
	assert.Zero(t, f.businesses.DeleteCalls)
	assert.Zero(t, f.sessions.SignOutCalls)
	assert.Equal(t, StatePresent, f.coord.State())
	assert.Equal(t, []string{"gallery/biz-1/1.jpg", "gallery/biz-1/2.jpg"}, f.remover.LastPaths)
}

func TestDeleteRowFailureIsDegraded(t *testing.T) {
	f := newFixture("owner-1")
	f.businesses.rows["owner-1"] = &store.Business{ID: "biz-1", OwnerID: "owner-1", Name: "Joe's Cafe"}
	require.NoError(t, f.coord.Load(context.Background()))

	f.gallery.images = []gallery.Image{{ID: "img-1", Path: "gallery/biz-1/1.jpg"}}
	f.businesses.ErrorOnNextCall = fmt.Errorf("delete rejected")

	err := f.coord.Delete(context.Background())
	require.Error(t, err)
	assert.Equal(t, fault.KindCascade, fault.KindOf(err))

	// Objects are gone but the row survived.
	assert.Equal(t, 1, f.remover.RemoveCalls)
	assert.Equal(t, StateDegraded, f.coord.State())
	assert.Zero(t, f.sessions.SignOutCalls)
}

func TestDeleteSuccessEndsSession(t *testing.T) {
	f := newFixture("owner-1")
	f.businesses.rows["owner-1"] = &store.Business{ID: "biz-1", OwnerID: "owner-1", Name: "Joe's Cafe"}
	require.NoError(t, f.coord.Load(context.Background()))

	require.NoError(t, f.coord.Delete(context.Background()))
	assert.Equal(t, StateAbsent, f.coord.State())
	assert.Nil(t, f.coord.Current())
	assert.Equal(t, 1, f.sessions.SignOutCalls)
	// No images meant no object-store call.
	assert.Zero(t, f.remover.RemoveCalls)
}

func TestDeleteWithoutProfileIsPrecondition(t *testing.T) {
	f := newFixture("owner-1")

	err := f.coord.Delete(context.Background())
	require.Error(t, err)
	assert.Equal(t, fault.KindPrecondition, fault.KindOf(err))
	assert.Zero(t, f.remover.RemoveCalls)
	assert.Zero(t, f.businesses.DeleteCalls)
}
