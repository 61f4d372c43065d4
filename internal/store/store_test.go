package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localconnect/directory/infra/supabase"
)

func newRepoClient(t *testing.T, handler http.Handler) *supabase.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := supabase.New(supabase.Config{
		ProjectURL: srv.URL,
		AnonKey:    "anon",
		ServiceKey: "service",
	})
	require.NoError(t, err)
	return c
}

func TestGetByOwnerNotFound(t *testing.T) {
	c := newRepoClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotAcceptable)
		w.Write([]byte(`{"code":"PGRST116","message":"no rows"}`))
	}))

	repo := NewBusinessRepository(c.Database())
	_, err := repo.GetByOwner(context.Background(), "owner-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGetByOwnerGenuineFailureIsNotNotFound(t *testing.T) {
	c := newRepoClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"connection draining"}`))
	}))

	repo := NewBusinessRepository(c.Database())
	_, err := repo.GetByOwner(context.Background(), "owner-1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestUpsertKeyedOnOwner(t *testing.T) {
	var gotConflict string
	var gotPayload map[string]interface{}
	c := newRepoClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotConflict = r.URL.Query().Get("on_conflict")
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Write([]byte(`[{"id":"b1","user_id":"owner-1","name":"Joe's Cafe"}]`))
	}))

	repo := NewBusinessRepository(c.Database())
	saved, err := repo.Upsert(context.Background(), &Business{
		OwnerID: "owner-1",
		Name:    "Joe's Cafe",
	})
	require.NoError(t, err)

	assert.Equal(t, "user_id", gotConflict)
	assert.Equal(t, "owner-1", gotPayload["user_id"])
	assert.Equal(t, "Joe's Cafe", gotPayload["name"])
	// The record store owns identity; the payload must not carry one.
	_, hasID := gotPayload["id"]
	assert.False(t, hasID)

	assert.Equal(t, "b1", saved.ID)
}

func TestSearchBuildsILikeFilter(t *testing.T) {
	var gotQuery string
	c := newRepoClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[{"id":"b1","user_id":"o","name":"Cafe Uno"}]`))
	}))

	repo := NewBusinessRepository(c.Database())
	rows, err := repo.Search(context.Background(), "cafe")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Contains(t, gotQuery, "name=ilike.%25cafe%25")
}

func TestImageInsertReturnsRepresentation(t *testing.T) {
	var gotPayload map[string]interface{}
	c := newRepoClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Write([]byte(`[{"id":"img1","business_id":"b1","image_url":"gallery/b1/1.jpg"}]`))
	}))

	repo := NewImageRepository(c.Database())
	img, err := repo.Insert(context.Background(), &BusinessImage{
		BusinessID: "b1",
		ImageURL:   "gallery/b1/1.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, "img1", img.ID)
	assert.Equal(t, "gallery/b1/1.jpg", gotPayload["image_url"])
	_, hasID := gotPayload["id"]
	assert.False(t, hasID)
}

func TestImageDeleteFiltersByID(t *testing.T) {
	var gotMethod, gotQuery string
	c := newRepoClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))

	repo := NewImageRepository(c.Database())
	require.NoError(t, repo.Delete(context.Background(), "img1"))

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Contains(t, gotQuery, "id=eq.img1")
}

func TestObjectsListJoinsPrefix(t *testing.T) {
	c := newRepoClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"1.jpg"},{"name":"2.png"}]`))
	}))

	objects := NewObjects(c.Storage())
	paths, err := objects.List(context.Background(), "gallery/b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"gallery/b1/1.jpg", "gallery/b1/2.png"}, paths)
}

func TestObjectsRemoveEmptyIsNoop(t *testing.T) {
	calls := 0
	c := newRepoClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	objects := NewObjects(c.Storage())
	require.NoError(t, objects.Remove(context.Background(), nil))
	assert.Zero(t, calls)
}
