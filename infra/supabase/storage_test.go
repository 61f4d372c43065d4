package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageUpload(t *testing.T) {
	var gotPath, gotContentType, gotAuth string
	var gotBody []byte
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"Key":"business-images/gallery/b1/1.jpg"}`))
	}))

	obj, err := c.Storage().Upload(context.Background(), "business-images", "gallery/b1/1.jpg", []byte("jpegdata"), &UploadOptions{ContentType: "image/jpeg"})
	require.NoError(t, err)

	assert.Equal(t, "/storage/v1/object/business-images/gallery/b1/1.jpg", gotPath)
	assert.Equal(t, "image/jpeg", gotContentType)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, []byte("jpegdata"), gotBody)
	assert.Equal(t, "1.jpg", obj.Name)
	assert.Equal(t, "business-images", obj.BucketID)
}

func TestStorageUploadDefaultsContentType(t *testing.T) {
	var gotContentType string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{}`))
	}))

	_, err := c.Storage().Upload(context.Background(), "business-images", "a/b.bin", []byte("x"), nil)
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", gotContentType)
}

func TestStorageRemoveBatch(t *testing.T) {
	var gotMethod, gotPath string
	var gotReq map[string][]string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(`[]`))
	}))

	paths := []string{"gallery/b1/1.jpg", "gallery/b1/2.png"}
	err := c.Storage().Remove(context.Background(), "business-images", paths)
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/storage/v1/object/business-images", gotPath)
	assert.Equal(t, paths, gotReq["prefixes"])
}

func TestStorageRemoveError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"not allowed"}`))
	}))

	err := c.Storage().Remove(context.Background(), "business-images", []string{"a"})
	require.Error(t, err)

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 403, se.StatusCode)
}

func TestStoragePublicURL(t *testing.T) {
	c, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	got := c.Storage().PublicURL("business-images", "gallery/b1/1.jpg")
	want := srv.URL + "/storage/v1/object/public/business-images/gallery/b1/1.jpg"
	if got != want {
		t.Fatalf("PublicURL = %q, want %q", got, want)
	}
}

func TestStorageList(t *testing.T) {
	var gotReq map[string]interface{}
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(`[{"name":"1.jpg"},{"name":"2.png"}]`))
	}))

	files, err := c.Storage().List(context.Background(), "business-images", "gallery/b1", 100, 0)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "1.jpg", files[0].Name)
	assert.Equal(t, "gallery/b1", gotReq["prefix"])
}
