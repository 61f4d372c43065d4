package store

import (
	"context"
	"fmt"

	"github.com/localconnect/directory/infra/supabase"
)

// Objects binds the storage client to the gallery bucket.
type Objects struct {
	storage *supabase.StorageClient
	bucket  string
}

// NewObjects creates an object-store adapter for the image bucket.
func NewObjects(storage *supabase.StorageClient) *Objects {
	return &Objects{storage: storage, bucket: BucketImages}
}

// Upload stores a file at the given path.
func (o *Objects) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	_, err := o.storage.Upload(ctx, o.bucket, path, data, &supabase.UploadOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("upload object: %w", err)
	}
	return nil
}

// Remove deletes the given paths in one batch call.
func (o *Objects) Remove(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := o.storage.Remove(ctx, o.bucket, paths); err != nil {
		return fmt.Errorf("remove objects: %w", err)
	}
	return nil
}

// List returns the object paths stored under a prefix.
func (o *Objects) List(ctx context.Context, prefix string) ([]string, error) {
	const pageSize = 1000

	var paths []string
	for offset := 0; ; offset += pageSize {
		files, err := o.storage.List(ctx, o.bucket, prefix, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, f := range files {
			paths = append(paths, prefix+"/"+f.Name)
		}
		if len(files) < pageSize {
			break
		}
	}
	return paths, nil
}

// PublicURL derives the public URL for a stored path.
func (o *Objects) PublicURL(path string) string {
	return o.storage.PublicURL(o.bucket, path)
}
