package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// StorageClient handles Supabase Storage operations.
type StorageClient struct {
	client *Client
}

// Upload uploads a file to a bucket at the given path.
func (s *StorageClient) Upload(ctx context.Context, bucketID, filePath string, data []byte, opts *UploadOptions) (*FileObject, error) {
	urlStr := fmt.Sprintf("%s/object/%s/%s", s.client.storageURL, bucketID, escapePath(filePath))

	headers := map[string]string{}
	if opts != nil {
		if opts.ContentType != "" {
			headers["Content-Type"] = opts.ContentType
		}
		if opts.CacheControl != "" {
			headers["Cache-Control"] = opts.CacheControl
		}
		if opts.Upsert {
			headers["x-upsert"] = "true"
		}
	}
	if headers["Content-Type"] == "" {
		headers["Content-Type"] = "application/octet-stream"
	}

	respBody, statusCode, err := s.client.requestWithServiceKey(ctx, "POST", urlStr, data, headers)
	if err != nil {
		return nil, err
	}
	if statusCode >= 400 {
		return nil, parseError(respBody, statusCode)
	}

	return &FileObject{
		Name:     path.Base(filePath),
		BucketID: bucketID,
	}, nil
}

// Remove deletes files from a bucket in one call.
func (s *StorageClient) Remove(ctx context.Context, bucketID string, filePaths []string) error {
	urlStr := fmt.Sprintf("%s/object/%s", s.client.storageURL, bucketID)

	req := map[string]interface{}{
		"prefixes": filePaths,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	respBody, statusCode, err := s.client.requestWithServiceKey(ctx, "DELETE", urlStr, body, nil)
	if err != nil {
		return err
	}
	if statusCode >= 400 {
		return parseError(respBody, statusCode)
	}
	return nil
}

// List lists files in a bucket under a prefix.
func (s *StorageClient) List(ctx context.Context, bucketID, prefix string, limit, offset int) ([]FileObject, error) {
	urlStr := fmt.Sprintf("%s/object/list/%s", s.client.storageURL, bucketID)

	req := map[string]interface{}{
		"prefix": prefix,
		"limit":  limit,
		"offset": offset,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	respBody, statusCode, err := s.client.requestWithServiceKey(ctx, "POST", urlStr, body, nil)
	if err != nil {
		return nil, err
	}
	if statusCode >= 400 {
		return nil, parseError(respBody, statusCode)
	}

	var files []FileObject
	if err := json.Unmarshal(respBody, &files); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return files, nil
}

// PublicURL returns the public URL for a file. Pure derivation, no request.
func (s *StorageClient) PublicURL(bucketID, filePath string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", s.client.storageURL, bucketID, escapePath(filePath))
}

// escapePath escapes each path segment while keeping separators.
func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}
