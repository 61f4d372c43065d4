// Package supabase provides typed clients for the Supabase REST surface the
// directory depends on: PostgREST, Storage, and GoTrue auth.
package supabase

import (
	"errors"
	"net/http"
	"time"
)

// Config holds Supabase client configuration.
type Config struct {
	// ProjectURL is the Supabase project URL (e.g. https://xxx.supabase.co).
	ProjectURL string

	// AnonKey is the public API key used for unauthenticated requests.
	AnonKey string

	// ServiceKey is the service role key for operations that bypass RLS.
	// Optional; requests needing it fail if it is unset.
	ServiceKey string

	// JWTSecret enables local session token verification. Optional; when
	// empty, tokens are verified against the auth REST API instead.
	JWTSecret string

	// DefaultHeaders are added to every request.
	DefaultHeaders map[string]string

	// Timeout for HTTP requests. Defaults to 30s.
	Timeout time.Duration

	// HTTPClient overrides the transport. Used in tests.
	HTTPClient *http.Client
}

// User represents a Supabase auth user.
type User struct {
	ID           string                 `json:"id"`
	Aud          string                 `json:"aud"`
	Role         string                 `json:"role"`
	Email        string                 `json:"email"`
	Phone        string                 `json:"phone,omitempty"`
	AppMetadata  map[string]interface{} `json:"app_metadata,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// Session represents an auth session.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}

// OrderDirection for sorting.
type OrderDirection string

const (
	OrderAsc  OrderDirection = "asc"
	OrderDesc OrderDirection = "desc"
)

// FileObject represents a file in storage.
type FileObject struct {
	Name      string     `json:"name"`
	ID        string     `json:"id,omitempty"`
	BucketID  string     `json:"bucket_id,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// UploadOptions for file uploads.
type UploadOptions struct {
	ContentType  string
	CacheControl string
	Upsert       bool
}

// CodeNoRows is the PostgREST code returned when .Single() matched no row.
// Callers must treat it as an empty result, not a failure.
const CodeNoRows = "PGRST116"

// Error represents a Supabase API error.
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	Hint       string `json:"hint,omitempty"`
	StatusCode int    `json:"status_code"`
}

func (e *Error) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// IsNoRows reports whether err is the PostgREST "no row found" condition.
func IsNoRows(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == CodeNoRows
}
