package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxResponseBytes  = 8 << 20  // 8 MiB
	maxErrorBodyBytes = 32 << 10 // 32 KiB
)

// Client is the main Supabase client. Sub-clients share its transport and
// key handling.
type Client struct {
	config Config

	baseURL    string
	restURL    string
	authURL    string
	storageURL string

	httpClient *http.Client

	auth     *AuthClient
	database *DatabaseClient
	storage  *StorageClient
}

// New creates a new Supabase client.
func New(cfg Config) (*Client, error) {
	if cfg.ProjectURL == "" {
		return nil, fmt.Errorf("project URL is required")
	}
	if cfg.AnonKey == "" {
		return nil, fmt.Errorf("anon key is required")
	}

	baseURL := strings.TrimRight(cfg.ProjectURL, "/")
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid project URL: %q", cfg.ProjectURL)
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		config:     cfg,
		baseURL:    baseURL,
		restURL:    baseURL + "/rest/v1",
		authURL:    baseURL + "/auth/v1",
		storageURL: baseURL + "/storage/v1",
		httpClient: httpClient,
	}

	c.auth = &AuthClient{client: c}
	c.database = &DatabaseClient{client: c}
	c.storage = &StorageClient{client: c}

	return c, nil
}

// Auth returns the auth client.
func (c *Client) Auth() *AuthClient { return c.auth }

// Database returns the database client.
func (c *Client) Database() *DatabaseClient { return c.database }

// Storage returns the storage client.
func (c *Client) Storage() *StorageClient { return c.storage }

// request performs an HTTP request authenticated with the anon key.
func (c *Client) request(ctx context.Context, method, urlStr string, body []byte, headers map[string]string) ([]byte, int, error) {
	return c.do(ctx, method, urlStr, body, headers, c.config.AnonKey, "")
}

// requestWithServiceKey performs an HTTP request with the service role key.
func (c *Client) requestWithServiceKey(ctx context.Context, method, urlStr string, body []byte, headers map[string]string) ([]byte, int, error) {
	if c.config.ServiceKey == "" {
		return nil, 0, fmt.Errorf("service key not configured")
	}
	return c.do(ctx, method, urlStr, body, headers, c.config.ServiceKey, "")
}

// requestWithToken performs an HTTP request with a user's access token. The
// anon key still identifies the project.
func (c *Client) requestWithToken(ctx context.Context, method, urlStr string, body []byte, headers map[string]string, accessToken string) ([]byte, int, error) {
	return c.do(ctx, method, urlStr, body, headers, c.config.AnonKey, accessToken)
}

func (c *Client) do(ctx context.Context, method, urlStr string, body []byte, headers map[string]string, apiKey, accessToken string) ([]byte, int, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	for k, v := range c.config.DefaultHeaders {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	req.Header.Set("apikey", apiKey)
	bearer := apiKey
	if accessToken != "" {
		bearer = accessToken
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	limit := int64(maxResponseBytes)
	if resp.StatusCode >= 400 {
		limit = maxErrorBodyBytes
	}
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	return respBody, resp.StatusCode, nil
}

// parseError parses an API error response body.
func parseError(body []byte, statusCode int) error {
	var errResp struct {
		Code             string `json:"code"`
		Message          string `json:"message"`
		Details          string `json:"details"`
		Hint             string `json:"hint"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}

	if err := json.Unmarshal(body, &errResp); err != nil {
		return &Error{
			Code:       "unknown",
			Message:    strings.TrimSpace(string(body)),
			StatusCode: statusCode,
		}
	}

	msg := errResp.Message
	if msg == "" {
		msg = errResp.Error
	}
	if msg == "" {
		msg = errResp.ErrorDescription
	}

	return &Error{
		Code:       errResp.Code,
		Message:    msg,
		Details:    errResp.Details,
		Hint:       errResp.Hint,
		StatusCode: statusCode,
	}
}
