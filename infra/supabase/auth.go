package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClient handles GoTrue auth operations and tracks the current session.
// Listeners registered with OnStateChange observe sign-in and sign-out.
type AuthClient struct {
	client *Client

	mu        sync.Mutex
	session   *Session
	listeners map[int]func(*Session)
	nextID    int
}

// CurrentSession returns the tracked session, or nil when signed out.
func (a *AuthClient) CurrentSession() *Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// SetSession installs an externally obtained session (e.g. restored from
// disk) and notifies listeners.
func (a *AuthClient) SetSession(s *Session) {
	a.mu.Lock()
	a.session = s
	fns := a.listenerSnapshot()
	a.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

// OnStateChange registers a listener for session-present/session-absent
// events. The returned function unsubscribes it.
func (a *AuthClient) OnStateChange(fn func(*Session)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listeners == nil {
		a.listeners = make(map[int]func(*Session))
	}
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.listeners, id)
	}
}

func (a *AuthClient) listenerSnapshot() []func(*Session) {
	fns := make([]func(*Session), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	return fns
}

// SignInWithPassword authenticates a user with email/password.
func (a *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	req := map[string]string{
		"email":    email,
		"password": password,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	respBody, statusCode, err := a.client.request(ctx, "POST", a.client.authURL+"/token?grant_type=password", body, nil)
	if err != nil {
		return nil, err
	}
	if statusCode >= 400 {
		return nil, parseError(respBody, statusCode)
	}

	var session Session
	if err := json.Unmarshal(respBody, &session); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	a.SetSession(&session)
	return &session, nil
}

// RefreshToken exchanges a refresh token for a new session.
func (a *AuthClient) RefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	req := map[string]string{
		"refresh_token": refreshToken,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	respBody, statusCode, err := a.client.request(ctx, "POST", a.client.authURL+"/token?grant_type=refresh_token", body, nil)
	if err != nil {
		return nil, err
	}
	if statusCode >= 400 {
		return nil, parseError(respBody, statusCode)
	}

	var session Session
	if err := json.Unmarshal(respBody, &session); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	a.SetSession(&session)
	return &session, nil
}

// User retrieves the user behind an access token. Prefers local JWT
// verification when a JWT secret is configured, falling back to the auth
// REST API.
func (a *AuthClient) User(ctx context.Context, accessToken string) (*User, error) {
	if a.client.config.JWTSecret != "" {
		if user, err := a.verifyLocal(accessToken); err == nil {
			return user, nil
		}
	}

	respBody, statusCode, err := a.client.requestWithToken(ctx, "GET", a.client.authURL+"/user", nil, nil, accessToken)
	if err != nil {
		return nil, err
	}
	if statusCode >= 400 {
		return nil, parseError(respBody, statusCode)
	}

	var user User
	if err := json.Unmarshal(respBody, &user); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &user, nil
}

// SignOut revokes the tracked session and notifies listeners. Listeners are
// notified even when revocation fails remotely, because the local session is
// discarded either way.
func (a *AuthClient) SignOut(ctx context.Context) error {
	a.mu.Lock()
	session := a.session
	a.mu.Unlock()

	var revokeErr error
	if session != nil && session.AccessToken != "" {
		_, statusCode, err := a.client.requestWithToken(ctx, "POST", a.client.authURL+"/logout", nil, nil, session.AccessToken)
		if err != nil {
			revokeErr = err
		} else if statusCode >= 400 {
			revokeErr = fmt.Errorf("sign out failed with status %d", statusCode)
		}
	}

	a.SetSession(nil)
	return revokeErr
}

// verifyLocal verifies a session token against the configured JWT secret.
func (a *AuthClient) verifyLocal(token string) (*User, error) {
	claims := jwt.MapClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(a.client.config.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwt parse: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("jwt invalid")
	}

	user := &User{
		ID:           stringClaim(claims, "sub"),
		Email:        stringClaim(claims, "email"),
		Phone:        stringClaim(claims, "phone"),
		Role:         stringClaim(claims, "role"),
		Aud:          stringClaim(claims, "aud"),
		AppMetadata:  mapClaim(claims, "app_metadata"),
		UserMetadata: mapClaim(claims, "user_metadata"),
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		user.CreatedAt = iat.Time
	}
	return user, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func mapClaim(claims jwt.MapClaims, key string) map[string]interface{} {
	if v, ok := claims[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}

// TokenExpiry reports when an access token expires, without verifying it.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("jwt parse: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("jwt has no exp claim")
	}
	return exp.Time, nil
}
