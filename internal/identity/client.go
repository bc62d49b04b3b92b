// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// APIError is an error response from the auth service.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"error_code,omitempty"`
	Message string `json:"msg"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("auth request failed with status %d", e.Status)
}

// ErrNotAuthenticated means no session is active.
var ErrNotAuthenticated = errors.New("not signed in")

// IsInvalidCredentials reports whether the error is a rejected sign-in.
func IsInvalidCredentials(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnauthorized)
}

// =============================================================================
// TYPES
// =============================================================================

// User is the authenticated account.
type User struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	CreatedAt time.Time      `json:"created_at"`
	Metadata  map[string]any `json:"user_metadata,omitempty"`
}

// Session is a bearer token session.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Expired reports whether the access token has passed its expiry.
func (s *Session) Expired() bool {
	if s.ExpiresAt == 0 {
		return false
	}
	return time.Now().Unix() >= s.ExpiresAt
}

// UserAttributes are the updatable account fields.
type UserAttributes struct {
	Email    string         `json:"email,omitempty"`
	Password string         `json:"password,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the auth client.
type ClientConfig struct {
	// BaseURL is the auth service base URL, e.g. https://x.example.com/auth/v1
	BaseURL string

	// AnonKey is the public API key sent with every request
	AnonKey string

	// Timeout for requests (default: 15s)
	Timeout time.Duration

	// CachePath overrides where the session is persisted. Empty means
	// ~/.miki/session.json; "-" disables persistence.
	CachePath string
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the auth service.
//
// The Client is thread-safe for concurrent use. The active session is held
// in memory and mirrored to the on-disk cache.
type Client struct {
	config     ClientConfig
	httpClient *http.Client

	mu      sync.Mutex
	session *Session
}

// NewClient creates an auth client. A previously cached session is picked up
// so the user stays signed in across restarts.
func NewClient(config ClientConfig) *Client {
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	c := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
	if sess, err := loadCachedSession(config.CachePath); err == nil && !sess.Expired() {
		c.session = sess
	}
	return c
}

// =============================================================================
// SIGN UP / SIGN IN
// =============================================================================

// SignUp registers a new account. Depending on server settings the response
// may already carry a session (confirmation disabled) or just the user.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}

	var sess Session
	if err := c.post(ctx, "/signup", "", body, &sess); err != nil {
		return nil, err
	}
	if sess.AccessToken != "" {
		c.storeSession(&sess)
	}
	return &sess, nil
}

// SignIn authenticates with the password grant and activates the session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}

	var sess Session
	if err := c.post(ctx, "/token?grant_type=password", "", body, &sess); err != nil {
		return nil, err
	}
	c.storeSession(&sess)
	return &sess, nil
}

// Refresh exchanges the refresh token for a new session.
func (c *Client) Refresh(ctx context.Context) (*Session, error) {
	cur := c.Session()
	if cur == nil || cur.RefreshToken == "" {
		return nil, ErrNotAuthenticated
	}
	body := map[string]string{"refresh_token": cur.RefreshToken}

	var sess Session
	if err := c.post(ctx, "/token?grant_type=refresh_token", "", body, &sess); err != nil {
		return nil, err
	}
	c.storeSession(&sess)
	return &sess, nil
}

// SignOut revokes the session on the server and clears the local cache.
// The local session is cleared even when the server call fails.
func (c *Client) SignOut(ctx context.Context) error {
	sess := c.Session()
	if sess == nil {
		return ErrNotAuthenticated
	}

	err := c.post(ctx, "/logout", sess.AccessToken, nil, nil)
	c.clearSession()
	return err
}

// =============================================================================
// USER OPERATIONS
// =============================================================================

// CurrentUser fetches the account behind the active session.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	sess := c.Session()
	if sess == nil {
		return nil, ErrNotAuthenticated
	}

	var user User
	if err := c.request(ctx, http.MethodGet, "/user", sess.AccessToken, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates account fields on the active session.
func (c *Client) UpdateUser(ctx context.Context, attrs UserAttributes) (*User, error) {
	sess := c.Session()
	if sess == nil {
		return nil, ErrNotAuthenticated
	}

	var user User
	if err := c.request(ctx, http.MethodPut, "/user", sess.AccessToken, attrs, &user); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.session != nil {
		c.session.User = user
		persistSession(c.config.CachePath, c.session)
	}
	c.mu.Unlock()
	return &user, nil
}

// =============================================================================
// SESSION STATE
// =============================================================================

// Session returns the active session, or nil when signed out.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SignedIn reports whether a non-expired session is active.
func (c *Client) SignedIn() bool {
	sess := c.Session()
	return sess != nil && !sess.Expired()
}

func (c *Client) storeSession(sess *Session) {
	if sess.ExpiresAt == 0 && sess.ExpiresIn > 0 {
		sess.ExpiresAt = time.Now().Unix() + int64(sess.ExpiresIn)
	}
	c.mu.Lock()
	c.session = sess
	persistSession(c.config.CachePath, sess)
	c.mu.Unlock()
}

func (c *Client) clearSession() {
	c.mu.Lock()
	c.session = nil
	removeCachedSession(c.config.CachePath)
	c.mu.Unlock()
}

// =============================================================================
// HTTP PLUMBING
// =============================================================================

func (c *Client) post(ctx context.Context, path, token string, body, out any) error {
	return c.request(ctx, http.MethodPost, path, token, body, out)
}

func (c *Client) request(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.AnonKey != "" {
		req.Header.Set("apikey", c.config.AnonKey)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		json.Unmarshal(data, apiErr)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
