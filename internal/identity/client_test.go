// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAuthServer fakes the auth service for one test account.
func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /signup", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] == "" || body["password"] == "" {
			writeAuthError(w, http.StatusBadRequest, "signup requires email and password")
			return
		}
		json.NewEncoder(w).Encode(Session{
			AccessToken:  "token-signup",
			TokenType:    "bearer",
			ExpiresIn:    3600,
			RefreshToken: "refresh-signup",
			User:         User{ID: "user-1", Email: body["email"]},
		})
	})

	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("grant_type") {
		case "password":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["email"] != "kai@example.com" || body["password"] != "hunter2" {
				writeAuthError(w, http.StatusBadRequest, "Invalid login credentials")
				return
			}
			json.NewEncoder(w).Encode(Session{
				AccessToken:  "token-1",
				TokenType:    "bearer",
				ExpiresIn:    3600,
				RefreshToken: "refresh-1",
				User:         User{ID: "user-1", Email: "kai@example.com"},
			})
		case "refresh_token":
			json.NewEncoder(w).Encode(Session{
				AccessToken:  "token-2",
				TokenType:    "bearer",
				ExpiresIn:    3600,
				RefreshToken: "refresh-2",
				User:         User{ID: "user-1", Email: "kai@example.com"},
			})
		default:
			writeAuthError(w, http.StatusBadRequest, "unsupported grant type")
		}
	})

	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-1" {
			writeAuthError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		json.NewEncoder(w).Encode(User{ID: "user-1", Email: "kai@example.com"})
	})

	mux.HandleFunc("PUT /user", func(w http.ResponseWriter, r *http.Request) {
		var attrs UserAttributes
		json.NewDecoder(r.Body).Decode(&attrs)
		json.NewEncoder(w).Encode(User{ID: "user-1", Email: attrs.Email})
	})

	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"msg": msg})
}

func newTestClient(t *testing.T, srv *httptest.Server) (*Client, string) {
	t.Helper()
	cachePath := filepath.Join(t.TempDir(), "session.json")
	return NewClient(ClientConfig{
		BaseURL:   srv.URL,
		AnonKey:   "anon-test",
		CachePath: cachePath,
	}), cachePath
}

// =============================================================================
// SIGN IN
// =============================================================================

func TestSignIn(t *testing.T) {
	srv := newAuthServer(t)
	client, cachePath := newTestClient(t, srv)

	sess, err := client.SignIn(context.Background(), "kai@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "token-1", sess.AccessToken)
	assert.Equal(t, "kai@example.com", sess.User.Email)
	assert.True(t, client.SignedIn())

	// The session is mirrored to disk with tight permissions.
	fi, err := os.Stat(cachePath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), fi.Mode().Perm())
}

func TestSignInRejected(t *testing.T) {
	srv := newAuthServer(t)
	client, _ := newTestClient(t, srv)

	_, err := client.SignIn(context.Background(), "kai@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, IsInvalidCredentials(err))
	assert.False(t, client.SignedIn())
	assert.Contains(t, err.Error(), "Invalid login credentials")
}

func TestSignUp(t *testing.T) {
	srv := newAuthServer(t)
	client, _ := newTestClient(t, srv)

	sess, err := client.SignUp(context.Background(), "new@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", sess.User.Email)
	assert.True(t, client.SignedIn())
}

// =============================================================================
// SESSION PERSISTENCE
// =============================================================================

func TestSessionSurvivesRestart(t *testing.T) {
	srv := newAuthServer(t)
	client, cachePath := newTestClient(t, srv)

	_, err := client.SignIn(context.Background(), "kai@example.com", "hunter2")
	require.NoError(t, err)

	// A fresh client over the same cache picks the session up.
	revived := NewClient(ClientConfig{BaseURL: srv.URL, CachePath: cachePath})
	assert.True(t, revived.SignedIn())

	user, err := revived.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "kai@example.com", user.Email)
}

func TestExpiredSessionNotRevived(t *testing.T) {
	srv := newAuthServer(t)
	cachePath := filepath.Join(t.TempDir(), "session.json")

	stale := Session{
		AccessToken: "token-old",
		ExpiresAt:   time.Now().Add(-time.Hour).Unix(),
	}
	data, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cachePath, data, 0600))

	client := NewClient(ClientConfig{BaseURL: srv.URL, CachePath: cachePath})
	assert.False(t, client.SignedIn())
}

// =============================================================================
// USER OPERATIONS
// =============================================================================

func TestCurrentUserRequiresSession(t *testing.T) {
	srv := newAuthServer(t)
	client, _ := newTestClient(t, srv)

	_, err := client.CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestUpdateUser(t *testing.T) {
	srv := newAuthServer(t)
	client, _ := newTestClient(t, srv)

	_, err := client.SignIn(context.Background(), "kai@example.com", "hunter2")
	require.NoError(t, err)

	user, err := client.UpdateUser(context.Background(), UserAttributes{Email: "renamed@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "renamed@example.com", user.Email)
	assert.Equal(t, "renamed@example.com", client.Session().User.Email)
}

// =============================================================================
// SIGN OUT
// =============================================================================

func TestSignOut(t *testing.T) {
	srv := newAuthServer(t)
	client, cachePath := newTestClient(t, srv)

	_, err := client.SignIn(context.Background(), "kai@example.com", "hunter2")
	require.NoError(t, err)

	require.NoError(t, client.SignOut(context.Background()))
	assert.False(t, client.SignedIn())

	// The cache is gone too.
	_, err = os.Stat(cachePath)
	assert.True(t, os.IsNotExist(err))

	// Signing out twice reports no session.
	assert.ErrorIs(t, client.SignOut(context.Background()), ErrNotAuthenticated)
}

// =============================================================================
// REFRESH
// =============================================================================

func TestRefresh(t *testing.T) {
	srv := newAuthServer(t)
	client, _ := newTestClient(t, srv)

	_, err := client.SignIn(context.Background(), "kai@example.com", "hunter2")
	require.NoError(t, err)

	sess, err := client.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-2", sess.AccessToken)
	assert.Equal(t, "refresh-2", sess.RefreshToken)
}
