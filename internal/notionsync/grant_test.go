package notionsync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nretro/retrosync/internal/db"
	"github.com/nretro/retrosync/internal/notionsdk"
	"github.com/nretro/retrosync/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	database, err := db.NewSqliteDB(db.WithPath(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	st, err := store.New(database)
	require.NoError(t, err)
	return st
}

func newTestUser(t *testing.T, st *store.Store) int64 {
	t.Helper()
	userID, err := st.Users.Create(context.Background(), "user@example.com", "hash")
	require.NoError(t, err)
	return userID
}

func grantServiceFor(st *store.Store, baseURL string) *GrantService {
	oauth := &notionsdk.OAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost/notion/callback",
		BaseURL:      baseURL,
	}
	return NewGrantService(st.Users, oauth, WithSDKOptions(notionsdk.WithBaseURL(baseURL)))
}

func TestBeginAuthorization(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	userID := newTestUser(t, st)

	t.Run("unconfigured", func(t *testing.T) {
		svc := NewGrantService(st.Users, &notionsdk.OAuthConfig{})
		_, err := svc.BeginAuthorization(ctx, userID)
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("configured", func(t *testing.T) {
		svc := grantServiceFor(st, "https://example.test")

		authorizeURL, err := svc.BeginAuthorization(ctx, userID)
		require.NoError(t, err)

		parsed, err := url.Parse(authorizeURL)
		require.NoError(t, err)
		state := parsed.Query().Get("state")
		require.NotEmpty(t, state)
		assert.Equal(t, "client-id", parsed.Query().Get("client_id"))
		assert.Equal(t, "code", parsed.Query().Get("response_type"))

		// the nonce in the URL is the one persisted
		got, err := st.Users.UserIDByState(ctx, state)
		require.NoError(t, err)
		assert.Equal(t, userID, got)
	})
}

func TestCompleteAuthorization(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown state", func(t *testing.T) {
		st := newTestStore(t)
		svc := grantServiceFor(st, "https://example.test")

		_, _, err := svc.CompleteAuthorization(ctx, "code", "bogus-state")
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("success persists grant and clears state", func(t *testing.T) {
		st := newTestStore(t)
		userID := newTestUser(t, st)

		mux := http.NewServeMux()
		mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "client-id", user)
			assert.Equal(t, "client-secret", pass)

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"tok-1","workspace_id":"ws-1","workspace_name":"Acme"}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		svc := grantServiceFor(st, srv.URL)

		authorizeURL, err := svc.BeginAuthorization(ctx, userID)
		require.NoError(t, err)
		parsed, _ := url.Parse(authorizeURL)
		state := parsed.Query().Get("state")

		gotID, grant, err := svc.CompleteAuthorization(ctx, "auth-code", state)
		require.NoError(t, err)
		assert.Equal(t, userID, gotID)
		assert.Equal(t, "tok-1", grant.AccessToken)
		assert.Equal(t, "Acme", grant.WorkspaceName)
		require.NotNil(t, grant.ExpiresAt)
		assert.WithinDuration(t, time.Now().Add(grantValidity), *grant.ExpiresAt, time.Minute)

		// state consumed
		_, err = st.Users.UserIDByState(ctx, state)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("failed exchange clears pending state", func(t *testing.T) {
		st := newTestStore(t)
		userID := newTestUser(t, st)

		mux := http.NewServeMux()
		mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"object":"error","code":"invalid_grant","message":"bad code"}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		svc := grantServiceFor(st, srv.URL)

		authorizeURL, err := svc.BeginAuthorization(ctx, userID)
		require.NoError(t, err)
		parsed, _ := url.Parse(authorizeURL)
		state := parsed.Query().Get("state")

		_, _, err = svc.CompleteAuthorization(ctx, "bad-code", state)
		require.Error(t, err)

		// a second callback with the same state must not work
		_, _, err = svc.CompleteAuthorization(ctx, "bad-code", state)
		assert.ErrorIs(t, err, ErrInvalidState)

		// no grant was stored
		_, err = svc.Grant(ctx, userID)
		assert.ErrorIs(t, err, ErrNotConnected)
	})
}

func TestEnsureValid(t *testing.T) {
	ctx := context.Background()

	t.Run("not connected", func(t *testing.T) {
		st := newTestStore(t)
		userID := newTestUser(t, st)
		svc := grantServiceFor(st, "https://example.test")

		assert.ErrorIs(t, svc.EnsureValid(ctx, userID), ErrNotConnected)
	})

	t.Run("local expiry clears grant with zero network calls", func(t *testing.T) {
		st := newTestStore(t)
		userID := newTestUser(t, st)

		var requests atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		expired := time.Now().UTC().Add(-time.Hour)
		require.NoError(t, st.Users.SaveGrant(ctx, userID, "tok", "ws", "Acme", expired))

		svc := grantServiceFor(st, srv.URL)

		assert.ErrorIs(t, svc.EnsureValid(ctx, userID), ErrTokenExpired)
		assert.Zero(t, requests.Load())

		// grant is gone now
		assert.ErrorIs(t, svc.EnsureValid(ctx, userID), ErrNotConnected)
	})

	t.Run("provider rejection clears grant", func(t *testing.T) {
		st := newTestStore(t)
		userID := newTestUser(t, st)

		mux := http.NewServeMux()
		mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"object":"error","code":"unauthorized","message":"token revoked"}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		future := time.Now().UTC().Add(time.Hour)
		require.NoError(t, st.Users.SaveGrant(ctx, userID, "tok", "ws", "Acme", future))

		svc := grantServiceFor(st, srv.URL)

		assert.ErrorIs(t, svc.EnsureValid(ctx, userID), ErrTokenInvalid)
		_, err := svc.Grant(ctx, userID)
		assert.ErrorIs(t, err, ErrNotConnected)
	})

	t.Run("transient probe failure fails open", func(t *testing.T) {
		st := newTestStore(t)
		userID := newTestUser(t, st)

		mux := http.NewServeMux()
		mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"object":"error","message":"upstream"}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		future := time.Now().UTC().Add(time.Hour)
		require.NoError(t, st.Users.SaveGrant(ctx, userID, "tok", "ws", "Acme", future))

		svc := grantServiceFor(st, srv.URL)

		assert.NoError(t, svc.EnsureValid(ctx, userID))

		// grant survives
		grant, err := svc.Grant(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "tok", grant.AccessToken)
	})

	t.Run("probe is memoized", func(t *testing.T) {
		st := newTestStore(t)
		userID := newTestUser(t, st)

		var probes atomic.Int64
		mux := http.NewServeMux()
		mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
			probes.Add(1)
			w.Write([]byte(`{"object":"user","id":"bot-1"}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		future := time.Now().UTC().Add(time.Hour)
		require.NoError(t, st.Users.SaveGrant(ctx, userID, "tok", "ws", "Acme", future))

		svc := grantServiceFor(st, srv.URL)

		require.NoError(t, svc.EnsureValid(ctx, userID))
		require.NoError(t, svc.EnsureValid(ctx, userID))
		require.NoError(t, svc.EnsureValid(ctx, userID))
		assert.Equal(t, int64(1), probes.Load())
	})
}

func TestValidToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	userID := newTestUser(t, st)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"object":"user","id":"bot-1"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc := grantServiceFor(st, srv.URL)

	_, err := svc.ValidToken(ctx, userID)
	assert.ErrorIs(t, err, ErrNotConnected)

	future := time.Now().UTC().Add(time.Hour)
	require.NoError(t, st.Users.SaveGrant(ctx, userID, "tok", "ws", "Acme", future))

	token, err := svc.ValidToken(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
}

func TestDisconnect_Idempotent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	userID := newTestUser(t, st)

	svc := grantServiceFor(st, "https://example.test")

	future := time.Now().UTC().Add(time.Hour)
	require.NoError(t, st.Users.SaveGrant(ctx, userID, "tok", "ws", "Acme", future))

	require.NoError(t, svc.Disconnect(ctx, userID))
	require.NoError(t, svc.Disconnect(ctx, userID))

	_, err := svc.Grant(ctx, userID)
	assert.ErrorIs(t, err, ErrNotConnected)
}
