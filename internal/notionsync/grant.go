package notionsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/nretro/retrosync/internal/notionsdk"
	"github.com/nretro/retrosync/internal/store"
)

const (
	// grantValidity is the local re-validation horizon. The provider does
	// not expire tokens itself; after this window the grant is treated as
	// stale and the user re-authorizes.
	grantValidity = 30 * 24 * time.Hour

	// probeCacheTTL bounds how often EnsureValid hits the network for the
	// same token. A token validated this recently is assumed still good.
	probeCacheTTL = 5 * time.Minute
)

// GrantStore is the persistence the grant lifecycle needs. Implemented by
// store.UserStore.
type GrantStore interface {
	ByID(ctx context.Context, id int64) (*store.User, error)
	SetPendingState(ctx context.Context, userID int64, state string) error
	UserIDByState(ctx context.Context, state string) (int64, error)
	SaveGrant(ctx context.Context, userID int64, accessToken, workspaceID, workspaceName string, expiresAt time.Time) error
	ClearGrant(ctx context.Context, userID int64) error
	ClearPendingState(ctx context.Context, userID int64) error
}

// Grant is the stored authorization permitting workspace API calls on a
// user's behalf.
type Grant struct {
	AccessToken   string
	WorkspaceID   string
	WorkspaceName string
	ExpiresAt     *time.Time
}

// GrantService owns the authorization-code handshake and the lifetime of
// the resulting grant.
type GrantService struct {
	store   GrantStore
	oauth   *notionsdk.OAuthConfig
	sdkOpts []notionsdk.Option
	probes  *expirable.LRU[string, struct{}]
}

// GrantOption configures the GrantService.
type GrantOption func(*GrantService)

// WithSDKOptions forwards options to every workspace client the service
// constructs. Used by tests to point at a local server.
func WithSDKOptions(opts ...notionsdk.Option) GrantOption {
	return func(s *GrantService) {
		s.sdkOpts = opts
	}
}

func NewGrantService(grants GrantStore, oauth *notionsdk.OAuthConfig, opts ...GrantOption) *GrantService {
	s := &GrantService{
		store:  grants,
		oauth:  oauth,
		probes: expirable.NewLRU[string, struct{}](0, nil, probeCacheTTL), // 0 = LRU off
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BeginAuthorization starts the handshake: generates a fresh nonce, stores
// it as the user's pending state and returns the provider's authorization
// URL parameterized with it.
func (s *GrantService) BeginAuthorization(ctx context.Context, userID int64) (string, error) {
	if s.oauth.ClientID == "" {
		return "", ErrNotConfigured
	}

	state := uuid.NewString()
	if err := s.store.SetPendingState(ctx, userID, state); err != nil {
		return "", fmt.Errorf("store pending state: %w", err)
	}

	url, err := notionsdk.AuthorizeURL(s.oauth, state)
	if err != nil {
		return "", ErrNotConfigured
	}
	return url, nil
}

// CompleteAuthorization finishes the handshake from the public callback.
// The state nonce must match an outstanding authorization; successful or
// failed exchange both clear the pending state.
func (s *GrantService) CompleteAuthorization(ctx context.Context, code, state string) (int64, *Grant, error) {
	userID, err := s.store.UserIDByState(ctx, state)
	if errors.Is(err, store.ErrNotFound) {
		slog.Warn("oauth callback with unknown state", "state", state)
		return 0, nil, ErrInvalidState
	}
	if err != nil {
		return 0, nil, fmt.Errorf("lookup pending state: %w", err)
	}

	token, err := notionsdk.ExchangeCode(ctx, s.oauth, code)
	if err != nil {
		if clearErr := s.store.ClearPendingState(ctx, userID); clearErr != nil {
			slog.Error("clear pending state", "user", userID, "error", clearErr)
		}
		return 0, nil, fmt.Errorf("exchange code: %w", err)
	}

	expiresAt := time.Now().UTC().Add(grantValidity)
	if err := s.store.SaveGrant(ctx, userID, token.AccessToken, token.WorkspaceID, token.WorkspaceName, expiresAt); err != nil {
		return 0, nil, fmt.Errorf("save grant: %w", err)
	}

	slog.Info("workspace connected", "user", userID, "workspace", token.WorkspaceName)
	return userID, &Grant{
		AccessToken:   token.AccessToken,
		WorkspaceID:   token.WorkspaceID,
		WorkspaceName: token.WorkspaceName,
		ExpiresAt:     &expiresAt,
	}, nil
}

// Grant returns the stored grant without any validation side effects.
func (s *GrantService) Grant(ctx context.Context, userID int64) (*Grant, error) {
	user, err := s.store.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.NotionAccessToken == "" {
		return nil, ErrNotConnected
	}

	g := &Grant{
		AccessToken:   user.NotionAccessToken,
		WorkspaceID:   user.NotionWorkspaceID,
		WorkspaceName: user.NotionWorkspaceName,
	}
	if user.NotionExpiresAt.Valid {
		t := user.NotionExpiresAt.Time
		g.ExpiresAt = &t
	}
	return g, nil
}

// EnsureValid checks the grant without handing it out. A passed local
// expiry clears the grant with zero network calls. Otherwise one probe is
// made (memoized for probeCacheTTL); a 401/403 clears the grant, any other
// failure is treated as still valid to avoid false disconnects from
// transient network issues.
func (s *GrantService) EnsureValid(ctx context.Context, userID int64) error {
	grant, err := s.Grant(ctx, userID)
	if err != nil {
		return err
	}

	if grant.ExpiresAt != nil && grant.ExpiresAt.Before(time.Now()) {
		if err := s.store.ClearGrant(ctx, userID); err != nil {
			return fmt.Errorf("clear expired grant: %w", err)
		}
		slog.Info("workspace grant expired", "user", userID)
		return ErrTokenExpired
	}

	if _, ok := s.probes.Get(grant.AccessToken); ok {
		return nil
	}

	sdk := notionsdk.New(grant.AccessToken, s.sdkOpts...)
	defer sdk.Close()

	if _, err := sdk.Me(ctx); err != nil {
		if notionsdk.IsUnauthorized(err) {
			if clearErr := s.store.ClearGrant(ctx, userID); clearErr != nil {
				return fmt.Errorf("clear invalid grant: %w", clearErr)
			}
			slog.Info("workspace grant rejected by provider", "user", userID)
			return ErrTokenInvalid
		}
		// fail open on transient errors
		slog.Warn("token validation probe failed, assuming still valid", "user", userID, "error", err)
		return nil
	}

	s.probes.Add(grant.AccessToken, struct{}{})
	return nil
}

// ValidToken validates the grant and returns its access token.
func (s *GrantService) ValidToken(ctx context.Context, userID int64) (string, error) {
	if err := s.EnsureValid(ctx, userID); err != nil {
		return "", err
	}
	grant, err := s.Grant(ctx, userID)
	if err != nil {
		return "", err
	}
	return grant.AccessToken, nil
}

// Disconnect clears all grant fields, keeping the user row. Idempotent.
func (s *GrantService) Disconnect(ctx context.Context, userID int64) error {
	return s.store.ClearGrant(ctx, userID)
}
