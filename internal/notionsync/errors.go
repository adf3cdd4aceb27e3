package notionsync

import "errors"

var (
	// ErrNotConfigured means the integration credentials are missing.
	// Fatal for the operator, not retryable.
	ErrNotConfigured = errors.New("notion: integration credentials not configured")

	// ErrNotConnected means the user has no workspace grant. Expected;
	// callers surface it as a "connect first" condition.
	ErrNotConnected = errors.New("notion: workspace not connected")

	// ErrInvalidState means the OAuth callback carried a nonce that
	// matches no outstanding authorization. Security-relevant rejection.
	ErrInvalidState = errors.New("notion: invalid oauth state")

	// ErrTokenExpired means the local validation horizon passed. The
	// grant has already been cleared when this is returned.
	ErrTokenExpired = errors.New("notion: token expired")

	// ErrTokenInvalid means the remote API rejected the token. The
	// grant has already been cleared when this is returned.
	ErrTokenInvalid = errors.New("notion: token invalid")
)
