package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/nretro/retrosync/internal/store"
)

// AuthService issues and validates JWT session tokens backed by
// bcrypt-hashed credentials in the user store.
type AuthService struct {
	config *Config
	users  *store.UserStore
}

func NewAuthService(config *Config, users *store.UserStore) *AuthService {
	return &AuthService{
		config: config,
		users:  users,
	}
}

// Register creates a user account and returns a fresh token pair.
func (s *AuthService) Register(ctx context.Context, email, password string) (string, string, error) {
	if _, err := s.users.ByEmail(ctx, email); err == nil {
		return "", "", ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.users.Create(ctx, email, string(hash))
	if err != nil {
		return "", "", err
	}

	return generateTokenPair(strconv.FormatInt(userID, 10), s.config)
}

// Login verifies credentials and returns a fresh token pair. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, string, error) {
	user, err := s.users.ByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", "", ErrInvalidCredentials
	}
	if err != nil {
		return "", "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", ErrInvalidCredentials
	}

	return generateTokenPair(strconv.FormatInt(user.ID, 10), s.config)
}

// RefreshToken rotates a refresh token into a new pair.
func (s *AuthService) RefreshToken(ctx context.Context, oldRefreshToken string) (string, string, error) {
	if oldRefreshToken == "" {
		return "", "", ErrInvalidRequestToken
	}

	claims, err := s.ValidateRefreshToken(ctx, oldRefreshToken)
	if err != nil {
		return "", "", fmt.Errorf("failed to refresh token pair: %w", err)
	}

	return generateTokenPair(claims.Subject, s.config)
}

// ValidateAccessToken parses an access token and returns the user id it
// was issued for.
func (s *AuthService) ValidateAccessToken(ctx context.Context, accessToken string) (int64, error) {
	if accessToken == "" {
		return 0, fmt.Errorf("invalid access token")
	}

	claims, err := ParseClaims(accessToken, s.config.AccessTokenSecret)
	if err != nil {
		return 0, fmt.Errorf("invalid access token: %w", err)
	}

	if claims.Type != AccessToken {
		return 0, fmt.Errorf("invalid access token: wrong token type got %q", claims.Type)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid access token subject: %w", err)
	}

	return userID, nil
}

func (s *AuthService) ValidateRefreshToken(ctx context.Context, refreshToken string) (*Claims, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("invalid refresh token")
	}

	claims, err := ParseClaims(refreshToken, s.config.RefreshTokenSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	if claims.Type != RefreshToken {
		return nil, fmt.Errorf("invalid refresh token: wrong token type got %q", claims.Type)
	}

	return claims, nil
}
