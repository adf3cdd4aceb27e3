package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nretro/retrosync/internal/server"
)

func loadInto(t *testing.T) *server.Config {
	t.Helper()
	viper.Reset()
	require.NoError(t, loadConfig(rootCmd))

	cfg := &server.Config{}
	require.NoError(t, viper.Unmarshal(cfg))
	return cfg
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("RETROSYNC_HTTP_ADDR", ":8080")
	t.Setenv("RETROSYNC_HTTP_CERT_FILE", "test-cert.pem")
	t.Setenv("RETROSYNC_HTTP_KEY_FILE", "test-key.pem")
	t.Setenv("RETROSYNC_DB_PATH", "test.db")

	t.Setenv("RETROSYNC_AUTH_TOKEN_ISSUER", "test-issuer")
	t.Setenv("RETROSYNC_AUTH_ACCESS_TOKEN_SECRET", "test-access-secret")
	t.Setenv("RETROSYNC_AUTH_ACCESS_TOKEN_EXPIRY", "1h")
	t.Setenv("RETROSYNC_AUTH_REFRESH_TOKEN_SECRET", "test-refresh-secret")
	t.Setenv("RETROSYNC_AUTH_REFRESH_TOKEN_EXPIRY", "1h")

	t.Setenv("RETROSYNC_NOTION_CLIENT_ID", "test-client-id")
	t.Setenv("RETROSYNC_NOTION_CLIENT_SECRET", "test-client-secret")
	t.Setenv("RETROSYNC_NOTION_REDIRECT_URI", "http://localhost/notion/callback")

	cfg := loadInto(t)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "test-cert.pem", cfg.HTTP.CertFile)
	assert.Equal(t, "test-key.pem", cfg.HTTP.KeyFile)
	assert.Equal(t, "test.db", cfg.DBPath)
	assert.Equal(t, "test-issuer", cfg.Auth.TokenIssuer)
	assert.Equal(t, "test-access-secret", cfg.Auth.AccessTokenSecret)
	assert.Equal(t, 1*time.Hour, cfg.Auth.AccessTokenExpiry)
	assert.Equal(t, "test-refresh-secret", cfg.Auth.RefreshTokenSecret)
	assert.Equal(t, 1*time.Hour, cfg.Auth.RefreshTokenExpiry)
	assert.Equal(t, "test-client-id", cfg.Notion.ClientID)
	assert.Equal(t, "test-client-secret", cfg.Notion.ClientSecret)
	assert.Equal(t, "http://localhost/notion/callback", cfg.Notion.RedirectURI)
}

func TestLoadConfigYAML(t *testing.T) {
	dummyConfig := `
http:
  addr: localhost:38080
  cert_file: test-cert.pem
  key_file: test-key.pem

db_path: data/test.db

auth:
  token_issuer: test-issuer
  access_token_secret: test-access-secret
  access_token_expiry: 1h
  refresh_token_secret: test-refresh-secret
  refresh_token_expiry: 1h

notion:
  client_id: test-client-id
  client_secret: test-client-secret
  redirect_uri: http://localhost/notion/callback
`
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "retrosync.yaml"), []byte(dummyConfig), 0o644))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(cwd) })

	cfg := loadInto(t)

	assert.Equal(t, "localhost:38080", cfg.HTTP.Addr)
	assert.Equal(t, "test-cert.pem", cfg.HTTP.CertFile)
	assert.Equal(t, "test-key.pem", cfg.HTTP.KeyFile)
	assert.Equal(t, "data/test.db", cfg.DBPath)
	assert.Equal(t, "test-issuer", cfg.Auth.TokenIssuer)
	assert.Equal(t, "test-access-secret", cfg.Auth.AccessTokenSecret)
	assert.Equal(t, "test-client-id", cfg.Notion.ClientID)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("RETROSYNC_AUTH_ACCESS_TOKEN_SECRET", "a")
	t.Setenv("RETROSYNC_AUTH_REFRESH_TOKEN_SECRET", "r")

	cfg := loadInto(t)

	assert.Equal(t, "retrosync", cfg.Auth.TokenIssuer)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenExpiry)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.RefreshTokenExpiry)
}
