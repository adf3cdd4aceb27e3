package server

import (
	"fmt"

	"github.com/nretro/retrosync/internal/notionsdk"
	"github.com/nretro/retrosync/internal/server/auth"
)

const DefaultAddr = "127.0.0.1:8080"

type Config struct {
	HTTP   HTTPConfig            `mapstructure:"http"`
	DBPath string                `mapstructure:"db_path"`
	Auth   auth.Config           `mapstructure:"auth"`
	Notion notionsdk.OAuthConfig `mapstructure:"notion"`
}

type HTTPConfig struct {
	Addr     string `mapstructure:"addr"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultAddr
	}
	if c.DBPath == "" {
		return fmt.Errorf("`db_path` is required")
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	// workspace credentials may be absent; the connect endpoints report
	// not-configured at request time
	return nil
}
