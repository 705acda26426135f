package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the StreamForge CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - Timeout: bound on each remote call.
//   - SessionFile: where the session token is kept between invocations.
type Config struct {
	ServerEndpointAddr string
	Timeout            time.Duration
	SessionFile        string
}

// userConfigDir is a seam for os.UserConfigDir.
var userConfigDir = os.UserConfigDir

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.Timeout = 15 * time.Second
	if dir, err := userConfigDir(); err == nil {
		c.SessionFile = filepath.Join(dir, "streamforge", "session.json")
	} else {
		c.SessionFile = ".streamforge-session.json"
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the JSON file at path when path is not empty.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if path == "" {
		return cfg, nil
	}
	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}
