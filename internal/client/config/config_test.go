package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	orig := userConfigDir
	t.Cleanup(func() { userConfigDir = orig })

	userConfigDir = func() (string, error) { return "/home/me/.config", nil }
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, 15*time.Second, c.Timeout)
	assert.Equal(t, filepath.Join("/home/me/.config", "streamforge", "session.json"), c.SessionFile)

	userConfigDir = func() (string, error) { return "", errors.New("no home") }
	c.LoadDefaults()
	assert.Equal(t, ".streamforge-session.json", c.SessionFile)
}

func TestLoadConfig_NoFile(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:50051", cfg.ServerEndpointAddr)
}
