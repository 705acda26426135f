package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Silas-Hakuzwimana/streamforge/internal/common"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":5000", c.HTTPAddr)
	assert.Equal(t, ":50051", c.GRPCAddr)
	assert.Equal(t, "streamforge", c.JWTIssuer)
	assert.Empty(t, c.JWTSecret)
	assert.Equal(t, time.Hour, c.SessionTTL)
	assert.Equal(t, 10*time.Minute, c.OTPTTL)
	assert.Equal(t, time.Hour, c.ResetTTL)
	assert.Equal(t, "http://localhost:5173", c.FrontendURL)
	assert.Equal(t, 5*time.Minute, c.SweepInterval)
	assert.Equal(t, 587, c.SMTPPort)
	assert.False(t, c.Production)
	assert.False(t, c.HideUnknownEmailOnReset)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.LoadDefaults()
		c.JWTSecret = "s3cr3t"
		return c
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing secret", func(c *Config) { c.JWTSecret = "  " }},
		{"no listeners", func(c *Config) { c.HTTPAddr, c.GRPCAddr = "", "" }},
		{"no dsn", func(c *Config) { c.DatabaseDSN = "" }},
		{"zero otp ttl", func(c *Config) { c.OTPTTL = 0 }},
		{"negative sweep", func(c *Config) { c.SweepInterval = -time.Second }},
		{"relative frontend", func(c *Config) { c.FrontendURL = "/app" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrConfig)
			assert.Equal(t, common.KindConfig, common.KindOf(err))
		})
	}

	t.Run("in-memory needs no dsn", func(t *testing.T) {
		c := valid()
		c.DatabaseDSN = ""
		c.InMemory = true
		assert.NoError(t, c.Validate())
	})
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempFile(t, "server.json", `{"jwt_secret":"from-file","http_addr":":7000","otp_ttl":"5m"}`)

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("FRONTEND_URL", "https://streamforge.example")

	os.Args = []string{"streamforge", "-c", path, "-a", ":8000"}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWTSecret, "env overrides file")
	assert.Equal(t, ":8000", cfg.HTTPAddr, "flags override file")
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL, "file overrides defaults")
	assert.Equal(t, "https://streamforge.example", cfg.FrontendURL)
}

func TestLoadConfig_MissingSecretFails(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"streamforge"}
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STREAMFORGE_JWT_SECRET", "")

	_, err := LoadConfig()
	assert.ErrorIs(t, err, common.ErrConfig)
}
