package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func Test_parseFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("loads json", func(t *testing.T) {
		path := writeTempFile(t, "server.json", `{
			"http_addr": ":9000",
			"database_dsn": "postgres://db/streamforge",
			"jwt_secret": "json-secret",
			"session_ttl": "2h",
			"reset_ttl": 1800000000000,
			"production": true,
			"smtp_port": 2525,
			"s3_bucket": "media"
		}`)
		os.Args = []string{"streamforge", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseFile(cfg))

		assert.Equal(t, ":9000", cfg.HTTPAddr)
		assert.Equal(t, "postgres://db/streamforge", cfg.DatabaseDSN)
		assert.Equal(t, "json-secret", cfg.JWTSecret)
		assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
		assert.Equal(t, 30*time.Minute, cfg.ResetTTL)
		assert.True(t, cfg.Production)
		assert.Equal(t, 2525, cfg.SMTPPort)
		assert.Equal(t, "media", cfg.S3Bucket)
		assert.Equal(t, ":50051", cfg.GRPCAddr, "absent keys keep defaults")
	})

	t.Run("loads toml", func(t *testing.T) {
		path := writeTempFile(t, "server.toml", `
grpc_addr = ":6000"
jwt_secret = "toml-secret"
sweep_interval = "1m"
hide_unknown_email_on_reset = true
redis_addr = "localhost:6379"
`)
		os.Args = []string{"streamforge", "-c", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseFile(cfg))

		assert.Equal(t, ":6000", cfg.GRPCAddr)
		assert.Equal(t, "toml-secret", cfg.JWTSecret)
		assert.Equal(t, time.Minute, cfg.SweepInterval)
		assert.True(t, cfg.HideUnknownEmailOnReset)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	})

	t.Run("no file -> no changes", func(t *testing.T) {
		os.Args = []string{"streamforge"}

		cfg := &Config{HTTPAddr: ":1234"}
		require.NoError(t, parseFile(cfg))
		assert.Equal(t, ":1234", cfg.HTTPAddr)
	})

	t.Run("invalid json -> error", func(t *testing.T) {
		path := writeTempFile(t, "bad.json", `{ this is not valid json`)
		os.Args = []string{"streamforge", "-config", path}

		assert.Error(t, parseFile(&Config{}))
	})

	t.Run("missing file -> error", func(t *testing.T) {
		os.Args = []string{"streamforge", "-config", filepath.Join(t.TempDir(), "nope.json")}

		assert.Error(t, parseFile(&Config{}))
	})
}
