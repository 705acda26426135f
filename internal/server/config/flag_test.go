package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"streamforge",
				"-a", "127.0.0.1:5000", "-g", ":6000", "-d", "db", "-r", "redis:6379",
				"-s", "secret", "-t", "30m", "-f", "https://app.example", "-l", "debug", "-m", "-prod",
			},
			expected: &Config{
				HTTPAddr:    "127.0.0.1:5000",
				GRPCAddr:    ":6000",
				DatabaseDSN: "db",
				RedisAddr:   "redis:6379",
				JWTSecret:   "secret",
				SessionTTL:  30 * time.Minute,
				FrontendURL: "https://app.example",
				LogLevel:    "debug",
				InMemory:    true,
				Production:  true,
			},
		},
		{
			name:     "foreign flags ignored",
			args:     []string{"streamforge", "-c", "server.toml", "-x", "1"},
			expected: &Config{},
		},
		{
			name:    "bad duration",
			args:    []string{"streamforge", "-t", "forever"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}
			err := parseFlags(config)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
