package config

import (
	"flag"
	"io"
	"os"

	"github.com/Silas-Hakuzwimana/streamforge/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":5000")
//	-g string     gRPC bind address (e.g., ":50051")
//	-d string     PostgreSQL DSN
//	-r string     Redis address for one-time codes
//	-s string     JWT HMAC secret
//	-t duration   session lifetime (e.g., "1h")
//	-f string     frontend URL
//	-l string     log level
//	-m            keep all state in memory (development)
//	-prod         production mode
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-r", "-s", "-t", "-f", "-l", "-m", "-prod"})

	fs := flag.NewFlagSet("streamforge", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "http address and port")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "grpc address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address for one-time codes")
	fs.StringVar(&config.JWTSecret, "s", config.JWTSecret, "jwt secret")
	fs.DurationVar(&config.SessionTTL, "t", config.SessionTTL, "session lifetime")
	fs.StringVar(&config.FrontendURL, "f", config.FrontendURL, "frontend url")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.InMemory, "m", config.InMemory, "in-memory storage")
	fs.BoolVar(&config.Production, "prod", config.Production, "production mode")

	return fs.Parse(args)
}
