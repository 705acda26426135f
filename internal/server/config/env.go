package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Silas-Hakuzwimana/streamforge/internal/flagx"
	"github.com/Silas-Hakuzwimana/streamforge/internal/timex"
)

// parseEnv overlays environment variables. Each setting reads its
// STREAMFORGE_ name first and then the plain name used by the original
// Node deployment (PORT, JWT_SECRET, EMAIL_USER, ...), so existing .env files
// keep working.
func parseEnv(c *Config) error {
	if v, ok := flagx.LookupEnv("STREAMFORGE_HTTP_ADDR"); ok {
		c.HTTPAddr = v
	} else if v, ok := flagx.LookupEnv("PORT"); ok {
		c.HTTPAddr = ":" + strings.TrimPrefix(v, ":")
	}
	envString(&c.GRPCAddr, "STREAMFORGE_GRPC_ADDR")
	envString(&c.DatabaseDSN, "STREAMFORGE_DATABASE_DSN", "DATABASE_URL")
	envBool(&c.InMemory, "STREAMFORGE_IN_MEMORY")
	envString(&c.RedisAddr, "STREAMFORGE_REDIS_ADDR", "REDIS_ADDR")

	envString(&c.JWTSecret, "STREAMFORGE_JWT_SECRET", "JWT_SECRET")
	envString(&c.JWTIssuer, "STREAMFORGE_JWT_ISSUER")
	if err := envDuration(&c.SessionTTL, "STREAMFORGE_SESSION_TTL", "JWT_EXPIRES"); err != nil {
		return err
	}
	if err := envDuration(&c.OTPTTL, "STREAMFORGE_OTP_TTL"); err != nil {
		return err
	}
	if err := envDuration(&c.ResetTTL, "STREAMFORGE_RESET_TTL"); err != nil {
		return err
	}

	envString(&c.FrontendURL, "STREAMFORGE_FRONTEND_URL", "FRONTEND_URL")
	if v, ok := flagx.LookupEnv("STREAMFORGE_PRODUCTION"); ok {
		c.Production, _ = strconv.ParseBool(v)
	} else if v, ok := flagx.LookupEnv("NODE_ENV"); ok {
		c.Production = v == "production"
	}
	envBool(&c.HideUnknownEmailOnReset, "STREAMFORGE_HIDE_UNKNOWN_EMAIL_ON_RESET")

	if err := envDuration(&c.RepoTimeout, "STREAMFORGE_REPO_TIMEOUT"); err != nil {
		return err
	}
	if err := envDuration(&c.NotifyTimeout, "STREAMFORGE_NOTIFY_TIMEOUT"); err != nil {
		return err
	}
	if err := envDuration(&c.SweepInterval, "STREAMFORGE_SWEEP_INTERVAL"); err != nil {
		return err
	}
	if err := envDuration(&c.ShutdownTimeout, "STREAMFORGE_SHUTDOWN_TIMEOUT"); err != nil {
		return err
	}
	envString(&c.LogLevel, "STREAMFORGE_LOG_LEVEL", "LOG_LEVEL")

	envString(&c.SMTPHost, "STREAMFORGE_SMTP_HOST", "EMAIL_HOST")
	if v, ok := flagx.LookupEnv("STREAMFORGE_SMTP_PORT", "EMAIL_PORT"); ok {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid smtp port %q: %w", v, err)
		}
		c.SMTPPort = p
	}
	envString(&c.SMTPUser, "STREAMFORGE_SMTP_USER", "EMAIL_USER")
	envString(&c.SMTPPassword, "STREAMFORGE_SMTP_PASSWORD", "EMAIL_PASS")
	envString(&c.MailFrom, "STREAMFORGE_MAIL_FROM", "EMAIL_FROM")

	envString(&c.S3AccessKey, "STREAMFORGE_S3_ACCESS_KEY", "AWS_ACCESS_KEY_ID")
	envString(&c.S3SecretKey, "STREAMFORGE_S3_SECRET_KEY", "AWS_SECRET_ACCESS_KEY")
	envString(&c.S3Bucket, "STREAMFORGE_S3_BUCKET")
	envString(&c.S3Region, "STREAMFORGE_S3_REGION", "AWS_REGION")
	envString(&c.S3BaseEndpoint, "STREAMFORGE_S3_ENDPOINT")

	return nil
}

func envString(dst *string, names ...string) {
	if v, ok := flagx.LookupEnv(names...); ok {
		*dst = v
	}
}

func envBool(dst *bool, names ...string) {
	if v, ok := flagx.EnvBool(names...); ok {
		*dst = v
	}
}

func envDuration(dst *time.Duration, names ...string) error {
	v, ok := flagx.LookupEnv(names...)
	if !ok {
		return nil
	}
	d, err := timex.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid duration in %s: %w", names[0], err)
	}
	*dst = d
	return nil
}
