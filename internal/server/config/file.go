package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/Silas-Hakuzwimana/streamforge/internal/flagx"
	"github.com/Silas-Hakuzwimana/streamforge/internal/timex"
)

// FileConfig is the on-disk shape of the configuration. Durations accept
// "10m" style strings (and integer nanoseconds in JSON). Only fields present
// in the file override the current values.
type FileConfig struct {
	HTTPAddr    string `json:"http_addr" toml:"http_addr"`
	GRPCAddr    string `json:"grpc_addr" toml:"grpc_addr"`
	DatabaseDSN string `json:"database_dsn" toml:"database_dsn"`
	InMemory    *bool  `json:"in_memory" toml:"in_memory"`
	RedisAddr   string `json:"redis_addr" toml:"redis_addr"`

	JWTSecret  string         `json:"jwt_secret" toml:"jwt_secret"`
	JWTIssuer  string         `json:"jwt_issuer" toml:"jwt_issuer"`
	SessionTTL timex.Duration `json:"session_ttl" toml:"session_ttl"`
	OTPTTL     timex.Duration `json:"otp_ttl" toml:"otp_ttl"`
	ResetTTL   timex.Duration `json:"reset_ttl" toml:"reset_ttl"`

	FrontendURL             string `json:"frontend_url" toml:"frontend_url"`
	Production              *bool  `json:"production" toml:"production"`
	HideUnknownEmailOnReset *bool  `json:"hide_unknown_email_on_reset" toml:"hide_unknown_email_on_reset"`

	RepoTimeout     timex.Duration `json:"repo_timeout" toml:"repo_timeout"`
	NotifyTimeout   timex.Duration `json:"notify_timeout" toml:"notify_timeout"`
	SweepInterval   timex.Duration `json:"sweep_interval" toml:"sweep_interval"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout" toml:"shutdown_timeout"`
	LogLevel        string         `json:"log_level" toml:"log_level"`

	SMTPHost     string `json:"smtp_host" toml:"smtp_host"`
	SMTPPort     int    `json:"smtp_port" toml:"smtp_port"`
	SMTPUser     string `json:"smtp_user" toml:"smtp_user"`
	SMTPPassword string `json:"smtp_password" toml:"smtp_password"`
	MailFrom     string `json:"mail_from" toml:"mail_from"`

	S3AccessKey    string `json:"s3_access_key" toml:"s3_access_key"`
	S3SecretKey    string `json:"s3_secret_key" toml:"s3_secret_key"`
	S3Bucket       string `json:"s3_bucket" toml:"s3_bucket"`
	S3Region       string `json:"s3_region" toml:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint" toml:"s3_base_endpoint"`
}

// parseFile loads the file named by -c/-config, if any, into config. Files
// ending in .toml are decoded as TOML, everything else as JSON.
func parseFile(config *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	fc := &FileConfig{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, fc)
	} else {
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	fc.apply(config)
	return nil
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.HTTPAddr, fc.HTTPAddr)
	setString(&c.GRPCAddr, fc.GRPCAddr)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setBool(&c.InMemory, fc.InMemory)
	setString(&c.RedisAddr, fc.RedisAddr)

	setString(&c.JWTSecret, fc.JWTSecret)
	setString(&c.JWTIssuer, fc.JWTIssuer)
	setDuration(&c.SessionTTL, fc.SessionTTL)
	setDuration(&c.OTPTTL, fc.OTPTTL)
	setDuration(&c.ResetTTL, fc.ResetTTL)

	setString(&c.FrontendURL, fc.FrontendURL)
	setBool(&c.Production, fc.Production)
	setBool(&c.HideUnknownEmailOnReset, fc.HideUnknownEmailOnReset)

	setDuration(&c.RepoTimeout, fc.RepoTimeout)
	setDuration(&c.NotifyTimeout, fc.NotifyTimeout)
	setDuration(&c.SweepInterval, fc.SweepInterval)
	setDuration(&c.ShutdownTimeout, fc.ShutdownTimeout)
	setString(&c.LogLevel, fc.LogLevel)

	setString(&c.SMTPHost, fc.SMTPHost)
	if fc.SMTPPort != 0 {
		c.SMTPPort = fc.SMTPPort
	}
	setString(&c.SMTPUser, fc.SMTPUser)
	setString(&c.SMTPPassword, fc.SMTPPassword)
	setString(&c.MailFrom, fc.MailFrom)

	setString(&c.S3AccessKey, fc.S3AccessKey)
	setString(&c.S3SecretKey, fc.S3SecretKey)
	setString(&c.S3Bucket, fc.S3Bucket)
	setString(&c.S3Region, fc.S3Region)
	setString(&c.S3BaseEndpoint, fc.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
