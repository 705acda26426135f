// Package config loads runtime configuration for the StreamForge CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) passed with --config.
//  3. Command-line flags handled by the cli package, which override earlier values.
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so values can be
// either strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "timeout": "15s",
//	  "session_file": "/home/me/.config/streamforge/session.json"
//	}
package config
