// Package config loads runtime configuration for the Keyfold CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   path to the vault database file
//	-n int      wrong code submissions allowed before cooldown
//	-s int      session validity (minutes)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "10m" or integer nanoseconds:
//
//	{
//	  "database_dsn": "keyfold.db",
//	  "issuer": "Keyfold",
//	  "email_code_ttl": "10m",
//	  "max_code_attempts": 5,
//	  "attempt_cooldown": "1m",
//	  "session_ttl": "12h",
//	  "min_password_len": 8,
//	  "totp_digits": 6,
//	  "totp_period": 30,
//	  "totp_skew": 1,
//	  "smtp_host": "smtp.example.com",
//	  "smtp_port": "587",
//	  "smtp_from": "vault@example.com",
//	  "smtp_security": "starttls"
//	}
//
// Primary API
//
//   - type Config                     — holds the vault, ceremony and mail settings
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
