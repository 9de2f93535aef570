package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/keyfold/internal/flagx"
	"github.com/dmitrijs2005/keyfold/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "10m" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	DatabaseDSN     string         `json:"database_dsn"`
	Issuer          string         `json:"issuer"`
	EmailCodeTTL    timex.Duration `json:"email_code_ttl"`
	MaxCodeAttempts int            `json:"max_code_attempts"`
	AttemptCooldown timex.Duration `json:"attempt_cooldown"`
	SessionTTL      timex.Duration `json:"session_ttl"`
	MinPasswordLen  int            `json:"min_password_len"`
	TOTPDigits      int            `json:"totp_digits"`
	TOTPPeriod      int            `json:"totp_period"`
	TOTPSkew        int            `json:"totp_skew"`
	SMTPHost        string         `json:"smtp_host"`
	SMTPPort        string         `json:"smtp_port"`
	SMTPUsername    string         `json:"smtp_username"`
	SMTPPassword    string         `json:"smtp_password"`
	SMTPFrom        string         `json:"smtp_from"`
	SMTPSecurity    string         `json:"smtp_security"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Behavior:
//   - Reads and unmarshals the JSON into JsonConfig.
//   - Copies set fields into the provided Config; a partial file only
//     overrides the fields it names, everything else keeps its value.
//   - Panics on read or unmarshal errors (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.Issuer != "" {
		cfg.Issuer = jc.Issuer
	}
	if jc.EmailCodeTTL.Duration != 0 {
		cfg.EmailCodeTTL = jc.EmailCodeTTL.Duration
	}
	if jc.MaxCodeAttempts != 0 {
		cfg.MaxCodeAttempts = jc.MaxCodeAttempts
	}
	if jc.AttemptCooldown.Duration != 0 {
		cfg.AttemptCooldown = jc.AttemptCooldown.Duration
	}
	if jc.SessionTTL.Duration != 0 {
		cfg.SessionTTL = jc.SessionTTL.Duration
	}
	if jc.MinPasswordLen != 0 {
		cfg.MinPasswordLen = jc.MinPasswordLen
	}
	if jc.TOTPDigits != 0 {
		cfg.TOTPDigits = jc.TOTPDigits
	}
	if jc.TOTPPeriod != 0 {
		cfg.TOTPPeriod = jc.TOTPPeriod
	}
	if jc.TOTPSkew != 0 {
		cfg.TOTPSkew = jc.TOTPSkew
	}
	if jc.SMTPHost != "" {
		cfg.SMTPHost = jc.SMTPHost
	}
	if jc.SMTPPort != "" {
		cfg.SMTPPort = jc.SMTPPort
	}
	if jc.SMTPUsername != "" {
		cfg.SMTPUsername = jc.SMTPUsername
	}
	if jc.SMTPPassword != "" {
		cfg.SMTPPassword = jc.SMTPPassword
	}
	if jc.SMTPFrom != "" {
		cfg.SMTPFrom = jc.SMTPFrom
	}
	if jc.SMTPSecurity != "" {
		cfg.SMTPSecurity = jc.SMTPSecurity
	}
}
