package config

import "time"

// Config holds runtime settings for the Keyfold CLI.
//
// Fields:
//   - DatabaseDSN: path to the SQLite file holding the encrypted vault.
//   - Issuer: label embedded in otpauth provisioning URIs and session tokens.
//   - EmailCodeTTL: how long an emailed verification code stays valid.
//   - MaxCodeAttempts: wrong code submissions tolerated before the cooldown.
//   - AttemptCooldown: pause before code submissions are accepted again.
//   - SessionTTL: validity of issued session tokens.
//   - MinPasswordLen: minimum master password length accepted at signup.
//   - TOTPDigits, TOTPPeriod, TOTPSkew: authenticator code length, time-step
//     size in seconds and accepted steps of clock drift. Zero values fall
//     back to the defaults; changing them breaks already-enrolled
//     authenticators.
//   - SMTP*: outgoing mail relay settings; with no host configured the
//     verification codes are printed to the terminal instead.
//
// Units: duration fields are time.Duration (e.g., 10*time.Minute).
type Config struct {
	DatabaseDSN     string
	Issuer          string
	EmailCodeTTL    time.Duration
	MaxCodeAttempts int
	AttemptCooldown time.Duration
	SessionTTL      time.Duration
	MinPasswordLen  int
	TOTPDigits      int
	TOTPPeriod      int
	TOTPSkew        int
	SMTPHost        string
	SMTPPort        string
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
	SMTPSecurity    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "keyfold.db"
	c.Issuer = "Keyfold"
	c.EmailCodeTTL = 10 * time.Minute
	c.MaxCodeAttempts = 5
	c.AttemptCooldown = time.Minute
	c.SessionTTL = 12 * time.Hour
	c.MinPasswordLen = 8
	c.TOTPDigits = 6
	c.TOTPPeriod = 30
	c.TOTPSkew = 1
	c.SMTPPort = "587"
	c.SMTPSecurity = "starttls"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
