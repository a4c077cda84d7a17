package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the jobhound daemon.
type Config struct {
	PollInterval time.Duration
	Cooldown     time.Duration
	PacingDelay  time.Duration
	Parallel     bool
	Keywords     []string
	CVPath       string
	Applicant    ApplicantConfig
	Ledger       LedgerConfig
	Sources      SourcesConfig
	Email        EmailConfig
	HTTP         HTTPConfig
}

// ApplicantConfig holds the signature details used in cover letters.
type ApplicantConfig struct {
	Name  string `yaml:"name"`
	Phone string `yaml:"phone"`
}

// LedgerConfig selects and locates the ledger backend.
type LedgerConfig struct {
	Backend string `yaml:"backend"` // "csv" or "sqlite"
	Path    string `yaml:"path"`
}

// SourcesConfig enables or disables individual upstream boards.
type SourcesConfig struct {
	RemoteOK       SourceConfig `yaml:"remoteok"`
	WeWorkRemotely SourceConfig `yaml:"weworkremotely"`
	Remotive       SourceConfig `yaml:"remotive"`
}

type SourceConfig struct {
	Enabled bool `yaml:"enabled"`
}

// EmailConfig holds the SMTP account. Address and AppPassword are usually
// supplied via ${EMAIL} / ${APP_PASSWORD} env expansion.
type EmailConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Address     string `yaml:"address"`
	AppPassword string `yaml:"app_password"`
	SMTPHost    string `yaml:"smtp_host"`
	SMTPPort    int    `yaml:"smtp_port"`
}

// HTTPConfig controls the shared upstream HTTP behavior.
type HTTPConfig struct {
	Timeout        time.Duration
	RequestsPerSec float64
	Burst          int
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as
// strings).
type rawConfig struct {
	PollInterval string          `yaml:"poll_interval"`
	Cooldown     string          `yaml:"cooldown"`
	PacingDelay  string          `yaml:"pacing_delay"`
	Parallel     bool            `yaml:"parallel"`
	Keywords     []string        `yaml:"keywords"`
	CVPath       string          `yaml:"cv_path"`
	Applicant    ApplicantConfig `yaml:"applicant"`
	Ledger       LedgerConfig    `yaml:"ledger"`
	Sources      SourcesConfig   `yaml:"sources"`
	Email        EmailConfig     `yaml:"email"`
	HTTP         rawHTTPConfig   `yaml:"http"`
}

type rawHTTPConfig struct {
	Timeout        string  `yaml:"timeout"`
	RequestsPerSec float64 `yaml:"requests_per_sec"`
	Burst          int     `yaml:"burst"`
}

// Load reads and parses the YAML config file at path, expands environment
// variables, applies defaults, validates, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables (credentials stay out of the file).
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	interval := 12 * time.Hour
	if raw.PollInterval != "" {
		interval, err = time.ParseDuration(raw.PollInterval)
		if err != nil {
			return nil, fmt.Errorf("parse poll_interval %q: %w", raw.PollInterval, err)
		}
	}

	cooldown := 5 * time.Minute
	if raw.Cooldown != "" {
		cooldown, err = time.ParseDuration(raw.Cooldown)
		if err != nil {
			return nil, fmt.Errorf("parse cooldown %q: %w", raw.Cooldown, err)
		}
	}

	pacing := 2 * time.Second
	if raw.PacingDelay != "" {
		pacing, err = time.ParseDuration(raw.PacingDelay)
		if err != nil {
			return nil, fmt.Errorf("parse pacing_delay %q: %w", raw.PacingDelay, err)
		}
	}

	httpTimeout := 30 * time.Second
	if raw.HTTP.Timeout != "" {
		httpTimeout, err = time.ParseDuration(raw.HTTP.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse http.timeout %q: %w", raw.HTTP.Timeout, err)
		}
	}

	rps := raw.HTTP.RequestsPerSec
	if rps <= 0 {
		rps = 1
	}
	burst := raw.HTTP.Burst
	if burst <= 0 {
		burst = 2
	}

	ledgerBackend := raw.Ledger.Backend
	if ledgerBackend == "" {
		ledgerBackend = "csv"
	}
	ledgerPath := raw.Ledger.Path
	if ledgerPath == "" {
		ledgerPath = "applied_jobs.csv"
	}

	email := raw.Email
	if email.SMTPHost == "" {
		email.SMTPHost = "smtp.gmail.com"
	}
	if email.SMTPPort == 0 {
		email.SMTPPort = 465
	}

	cfg := &Config{
		PollInterval: interval,
		Cooldown:     cooldown,
		PacingDelay:  pacing,
		Parallel:     raw.Parallel,
		Keywords:     raw.Keywords,
		CVPath:       raw.CVPath,
		Applicant:    raw.Applicant,
		Ledger: LedgerConfig{
			Backend: ledgerBackend,
			Path:    ledgerPath,
		},
		Sources: raw.Sources,
		Email:   email,
		HTTP: HTTPConfig{
			Timeout:        httpTimeout,
			RequestsPerSec: rps,
			Burst:          burst,
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %v", cfg.PollInterval)
	}
	if cfg.Cooldown <= 0 {
		return fmt.Errorf("cooldown must be positive, got %v", cfg.Cooldown)
	}
	if cfg.Cooldown >= cfg.PollInterval {
		return fmt.Errorf("cooldown (%v) must be shorter than poll_interval (%v)", cfg.Cooldown, cfg.PollInterval)
	}

	if len(cfg.Keywords) == 0 {
		return fmt.Errorf("at least one keyword is required")
	}

	if !cfg.Sources.RemoteOK.Enabled && !cfg.Sources.WeWorkRemotely.Enabled && !cfg.Sources.Remotive.Enabled {
		return fmt.Errorf("at least one source must be enabled")
	}

	switch cfg.Ledger.Backend {
	case "csv", "sqlite":
	default:
		return fmt.Errorf("ledger.backend must be \"csv\" or \"sqlite\", got %q", cfg.Ledger.Backend)
	}

	if cfg.Email.Enabled {
		if cfg.Email.Address == "" {
			return fmt.Errorf("email.address is required when email.enabled is true")
		}
		if cfg.Email.AppPassword == "" {
			return fmt.Errorf("email.app_password is required when email.enabled is true")
		}
	}

	return nil
}
