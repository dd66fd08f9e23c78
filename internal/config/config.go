// Package config provides configuration loading and validation for the job agent.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/job-agent/internal/schemas"
	schemafiles "github.com/jonathan/job-agent/schemas"
)

var configSchema = schemas.MustCompile("config", schemafiles.Config)

// Environment variables that override secrets in the config file.
const (
	EnvLinkedInEmail    = "LINKEDIN_EMAIL"
	EnvLinkedInPassword = "LINKEDIN_PASSWORD"
	EnvDatabaseURL      = "DATABASE_URL"
)

// DefaultIntervalHours is used when the schedule names neither run times nor an interval.
const DefaultIntervalHours = 4

// Schedule controls `job_agent schedule`.
type Schedule struct {
	RunTimes           []string `json:"run_times,omitempty" validate:"dive,datetime=15:04"` // Daily HH:MM run times
	CheckIntervalHours float64  `json:"check_interval_hours,omitempty" validate:"gte=0"`   // Used when RunTimes is empty
}

// Config represents the run configuration loaded from config.json.
// Absent keys keep the values from Default.
type Config struct {
	// Search
	Keywords           []string          `json:"keywords" validate:"required,min=1,dive,required"`
	Locations          []string          `json:"locations" validate:"required,min=1,dive,required"`
	CompaniesToMonitor map[string]string `json:"companies_to_monitor,omitempty" validate:"dive,url"`

	// LinkedIn credentials; empty means monitor-only
	LinkedInEmail    string `json:"linkedin_email,omitempty"`
	LinkedInPassword string `json:"linkedin_password,omitempty"`

	// Behavior
	AutoApply              bool `json:"auto_apply"`
	QuickApply             bool `json:"quick_apply"` // Shorter 5 page application flow
	ConfirmBeforeSubmit    bool `json:"confirm_before_submit"`
	FindNetworkingContacts bool `json:"find_networking_contacts"`
	ShowBrowser            bool `json:"show_browser"`

	// Pacing between consecutive applications and searches
	ApplicationDelaySeconds float64 `json:"application_delay_seconds,omitempty" validate:"gte=0"`
	SearchDelaySeconds      float64 `json:"search_delay_seconds,omitempty" validate:"gte=0"`

	// Files
	ProfilePath string `json:"profile_path,omitempty"` // Applicant profile JSON
	OutputDir   string `json:"output_dir,omitempty"`   // CSV exports and run state
	SQLitePath  string `json:"sqlite_path,omitempty"`  // Local tracker database
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL tracker; overrides sqlite_path

	// Logging
	LogLevel string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	LogFile  string `json:"log_file,omitempty"`

	Schedule Schedule `json:"schedule"`
}

// Default returns the configuration a fresh install starts with.
func Default() Config {
	return Config{
		Keywords:                []string{"trade operations", "trading operations", "settlements"},
		Locations:               []string{"New York, NY", "Remote"},
		CompaniesToMonitor:      map[string]string{},
		ConfirmBeforeSubmit:     true,
		FindNetworkingContacts:  true,
		ShowBrowser:             true,
		ApplicationDelaySeconds: 5,
		SearchDelaySeconds:      3,
		ProfilePath:             "profile.json",
		OutputDir:               "output",
		SQLitePath:              filepath.Join("data", "job_tracker.db"),
		LogLevel:                "info",
		LogFile:                 "job_monitor.log",
	}
}

// LoadConfig loads configuration from a JSON file on top of Default, then applies
// environment overrides. The document is checked against the embedded config schema.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := configSchema.Validate(data); err != nil {
		return nil, fmt.Errorf("config file %s does not match schema: %w", path, err)
	}
	cfg.ApplyEnv(os.Getenv)

	return &cfg, nil
}

// ApplyEnv overrides secrets with non-empty environment values.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvLinkedInEmail); v != "" {
		c.LinkedInEmail = v
	}
	if v := getenv(EnvLinkedInPassword); v != "" {
		c.LinkedInPassword = v
	}
	if v := getenv(EnvDatabaseURL); v != "" {
		c.DatabaseURL = v
	}
}

// Validate checks that the configuration has valid values. Missing credentials are
// not an error: the monitor then runs without logging in and never applies.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.ProfilePath != "" && c.AutoApply {
		if _, err := os.Stat(c.ProfilePath); os.IsNotExist(err) {
			return fmt.Errorf("config error: profile file not found: %s", c.ProfilePath)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if len(result.Keywords) == 0 {
		result.Keywords = defaults.Keywords
	}
	if len(result.Locations) == 0 {
		result.Locations = defaults.Locations
	}
	if len(result.CompaniesToMonitor) == 0 {
		result.CompaniesToMonitor = defaults.CompaniesToMonitor
	}

	// String fields: use default if empty
	if result.LinkedInEmail == "" {
		result.LinkedInEmail = defaults.LinkedInEmail
	}
	if result.LinkedInPassword == "" {
		result.LinkedInPassword = defaults.LinkedInPassword
	}
	if result.ProfilePath == "" {
		result.ProfilePath = defaults.ProfilePath
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.SQLitePath == "" {
		result.SQLitePath = defaults.SQLitePath
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFile == "" {
		result.LogFile = defaults.LogFile
	}

	// Float fields: use default if zero
	if result.ApplicationDelaySeconds == 0 {
		result.ApplicationDelaySeconds = defaults.ApplicationDelaySeconds
	}
	if result.SearchDelaySeconds == 0 {
		result.SearchDelaySeconds = defaults.SearchDelaySeconds
	}
	if len(result.Schedule.RunTimes) == 0 && result.Schedule.CheckIntervalHours == 0 {
		result.Schedule = defaults.Schedule
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// HasCredentials reports whether both LinkedIn credentials are set.
func (c *Config) HasCredentials() bool {
	return strings.TrimSpace(c.LinkedInEmail) != "" && c.LinkedInPassword != ""
}

// ApplicationDelay is the pause between consecutive applications.
func (c *Config) ApplicationDelay() time.Duration {
	return seconds(c.ApplicationDelaySeconds)
}

// SearchDelay is the pause between consecutive searches.
func (c *Config) SearchDelay() time.Duration {
	return seconds(c.SearchDelaySeconds)
}

// Interval is the scheduling interval used when no run times are set.
func (s Schedule) Interval() time.Duration {
	hours := s.CheckIntervalHours
	if hours <= 0 {
		hours = DefaultIntervalHours
	}
	return time.Duration(hours * float64(time.Hour))
}

// WriteDefault writes Default to path, refusing to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	cfg := Default()
	cfg.AutoApply = false
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func seconds(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
