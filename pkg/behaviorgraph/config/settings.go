package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Metrics backends understood by Settings.Metrics.
const (
	MetricsNone       = "none"
	MetricsOTel       = "otel"
	MetricsPrometheus = "prometheus"
)

// Variable store backends understood by Settings.VarsDriver.
const (
	VarsMemory   = "memory"
	VarsSQLite   = "sqlite"
	VarsPostgres = "postgres"
)

// Settings configures a host process running many engines.
type Settings struct {
	// TickInterval is how often the host ticks every engine.
	TickInterval time.Duration

	// MaxSteps bounds node visits per drive.
	MaxSteps int

	// MaxEngines caps live engines; 0 means unlimited.
	MaxEngines int

	// LogLevel is debug, info, warn or error.
	LogLevel string

	// Metrics selects the metrics backend.
	Metrics string

	// Tracing enables OpenTelemetry spans.
	Tracing bool

	// VarsDriver selects the variable store backend.
	VarsDriver string

	// VarsDSN is the database path or connection string for SQL stores.
	// $VAR and ${VAR} are expanded from the environment.
	VarsDSN string

	// CheckpointPath is a SQLite path for engine checkpoints. Empty keeps
	// checkpoints in memory. Expanded like VarsDSN.
	CheckpointPath string
}

// DefaultSettings returns settings suitable for a single local process.
func DefaultSettings() Settings {
	return Settings{
		TickInterval: 16 * time.Millisecond,
		MaxSteps:     1000,
		LogLevel:     "info",
		Metrics:      MetricsNone,
		VarsDriver:   VarsMemory,
	}
}

// SettingsFrom reads Settings from a Config, falling back to defaults for
// missing keys.
func SettingsFrom(c Config) Settings {
	d := DefaultSettings()
	return Settings{
		TickInterval:   c.Duration("tick_interval", d.TickInterval),
		MaxSteps:       c.Int("max_steps", d.MaxSteps),
		MaxEngines:     c.Int("max_engines", d.MaxEngines),
		LogLevel:       strings.ToLower(c.String("log_level", d.LogLevel)),
		Metrics:        strings.ToLower(c.String("metrics", d.Metrics)),
		Tracing:        c.Bool("tracing", d.Tracing),
		VarsDriver:     strings.ToLower(c.String("vars_driver", d.VarsDriver)),
		VarsDSN:        os.ExpandEnv(c.String("vars_dsn", d.VarsDSN)),
		CheckpointPath: os.ExpandEnv(c.String("checkpoint_path", d.CheckpointPath)),
	}
}

// LoadSettings reads Settings from a YAML or JSON file and validates them.
func LoadSettings(path string) (Settings, error) {
	c, err := FromFile(path)
	if err != nil {
		return Settings{}, err
	}
	s := SettingsFrom(c)
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// Validate reports every invalid field.
func (s Settings) Validate() error {
	var errs []error
	if s.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval must be positive, got %s", s.TickInterval))
	}
	if s.MaxSteps <= 0 {
		errs = append(errs, fmt.Errorf("max_steps must be positive, got %d", s.MaxSteps))
	}
	if s.MaxEngines < 0 {
		errs = append(errs, fmt.Errorf("max_engines cannot be negative, got %d", s.MaxEngines))
	}
	switch s.Metrics {
	case MetricsNone, MetricsOTel, MetricsPrometheus:
	default:
		errs = append(errs, fmt.Errorf("unknown metrics backend %q", s.Metrics))
	}
	switch s.VarsDriver {
	case VarsMemory:
	case VarsSQLite, VarsPostgres:
		if s.VarsDSN == "" {
			errs = append(errs, fmt.Errorf("vars_dsn is required for %s", s.VarsDriver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown vars driver %q", s.VarsDriver))
	}
	if _, err := ParseLevel(s.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level returns the slog level for LogLevel, defaulting to info.
func (s Settings) Level() slog.Level {
	lvl, err := ParseLevel(s.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
	return lvl, nil
}
