package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/chaz8081/autoclicker/internal/input"
)

// MaxRate is the highest rate accepted without the caution override. Above
// it the interval drops under 2ms, below what the OS scheduler reliably
// delivers.
const MaxRate = 500.0

// DefaultTimeout is the default delay between clicks in milliseconds.
const DefaultTimeout = 42.0

var (
	ErrInvalidRate = errors.New("invalid rate")
	ErrRateTooHigh = errors.New("rate too high")
	ErrInvalidKey  = errors.New("invalid key")
)

// Config holds all application configuration.
type Config struct {
	Click    ClickConfig  `yaml:"click"`
	Keys     KeysConfig   `yaml:"keys"`
	SafeMode bool         `yaml:"safe_mode"`
	Timing   TimingConfig `yaml:"timing"`
	Backend  string       `yaml:"backend"` // "win32" or "hook"
	LogFile  string       `yaml:"log_file"`
	LogLevel string       `yaml:"log_level"`
}

// ClickConfig holds the repeating action settings.
type ClickConfig struct {
	Rate          float64 `yaml:"rate"`   // actions per second
	Button        string  `yaml:"button"` // "left", "right" or "middle"
	AllowHighRate bool    `yaml:"allow_high_rate"`
}

// KeysConfig holds the control key specs.
type KeysConfig struct {
	Start           string `yaml:"start"`
	Pause           string `yaml:"pause"`
	Quit            string `yaml:"quit"`
	Safe            string `yaml:"safe"` // hex code, key name or single character
	AllowDuplicates bool   `yaml:"allow_duplicates"`
}

// TimingConfig holds the loop timing constants.
type TimingConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	IdlePoll time.Duration `yaml:"idle_poll"`
	Poll     time.Duration `yaml:"poll"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "autoclicker")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultBackend is win32 on Windows and hook elsewhere.
func DefaultBackend() string {
	if runtime.GOOS == "windows" {
		return "win32"
	}
	return "hook"
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Click: ClickConfig{
			Rate:   RateFromTimeout(DefaultTimeout),
			Button: "left",
		},
		Keys: KeysConfig{
			Start: "S",
			Pause: "P",
			Quit:  "Q",
			Safe:  "0x12", // Alt
		},
		SafeMode: true,
		Timing: TimingConfig{
			Debounce: 69 * time.Millisecond,
			IdlePoll: 200 * time.Millisecond,
			Poll:     time.Millisecond,
		},
		Backend:  DefaultBackend(),
		LogFile:  "autoclicker.log",
		LogLevel: "info",
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults. Tilde (~) in log_file is expanded to the user's home directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.LogFile = expandTilde(cfg.LogFile)

	return cfg, nil
}

// RateFromTimeout converts a delay in milliseconds to actions per second.
// A non-positive timeout yields a non-positive rate, which Validate rejects.
func RateFromTimeout(ms float64) float64 {
	if ms <= 0 {
		return ms
	}
	return 1000 / ms
}

// Interval returns the delay between actions.
func (c ClickConfig) Interval() time.Duration {
	if c.Rate <= 0 {
		return 0
	}
	return time.Duration(math.Round(float64(time.Second) / c.Rate))
}

// Validate checks the config for invalid values. Every violation is
// reported; use errors.Is with the Err* values to classify them.
func (c *Config) Validate() error {
	var errs []error

	switch r := c.Click.Rate; {
	case math.IsNaN(r) || math.IsInf(r, 0) || r <= 0:
		errs = append(errs, fmt.Errorf("%w: click.rate must be > 0, got %v", ErrInvalidRate, r))
	case r > MaxRate && !c.Click.AllowHighRate:
		errs = append(errs, fmt.Errorf("%w: click.rate %v exceeds %v actions/s (interval under 2ms is unreliable)", ErrRateTooHigh, r, MaxRate))
	}

	if _, err := input.ParseButton(c.Click.Button); err != nil {
		errs = append(errs, fmt.Errorf("click.%w", err))
	}

	for _, k := range []struct{ name, value string }{
		{"keys.start", c.Keys.Start},
		{"keys.pause", c.Keys.Pause},
		{"keys.quit", c.Keys.Quit},
	} {
		if utf8.RuneCountInString(strings.TrimSpace(k.value)) != 1 {
			errs = append(errs, fmt.Errorf("%w: %s must be a single character, got %q", ErrInvalidKey, k.name, k.value))
		}
	}

	if _, err := input.ParseKeySpec(c.Keys.Safe); err != nil {
		errs = append(errs, fmt.Errorf("%w: keys.safe: %v", ErrInvalidKey, err))
	}

	if c.Timing.Debounce <= 0 {
		errs = append(errs, fmt.Errorf("timing.debounce must be > 0"))
	}
	if c.Timing.IdlePoll <= 0 {
		errs = append(errs, fmt.Errorf("timing.idle_poll must be > 0"))
	}
	if c.Timing.Poll < 0 {
		errs = append(errs, fmt.Errorf("timing.poll must be >= 0"))
	}

	switch c.Backend {
	case "win32", "hook":
	default:
		errs = append(errs, fmt.Errorf("backend must be \"win32\" or \"hook\", got %q", c.Backend))
	}

	if c.LogFile == "" {
		errs = append(errs, fmt.Errorf("log_file must not be empty"))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel))
	}

	return errors.Join(errs...)
}

// OnlyRateTooHigh reports whether err consists solely of ErrRateTooHigh
// violations, i.e. the caution override would make the config valid.
func OnlyRateTooHigh(err error) bool {
	if err == nil {
		return false
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range j.Unwrap() {
			if !errors.Is(e, ErrRateTooHigh) {
				return false
			}
		}
		return true
	}
	return errors.Is(err, ErrRateTooHigh)
}

// ParseLogLevel maps a config level string to slog.Level, defaulting to Info.
func ParseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
