// Package config loads dockboard settings.
// Precedence: embedded defaults → YAML file (DOCKBOARD_CONFIG) → environment.
package config

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/config.yaml
var defaultsFS embed.FS

// Duration accepts Go duration strings ("500ms", "12h") in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// AdminConfig is the bootstrap administrator created on first start.
type AdminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	FullName string `yaml:"full_name"`
}

// Config holds all runtime settings.
type Config struct {
	Addr            string      `yaml:"addr"`
	SQLitePath      string      `yaml:"sqlite_path"`
	MigrationsDir   string      `yaml:"migrations_dir"`
	LogLevel        string      `yaml:"log_level"`
	ScanDebounce    Duration    `yaml:"scan_debounce"`
	SessionTTL      Duration    `yaml:"session_ttl"`
	DefaultTimeSlot string      `yaml:"default_time_slot"`
	Lanes           []string    `yaml:"lanes"`
	SecureCookies   bool        `yaml:"secure_cookies"`
	Admin           AdminConfig `yaml:"admin"`
}

// Load builds the configuration. path may be empty; getenv is usually os.Getenv.
func Load(path string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = getenv("DOCKBOARD_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns the embedded default configuration.
func Defaults() (*Config, error) {
	data, err := defaultsFS.ReadFile("defaults/config.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded defaults: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse embedded defaults: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	setString("APP_ADDR", &c.Addr)
	setString("SQLITE_PATH", &c.SQLitePath)
	setString("MIGRATIONS_DIR", &c.MigrationsDir)
	setString("LOG_LEVEL", &c.LogLevel)
	setString("DEFAULT_TIME_SLOT", &c.DefaultTimeSlot)
	setString("ADMIN_EMAIL", &c.Admin.Email)
	setString("ADMIN_PASSWORD", &c.Admin.Password)

	if v := strings.TrimSpace(getenv("SCAN_DEBOUNCE")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SCAN_DEBOUNCE: %w", err)
		}
		c.ScanDebounce = Duration(d)
	}
	if v := strings.TrimSpace(getenv("SESSION_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SESSION_TTL: %w", err)
		}
		c.SessionTTL = Duration(d)
	}
	if v := strings.TrimSpace(getenv("SECURE_COOKIES")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SECURE_COOKIES: %w", err)
		}
		c.SecureCookies = b
	}
	if v := strings.TrimSpace(getenv("LANES")); v != "" {
		c.Lanes = strings.Split(v, ",")
	}
	return nil
}

func (c *Config) normalize() {
	c.Admin.Email = strings.ToLower(strings.TrimSpace(c.Admin.Email))
	lanes := make([]string, 0, len(c.Lanes))
	seen := make(map[string]struct{}, len(c.Lanes))
	for _, l := range c.Lanes {
		l = strings.ToUpper(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		lanes = append(lanes, l)
	}
	c.Lanes = lanes
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if strings.TrimSpace(c.SQLitePath) == "" {
		errs = append(errs, errors.New("sqlite_path is required"))
	}
	if c.ScanDebounce < 0 {
		errs = append(errs, errors.New("scan_debounce must not be negative"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session_ttl must be positive"))
	}
	if len(c.Lanes) == 0 {
		errs = append(errs, errors.New("at least one lane is required"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel maps LogLevel to a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return lvl, nil
}
