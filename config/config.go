package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
	"tangled.org/beats/clock"
	beaterr "tangled.org/beats/errors"
	"tangled.org/beats/reconcile"
)

type Portal struct {
	URL          string `env:"URL, overwrite, default=https://www.ahgora.com.br" yaml:"url"`
	Company      string `env:"COMPANY, overwrite" yaml:"company"`
	User         string `env:"USER, overwrite" yaml:"user"`
	Pass         string `env:"PASS, overwrite" yaml:"pass"`
	MonthYear    string `env:"MONTHYEAR, overwrite" yaml:"month_year"`
	ForceNoCache bool   `env:"FORCENOCACHE, overwrite" yaml:"force_nocache"`
}

type Schedule struct {
	LunchAt   string `env:"LUNCHAT, overwrite, default=11:30" yaml:"lunch_at"`
	LunchTime int    `env:"LUNCHTIME, overwrite, default=60" yaml:"lunch_time"`
	Tolerance int    `env:"TOLERANCE, overwrite, default=10" yaml:"tolerance"`
	WorkHours string `env:"WORKHOURS, overwrite, default=08:00" yaml:"work_hours"`
}

type Config struct {
	Portal   Portal   `env:",prefix=AHGORA_" yaml:"portal"`
	Schedule Schedule `env:",prefix=AHGORA_" yaml:"schedule"`
	Verbose  bool     `env:"AHGORA_VERBOSE, overwrite" yaml:"verbose"`
	Debug    bool     `env:"AHGORA_DEBUG, overwrite" yaml:"debug"`
}

// DefaultPath is $XDG_CONFIG_HOME/beats/config.yaml, or the platform's
// user config directory when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return ""
		}
		configHome = dir
	}
	return filepath.Join(configHome, "beats", "config.yaml")
}

// Load reads the optional config file at path, then the AHGORA_*
// environment on top of it.
func Load(ctx context.Context, path string) (*Config, error) {
	return LoadWith(ctx, path, envconfig.OsLookuper())
}

func LoadWith(ctx context.Context, path string, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, beaterr.ConfigurationError("invalid config file %s: %v", path, err)
			}
		}
	}

	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	})
	if err != nil {
		return nil, beaterr.ConfigurationError("%v", err)
	}

	return &cfg, nil
}

var (
	lunchAtLayout   = regexp.MustCompile(`^\d{2}:\d{2}$`)
	monthYearLayout = regexp.MustCompile(`^(0[1-9]|1[0-2])-\d{4}$`)
)

// Validate checks the configuration before anything touches the network.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"company", c.Portal.Company},
		{"user", c.Portal.User},
		{"pass", c.Portal.Pass},
	}
	for _, r := range required {
		if r.value == "" {
			return beaterr.ConfigurationError("missing %s", r.name)
		}
	}

	if !lunchAtLayout.MatchString(c.Schedule.LunchAt) || !clock.Parse(c.Schedule.LunchAt).Valid() {
		return beaterr.ConfigurationError("invalid lunch-at %q, expected HH:mm", c.Schedule.LunchAt)
	}
	if c.Schedule.LunchTime <= 0 {
		return beaterr.ConfigurationError("invalid lunch-time %d, expected minutes", c.Schedule.LunchTime)
	}
	if c.Schedule.Tolerance < 0 {
		return beaterr.ConfigurationError("invalid tolerance %d, expected minutes", c.Schedule.Tolerance)
	}
	if _, err := clock.ParseOffset(c.Schedule.WorkHours); err != nil {
		return beaterr.ConfigurationError("invalid work-hours: %v", err)
	}
	if c.Portal.MonthYear != "" && !monthYearLayout.MatchString(c.Portal.MonthYear) {
		return beaterr.ConfigurationError("invalid month-year %q, expected MM-YYYY", c.Portal.MonthYear)
	}

	return nil
}

// Engine converts the schedule into the reconciliation settings.
func (c *Config) Engine() (reconcile.Config, error) {
	workDay, err := clock.ParseOffset(c.Schedule.WorkHours)
	if err != nil {
		return reconcile.Config{}, beaterr.ConfigurationError("invalid work-hours: %v", err)
	}

	return reconcile.Config{
		WorkDay:      workDay,
		LunchAt:      c.Schedule.LunchAt,
		LunchMinutes: c.Schedule.LunchTime,
		Tolerance:    c.Schedule.Tolerance,
	}, nil
}

// LogValue keeps the password out of debug logs.
func (c Config) LogValue() slog.Value {
	pass := ""
	if c.Portal.Pass != "" {
		pass = "[redacted]"
	}
	return slog.GroupValue(
		slog.String("url", c.Portal.URL),
		slog.String("company", c.Portal.Company),
		slog.String("user", c.Portal.User),
		slog.String("pass", pass),
		slog.String("month_year", c.Portal.MonthYear),
		slog.Bool("force_nocache", c.Portal.ForceNoCache),
		slog.String("lunch_at", c.Schedule.LunchAt),
		slog.Int("lunch_time", c.Schedule.LunchTime),
		slog.Int("tolerance", c.Schedule.Tolerance),
		slog.String("work_hours", c.Schedule.WorkHours),
		slog.Bool("verbose", c.Verbose),
		slog.Bool("debug", c.Debug),
	)
}
