// Package config loads engine and storage settings from defaults, an
// optional YAML file and ODONTOS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/odontos/internal/catalog"
	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/scheduler"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. ODONTOS_MAX_PER_DAY.
const EnvPrefix = "ODONTOS"

type Config struct {
	DBPath         string `mapstructure:"db_path"`
	CatalogPath    string `mapstructure:"catalog_path"`
	GroupingMode   string `mapstructure:"grouping_mode"`
	IntervalDays   int    `mapstructure:"interval_days"`
	MaxPerDay      int    `mapstructure:"max_per_day"`
	AcuteMaxPerDay int    `mapstructure:"acute_max_per_day"`
	AutoCascade    bool   `mapstructure:"auto_cascade"`
	LogLevel       string `mapstructure:"log_level"`

	// Lists accept YAML sequences or comma separated strings.
	AcuteConditions []string `mapstructure:"-"`
	PriorityOrder   []string `mapstructure:"-"`
}

// Load reads configuration. An explicit path must exist; without one,
// ~/.odontos/config.yaml is used when present.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	defaults := scheduler.DefaultRules()
	v.SetDefault("db_path", "")
	v.SetDefault("catalog_path", "")
	v.SetDefault("grouping_mode", string(domain.GroupPerUnit))
	v.SetDefault("interval_days", defaults.IntervalDays)
	v.SetDefault("max_per_day", defaults.MaxPerDay)
	v.SetDefault("acute_max_per_day", defaults.AcuteMaxPerDay)
	v.SetDefault("acute_conditions", defaults.AcuteConditions)
	v.SetDefault("priority_order", defaults.PriorityOrder)
	v.SetDefault("auto_cascade", true)
	v.SetDefault("log_level", "info")

	home, homeErr := os.UserHomeDir()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if homeErr == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(home, ".odontos"))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AcuteConditions = stringList(v.Get("acute_conditions"))
	cfg.PriorityOrder = stringList(v.Get("priority_order"))

	if cfg.DBPath == "" {
		if homeErr != nil {
			return nil, fmt.Errorf("finding home directory: %w", homeErr)
		}
		cfg.DBPath = filepath.Join(home, ".odontos", "odontos.db")
	}
	if _, err := cfg.Rules(); err != nil {
		return nil, err
	}
	if _, err := cfg.Grouping(); err != nil {
		return nil, err
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Rules returns the scheduling rules, validated.
func (c *Config) Rules() (scheduler.Rules, error) {
	r := scheduler.Rules{
		PriorityOrder:   c.PriorityOrder,
		MaxPerDay:       c.MaxPerDay,
		AcuteConditions: c.AcuteConditions,
		AcuteMaxPerDay:  c.AcuteMaxPerDay,
		IntervalDays:    c.IntervalDays,
	}
	if err := r.Validate(); err != nil {
		return scheduler.Rules{}, fmt.Errorf("config: %w", err)
	}
	return r, nil
}

func (c *Config) Grouping() (domain.GroupingMode, error) {
	return domain.ParseGroupingMode(c.GroupingMode)
}

// Level parses log_level (debug, info, warn, error).
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, domain.InvalidInputf("log level %q", c.LogLevel)
	}
	return level, nil
}

// Catalog loads catalog_path, or the embedded catalog when it is empty.
func (c *Config) Catalog() (*catalog.Catalog, error) {
	return catalog.Load(c.CatalogPath)
}

func stringList(raw any) []string {
	var parts []string
	switch val := raw.(type) {
	case string:
		parts = strings.Split(val, ",")
	case []string:
		parts = val
	case []any:
		for _, p := range val {
			parts = append(parts, fmt.Sprint(p))
		}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
