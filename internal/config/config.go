package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "/etc/climated/climated.yaml"
	configPathEnvVar  = "CLIMATED_CONFIG"

	DefaultLogLevel = "info"
)

type Config struct {
	Sensor     SensorConfig     `mapstructure:"sensor"`
	Intervals  IntervalsConfig  `mapstructure:"intervals"`
	Thresholds ThresholdsConfig `mapstructure:"thresholds"`
	Alerts     AlertsConfig     `mapstructure:"alerts"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Publish    PublishConfig    `mapstructure:"publish"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Debug      bool             `mapstructure:"debug"`
	Verbose    bool             `mapstructure:"verbose"`

	// One-shot command-line modes, never read from the config file
	Stats       string `mapstructure:"-"`
	ExportJSON  string `mapstructure:"-"`
	ExportCSV   string `mapstructure:"-"`
	ExportStart string `mapstructure:"-"`
	ExportEnd   string `mapstructure:"-"`

	warnings []string
}

type SensorConfig struct {
	Type       string `mapstructure:"type"`
	GPIOPin    int    `mapstructure:"gpio_pin"`
	I2CAddress int    `mapstructure:"i2c_address"`
	MaxRetries int    `mapstructure:"max_retries"`
}

type IntervalsConfig struct {
	ReadingSeconds int `mapstructure:"reading_seconds"`
	LoggingSeconds int `mapstructure:"logging_seconds"`
}

type ThresholdsConfig struct {
	Temperature TemperatureThresholds `mapstructure:"temperature"`
	Humidity    HumidityThresholds    `mapstructure:"humidity"`
}

type TemperatureThresholds struct {
	MinCelsius float64 `mapstructure:"min_celsius"`
	MaxCelsius float64 `mapstructure:"max_celsius"`
}

type HumidityThresholds struct {
	MinPercent float64 `mapstructure:"min_percent"`
	MaxPercent float64 `mapstructure:"max_percent"`
}

type AlertsConfig struct {
	Enabled         bool              `mapstructure:"enabled"`
	CooldownMinutes int               `mapstructure:"cooldown_minutes"`
	AudioEnabled    bool              `mapstructure:"audio_enabled"`
	Sounds          map[string]string `mapstructure:"sounds"`
}

type DatabaseConfig struct {
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

type PublishConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Command string `mapstructure:"command"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	File        string `mapstructure:"file"`
	MaxBytes    int    `mapstructure:"max_bytes"`
	BackupCount int    `mapstructure:"backup_count"`
}

// Load reads configuration from flags, the environment and the config
// file. A missing or unreadable config file is never fatal: the loader
// falls back to defaults and records a warning instead.
func Load() (*Config, error) {
	fs := pflag.NewFlagSet("climated", pflag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	debug := fs.Bool("debug", false, "Enable debugging mode")
	verbose := fs.Bool("verbose", false, "Enable verbose logging")
	stats := fs.String("stats", "", "Print statistics for a period (day, week, month) and exit")
	exportJSON := fs.String("export-json", "", "Export readings to a JSON file and exit")
	exportCSV := fs.String("export-csv", "", "Export readings to a CSV file and exit")
	exportStart := fs.String("export-start", "", "Export range start (RFC3339)")
	exportEnd := fs.String("export-end", "", "Export range end (RFC3339)")

	// Unknown flags (e.g. the test runner's) are not ours to reject
	_ = fs.Parse(os.Args[1:])

	v := viper.New()
	setDefaults(v)

	config := &Config{}

	path := *configPath
	if path == "" {
		path = os.Getenv(configPathEnvVar)
	}
	explicit := path != ""
	if path == "" {
		path = defaultConfigPath
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		// A silently absent default file is fine; anything else is
		// worth a warning, but never fatal.
		if _, statErr := os.Stat(path); explicit || statErr == nil {
			config.warnings = append(config.warnings,
				fmt.Sprintf("failed to load config from %s, using defaults: %v", path, err))
		}
	}

	// Command line flags override file values
	if fs.Changed("debug") {
		v.Set("debug", *debug)
	}
	if fs.Changed("verbose") {
		v.Set("verbose", *verbose)
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.Stats = *stats
	config.ExportJSON = *exportJSON
	config.ExportCSV = *exportCSV
	config.ExportStart = *exportStart
	config.ExportEnd = *exportEnd

	config.validate()

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sensor.type", "dht22")
	v.SetDefault("sensor.gpio_pin", 4)
	v.SetDefault("sensor.i2c_address", 0x76)
	v.SetDefault("sensor.max_retries", 3)

	v.SetDefault("intervals.reading_seconds", 30)
	v.SetDefault("intervals.logging_seconds", 300)

	v.SetDefault("thresholds.temperature.min_celsius", 15)
	v.SetDefault("thresholds.temperature.max_celsius", 30)
	v.SetDefault("thresholds.humidity.min_percent", 30)
	v.SetDefault("thresholds.humidity.max_percent", 70)

	v.SetDefault("alerts.enabled", true)
	v.SetDefault("alerts.cooldown_minutes", 30)
	v.SetDefault("alerts.audio_enabled", true)
	v.SetDefault("alerts.sounds", map[string]string{
		"too_hot":   "/usr/share/sounds/climated/alert_hot.wav",
		"too_cold":  "/usr/share/sounds/climated/alert_cold.wav",
		"too_humid": "/usr/share/sounds/climated/alert_humid.wav",
		"too_dry":   "/usr/share/sounds/climated/alert_dry.wav",
	})

	v.SetDefault("database.path", "/var/lib/climated/climate.db")
	v.SetDefault("database.retention_days", 30)

	v.SetDefault("publish.enabled", true)
	v.SetDefault("publish.command", "/usr/local/bin/sensor-publish")

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_bytes", 10*1024*1024)
	v.SetDefault("logging.backup_count", 5)

	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
}

// validate repairs out-of-range values instead of failing: the daemon
// must come up with a usable configuration no matter what was loaded.
func (c *Config) validate() {
	if c.Sensor.Type != "dht22" && c.Sensor.Type != "bme280" && c.Sensor.Type != "mock" {
		c.warn("unknown sensor.type %q, falling back to dht22", c.Sensor.Type)
		c.Sensor.Type = "dht22"
	}
	if c.Sensor.MaxRetries < 1 {
		c.warn("sensor.max_retries must be at least 1, using 3")
		c.Sensor.MaxRetries = 3
	}
	if c.Intervals.ReadingSeconds <= 0 {
		c.warn("intervals.reading_seconds must be positive, using 30")
		c.Intervals.ReadingSeconds = 30
	}
	if c.Intervals.LoggingSeconds <= 0 {
		c.warn("intervals.logging_seconds must be positive, using 300")
		c.Intervals.LoggingSeconds = 300
	}
	if c.Alerts.CooldownMinutes < 0 {
		c.warn("alerts.cooldown_minutes must not be negative, using 30")
		c.Alerts.CooldownMinutes = 30
	}
	if c.Database.RetentionDays < 1 {
		c.warn("database.retention_days must be at least 1, using 30")
		c.Database.RetentionDays = 30
	}
}

func (c *Config) warn(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

// Warnings returns the non-fatal problems encountered while loading.
// The caller logs them once the logger is up.
func (c *Config) Warnings() []string {
	return c.warnings
}
