package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/climated/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
sensor:
  type: bme280
  i2c_address: 0x77
  max_retries: 5
intervals:
  reading_seconds: 10
  logging_seconds: 60
thresholds:
  temperature:
    min_celsius: 12
    max_celsius: 28
  humidity:
    min_percent: 25
    max_percent: 65
alerts:
  enabled: true
  cooldown_minutes: 15
  audio_enabled: false
database:
  path: /tmp/climate-test.db
  retention_days: 14
logging:
  level: debug
`)
	configPath := filepath.Join(tempDir, "climated.yaml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("CLIMATED_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "bme280", cfg.Sensor.Type)
	assert.Equal(t, 0x77, cfg.Sensor.I2CAddress)
	assert.Equal(t, 5, cfg.Sensor.MaxRetries)
	assert.Equal(t, 10, cfg.Intervals.ReadingSeconds)
	assert.Equal(t, 60, cfg.Intervals.LoggingSeconds)
	assert.InDelta(t, 12.0, cfg.Thresholds.Temperature.MinCelsius, 0.001)
	assert.InDelta(t, 28.0, cfg.Thresholds.Temperature.MaxCelsius, 0.001)
	assert.InDelta(t, 25.0, cfg.Thresholds.Humidity.MinPercent, 0.001)
	assert.InDelta(t, 65.0, cfg.Thresholds.Humidity.MaxPercent, 0.001)
	assert.True(t, cfg.Alerts.Enabled)
	assert.Equal(t, 15, cfg.Alerts.CooldownMinutes)
	assert.False(t, cfg.Alerts.AudioEnabled)
	assert.Equal(t, "/tmp/climate-test.db", cfg.Database.Path)
	assert.Equal(t, 14, cfg.Database.RetentionDays)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Empty(t, cfg.Warnings())
}

func TestLoadDefaults(t *testing.T) {
	// Point at a file that does not exist so only defaults apply
	t.Setenv("CLIMATED_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, "dht22", cfg.Sensor.Type)
	assert.Equal(t, 4, cfg.Sensor.GPIOPin)
	assert.Equal(t, 0x76, cfg.Sensor.I2CAddress)
	assert.Equal(t, 3, cfg.Sensor.MaxRetries)
	assert.Equal(t, 30, cfg.Intervals.ReadingSeconds)
	assert.Equal(t, 300, cfg.Intervals.LoggingSeconds)
	assert.InDelta(t, 15.0, cfg.Thresholds.Temperature.MinCelsius, 0.001)
	assert.InDelta(t, 30.0, cfg.Thresholds.Temperature.MaxCelsius, 0.001)
	assert.InDelta(t, 30.0, cfg.Thresholds.Humidity.MinPercent, 0.001)
	assert.InDelta(t, 70.0, cfg.Thresholds.Humidity.MaxPercent, 0.001)
	assert.True(t, cfg.Alerts.Enabled)
	assert.Equal(t, 30, cfg.Alerts.CooldownMinutes)
	assert.Equal(t, "/var/lib/climated/climate.db", cfg.Database.Path)
	assert.Equal(t, 30, cfg.Database.RetentionDays)
	assert.Equal(t, config.DefaultLogLevel, cfg.Logging.Level)
	assert.Contains(t, cfg.Alerts.Sounds, "too_hot")
}

func TestLoadInvalidFormatFallsBackToDefaults(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`	this is not valid yaml: [`)
	configPath := filepath.Join(tempDir, "climated.yaml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("CLIMATED_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err, "an unreadable config file must not be fatal")

	assert.Equal(t, "dht22", cfg.Sensor.Type, "defaults apply when the file cannot be parsed")
	assert.NotEmpty(t, cfg.Warnings())
}

func TestLoadRepairsInvalidValues(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
sensor:
  type: sht31
intervals:
  reading_seconds: 0
  logging_seconds: -5
database:
  retention_days: 0
`)
	configPath := filepath.Join(tempDir, "climated.yaml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("CLIMATED_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "dht22", cfg.Sensor.Type)
	assert.Equal(t, 30, cfg.Intervals.ReadingSeconds)
	assert.Equal(t, 300, cfg.Intervals.LoggingSeconds)
	assert.Equal(t, 30, cfg.Database.RetentionDays)
	assert.Len(t, cfg.Warnings(), 4)
}

func TestDebugFlag(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"climated", "--debug"}
	t.Setenv("CLIMATED_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.Debug, "expected Debug to be set by flag")
}
