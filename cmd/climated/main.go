package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/climated/internal/alert"
	"codeberg.org/mutker/climated/internal/config"
	"codeberg.org/mutker/climated/internal/errors"
	"codeberg.org/mutker/climated/internal/logger"
	"codeberg.org/mutker/climated/internal/monitor"
	"codeberg.org/mutker/climated/internal/pid"
	"codeberg.org/mutker/climated/internal/publish"
	"codeberg.org/mutker/climated/internal/sensor"
	"codeberg.org/mutker/climated/internal/store"
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Logging.Level
	if cfg.Debug {
		level = "debug"
	}
	if err := logger.Init(logger.Config{
		Level:       level,
		File:        cfg.Logging.File,
		MaxBytes:    cfg.Logging.MaxBytes,
		BackupCount: cfg.Logging.BackupCount,
	}, logger.IsService()); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	for _, warning := range cfg.Warnings() {
		logger.Warn().Msg(warning)
	}
	logger.Debug().Msg("Config loaded")
}

func main() {
	if cfg.Stats != "" || cfg.ExportJSON != "" || cfg.ExportCSV != "" {
		if err := runOneShot(); err != nil {
			logFailure(err, "Command failed")
			os.Exit(1)
		}

		return
	}

	if err := pid.Write(); err != nil {
		fatal(err, "Failed to write PID file")
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("Failed to remove PID file")
		}
	}()

	sensorDevice, err := sensor.New(sensor.Config{
		Type:       cfg.Sensor.Type,
		GPIOPin:    cfg.Sensor.GPIOPin,
		I2CAddress: cfg.Sensor.I2CAddress,
		MaxRetries: cfg.Sensor.MaxRetries,
	})
	if err != nil {
		fatal(err, "Failed to initialize sensor")
	}

	repo, err := store.NewRepository(store.Config{
		Path:          cfg.Database.Path,
		RetentionDays: cfg.Database.RetentionDays,
	})
	if err != nil {
		fatal(err, "Failed to open database")
	}

	alerts := alert.NewManager(alert.Config{
		Enabled:      cfg.Alerts.Enabled,
		Cooldown:     time.Duration(cfg.Alerts.CooldownMinutes) * time.Minute,
		AudioEnabled: cfg.Alerts.AudioEnabled,
		Thresholds: alert.Thresholds{
			TemperatureMinC: cfg.Thresholds.Temperature.MinCelsius,
			TemperatureMaxC: cfg.Thresholds.Temperature.MaxCelsius,
			HumidityMinPct:  cfg.Thresholds.Humidity.MinPercent,
			HumidityMaxPct:  cfg.Thresholds.Humidity.MaxPercent,
		},
		Sounds: cfg.Alerts.Sounds,
	}, alert.NewPlayer())

	publisher := publish.New(publish.Config{
		Enabled: cfg.Publish.Enabled,
		Command: cfg.Publish.Command,
	})

	mon := monitor.New(monitor.Config{
		ReadingInterval: time.Duration(cfg.Intervals.ReadingSeconds) * time.Second,
		LoggingInterval: time.Duration(cfg.Intervals.LoggingSeconds) * time.Second,
	}, sensorDevice, repo, alerts, publisher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := mon.Start(ctx); err != nil {
		fatal(err, "Failed to start monitoring")
	}

	<-ctx.Done()

	if err := mon.Stop(); err != nil {
		logger.Error().Err(err).Msg("Error stopping monitor")
	}
	logger.Info().Msg("Exiting...")
}

// fatal logs with the domain error code when one is attached, then
// exits.
func fatal(err error, msg string) {
	var domainErr errors.Error
	if errors.As(err, &domainErr) {
		logger.FatalWithCode(domainErr).Msg(msg)
	}
	logger.Fatal().Err(err).Msg(msg)
}

func logFailure(err error, msg string) {
	var domainErr errors.Error
	if errors.As(err, &domainErr) {
		logger.ErrorWithCode(domainErr).Msg(msg)

		return
	}
	logger.Error().Err(err).Msg(msg)
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func runOneShot() error {
	repo, err := store.NewRepository(store.Config{
		Path:          cfg.Database.Path,
		RetentionDays: cfg.Database.RetentionDays,
	})
	if err != nil {
		return err
	}
	defer repo.Close()

	ctx := context.Background()

	if cfg.Stats != "" {
		return printStatistics(ctx, repo)
	}

	start, end, err := exportRange()
	if err != nil {
		return err
	}

	if cfg.ExportJSON != "" {
		if err := repo.ExportJSON(ctx, cfg.ExportJSON, start, end); err != nil {
			return err
		}
		fmt.Printf("exported readings to %s\n", cfg.ExportJSON)
	}
	if cfg.ExportCSV != "" {
		if err := repo.ExportCSV(ctx, cfg.ExportCSV, start, end); err != nil {
			return err
		}
		fmt.Printf("exported readings to %s\n", cfg.ExportCSV)
	}

	return nil
}

func printStatistics(ctx context.Context, repo store.Repository) error {
	stats, err := repo.Statistics(ctx, store.Period(cfg.Stats))
	if err != nil {
		return err
	}
	if stats == nil {
		fmt.Printf("no readings recorded in the last %s\n", cfg.Stats)

		return nil
	}

	out, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	return nil
}

func exportRange() (start, end time.Time, err error) {
	if cfg.ExportStart != "" {
		start, err = time.Parse(time.RFC3339, cfg.ExportStart)
		if err != nil {
			return start, end, fmt.Errorf("invalid --export-start: %w", err)
		}
	}
	if cfg.ExportEnd != "" {
		end, err = time.Parse(time.RFC3339, cfg.ExportEnd)
		if err != nil {
			return start, end, fmt.Errorf("invalid --export-end: %w", err)
		}
	}

	return start, end, nil
}
