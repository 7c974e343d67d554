// Package monitor runs the sampling and persistence loops and owns the
// latest-reading snapshot shared between them.
package monitor

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/climated/internal/alert"
	"codeberg.org/mutker/climated/internal/climate"
	"codeberg.org/mutker/climated/internal/errors"
	"codeberg.org/mutker/climated/internal/logger"
	"codeberg.org/mutker/climated/internal/publish"
	"codeberg.org/mutker/climated/internal/sensor"
	"codeberg.org/mutker/climated/internal/store"
)

const (
	ErrSensorUnavailable errors.ErrorCode = "monitor_sensor_unavailable"
)

// Stop waits this long for the loops to drain before giving up
const shutdownTimeout = 5 * time.Second

// Retention cleanup runs once per day inside this window.
const (
	cleanupHour      = 3
	cleanupMinuteMax = 5
)

type state int

const (
	stateStopped state = iota
	stateRunning
	stateStopping
)

// Snapshot is the most recent successful sample.
type Snapshot struct {
	Reading   sensor.Reading
	Metrics   climate.Metrics
	Timestamp time.Time
}

// Config controls loop cadence.
type Config struct {
	ReadingInterval time.Duration
	LoggingInterval time.Duration
}

// Monitor drives a sensor on one cadence and persists snapshots on
// another. Both loops share the latest snapshot under a single lock.
type Monitor struct {
	cfg       Config
	sensor    sensor.Sensor
	repo      store.Repository
	alerts    *alert.Manager
	publisher publish.Publisher
	now       func() time.Time

	mu             sync.Mutex
	state          state
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	joinTimeout    time.Duration
	latest         *Snapshot
	lastCleanupDay string
}

// New builds a monitor. Nothing runs until Start is called.
func New(cfg Config, s sensor.Sensor, repo store.Repository, alerts *alert.Manager, publisher publish.Publisher) *Monitor {
	return &Monitor{
		cfg:         cfg,
		sensor:      s,
		repo:        repo,
		alerts:      alerts,
		publisher:   publisher,
		now:         time.Now,
		joinTimeout: shutdownTimeout,
	}
}

// Start probes the sensor and launches the sampling and persistence
// loops. Calling Start on a running monitor logs a warning and does
// nothing.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.state != stateStopped {
		m.mu.Unlock()
		logger.Warn().Msg("Monitor already running")

		return nil
	}
	m.mu.Unlock()

	// The availability check runs outside the lock: it is a full read
	// with retries and must not stall Latest
	if !m.sensor.IsAvailable() {
		return errors.New().New(ErrSensorUnavailable)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != stateStopped {
		logger.Warn().Msg("Monitor already running")

		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.state = stateRunning

	m.wg.Add(2)
	go m.samplingLoop(loopCtx)
	go m.persistenceLoop(loopCtx)

	logger.Info().
		Dur("reading_interval", m.cfg.ReadingInterval).
		Dur("logging_interval", m.cfg.LoggingInterval).
		Msg("Monitoring started")

	return nil
}

// Stop stops both loops, waits for them to drain, then releases the
// sensor and the store. Safe to call more than once.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	if m.state != stateRunning {
		m.mu.Unlock()

		return nil
	}
	m.state = stateStopping
	m.cancel()
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(m.joinTimeout):
		logger.Warn().
			Dur("timeout", m.joinTimeout).
			Msg("Timed out waiting for loops to stop")
	}

	if err := m.sensor.Cleanup(); err != nil {
		logger.Error().Err(err).Msg("Sensor cleanup failed")
	}
	if err := m.repo.Close(); err != nil {
		logger.Error().Err(err).Msg("Store close failed")
	}

	m.mu.Lock()
	m.state = stateStopped
	m.mu.Unlock()

	logger.Info().Msg("Monitoring stopped")

	return nil
}

// Latest returns the most recent snapshot, or nil before the first
// successful sample.
func (m *Monitor) Latest() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.latest == nil {
		return nil
	}
	snapshot := *m.latest

	return &snapshot
}

func (m *Monitor) samplingLoop(ctx context.Context) {
	defer m.wg.Done()

	// Take one sample up front so the persistence loop never sees an
	// empty snapshot for a full reading interval.
	m.sample(ctx)

	ticker := time.NewTicker(m.cfg.ReadingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sample(ctx)
		}
	}
}

func (m *Monitor) persistenceLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.LoggingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.persist(ctx)
			m.maybeCleanup(ctx)
		}
	}
}

func (m *Monitor) sample(ctx context.Context) {
	reading, err := m.sensor.Read()
	if err != nil {
		logger.Error().Err(err).Msg("Sensor read failed")

		return
	}

	metrics := climate.Derive(reading.TemperatureC, reading.Humidity)
	snapshot := Snapshot{
		Reading:   reading,
		Metrics:   metrics,
		Timestamp: m.now(),
	}

	m.mu.Lock()
	m.latest = &snapshot
	m.mu.Unlock()

	logger.Debug().
		Float64("temperature_c", reading.TemperatureC).
		Float64("humidity", reading.Humidity).
		Float64("dew_point_c", metrics.DewPointC).
		Str("comfort", metrics.ComfortLevel).
		Msg("Sampled sensor")

	m.alerts.CheckThresholds(ctx, reading.TemperatureC, reading.Humidity)

	if err := m.publisher.Publish(ctx, "climate_temperature", reading.TemperatureC, "°C"); err != nil {
		logger.Debug().Err(err).Msg("Temperature publish failed")
	}
	if err := m.publisher.Publish(ctx, "climate_humidity", reading.Humidity, "%"); err != nil {
		logger.Debug().Err(err).Msg("Humidity publish failed")
	}
}

func (m *Monitor) persist(ctx context.Context) {
	snapshot := m.Latest()
	if snapshot == nil {
		logger.Debug().Msg("No snapshot to persist yet")

		return
	}

	record := &store.Record{
		Timestamp:    snapshot.Timestamp,
		TemperatureC: snapshot.Reading.TemperatureC,
		TemperatureF: snapshot.Metrics.TemperatureF,
		Humidity:     snapshot.Reading.Humidity,
		DewPointC:    &snapshot.Metrics.DewPointC,
		HeatIndexC:   snapshot.Metrics.HeatIndexC,
		ComfortLevel: snapshot.Metrics.ComfortLevel,
	}

	if err := m.repo.LogReading(ctx, record); err != nil {
		logger.Error().Err(err).Msg("Failed to persist reading")

		return
	}

	logger.Info().
		Float64("temperature_c", record.TemperatureC).
		Float64("humidity", record.Humidity).
		Str("comfort", record.ComfortLevel).
		Msg("Reading persisted")
}

// maybeCleanup runs retention cleanup once per day inside the early
// morning window, so the sweep never competes with daytime load.
func (m *Monitor) maybeCleanup(ctx context.Context) {
	now := m.now()
	if now.Hour() != cleanupHour || now.Minute() >= cleanupMinuteMax {
		return
	}

	day := now.Format("2006-01-02")

	m.mu.Lock()
	if m.lastCleanupDay == day {
		m.mu.Unlock()

		return
	}
	m.lastCleanupDay = day
	m.mu.Unlock()

	deleted, err := m.repo.CleanupOldData(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Retention cleanup failed")

		return
	}

	logger.Info().Int64("deleted", deleted).Msg("Retention cleanup complete")
}
