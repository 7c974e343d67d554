package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"codeberg.org/mutker/climated/internal/logger"
)

// Manager decides whether an alert fires and dispatches it. Concurrent
// callers are safe; the cooldown decision happens under the lock, the
// dispatch (logging, playback) happens outside it.
type Manager struct {
	cfg    Config
	player Player
	now    func() time.Time

	mu        sync.Mutex
	lastFired map[string]time.Time
}

// NewManager builds a manager. A nil player disables audio regardless
// of configuration.
func NewManager(cfg Config, player Player) *Manager {
	return &Manager{
		cfg:       cfg,
		player:    player,
		now:       time.Now,
		lastFired: make(map[string]time.Time),
	}
}

// CheckThresholds compares a reading against the configured bounds and
// triggers any alerts that apply. Temperature and humidity are checked
// independently, so one reading can raise two alerts.
func (m *Manager) CheckThresholds(ctx context.Context, temperatureC, humidity float64) {
	t := m.cfg.Thresholds

	switch {
	case temperatureC < t.TemperatureMinC:
		m.Trigger(ctx, KindTooCold,
			fmt.Sprintf("temperature %.1f°C below minimum %.1f°C", temperatureC, t.TemperatureMinC))
	case temperatureC > t.TemperatureMaxC:
		m.Trigger(ctx, KindTooHot,
			fmt.Sprintf("temperature %.1f°C above maximum %.1f°C", temperatureC, t.TemperatureMaxC))
	}

	switch {
	case humidity < t.HumidityMinPct:
		m.Trigger(ctx, KindTooDry,
			fmt.Sprintf("humidity %.1f%% below minimum %.1f%%", humidity, t.HumidityMinPct))
	case humidity > t.HumidityMaxPct:
		m.Trigger(ctx, KindTooHumid,
			fmt.Sprintf("humidity %.1f%% above maximum %.1f%%", humidity, t.HumidityMaxPct))
	}
}

// Trigger fires an alert of the given kind unless it is still cooling
// down. It reports whether the alert actually fired.
func (m *Manager) Trigger(ctx context.Context, kind, message string) bool {
	if !m.cfg.Enabled {
		return false
	}

	m.mu.Lock()
	now := m.now()
	if last, ok := m.lastFired[kind]; ok && now.Sub(last) < m.cfg.Cooldown {
		m.mu.Unlock()

		return false
	}
	m.lastFired[kind] = now
	m.mu.Unlock()

	logger.Warn().
		Str("kind", kind).
		Msg("ALERT: " + message)

	m.playSound(ctx, kind)

	return true
}

func (m *Manager) playSound(ctx context.Context, kind string) {
	if !m.cfg.AudioEnabled || m.player == nil {
		return
	}

	path, ok := m.cfg.Sounds[kind]
	if !ok || path == "" {
		return
	}

	if err := m.player.Play(ctx, path); err != nil {
		logger.Debug().
			Err(err).
			Str("kind", kind).
			Str("sound", path).
			Msg("Alert sound playback failed")
	}
}
