// Package alert raises threshold alerts with per-kind cooldowns and
// optional audio playback.
package alert

import (
	"context"
	"time"
)

// Alert kinds raised by threshold checks. Each kind tracks its own
// cooldown window, so a too_hot alert never suppresses a too_dry one.
const (
	KindTooCold  = "too_cold"
	KindTooHot   = "too_hot"
	KindTooDry   = "too_dry"
	KindTooHumid = "too_humid"
)

// Thresholds are the alerting bounds for ambient conditions.
type Thresholds struct {
	TemperatureMinC float64
	TemperatureMaxC float64
	HumidityMinPct  float64
	HumidityMaxPct  float64
}

// Config controls alert behavior.
type Config struct {
	Enabled      bool
	Cooldown     time.Duration
	AudioEnabled bool
	Thresholds   Thresholds
	// Sounds maps an alert kind to an audio file path. Missing entries
	// mean the alert fires silently.
	Sounds map[string]string
}

// Player plays an alert sound. Playback failures are logged and never
// propagate to the caller.
type Player interface {
	Play(ctx context.Context, path string) error
}
