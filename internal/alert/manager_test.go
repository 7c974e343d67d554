package alert

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	mu    sync.Mutex
	plays []string
}

func (p *fakePlayer) Play(_ context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plays = append(p.plays, path)

	return nil
}

func (p *fakePlayer) played() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.plays...)
}

func testConfig() Config {
	return Config{
		Enabled:      true,
		Cooldown:     30 * time.Minute,
		AudioEnabled: true,
		Thresholds: Thresholds{
			TemperatureMinC: 15.0,
			TemperatureMaxC: 30.0,
			HumidityMinPct:  30.0,
			HumidityMaxPct:  70.0,
		},
		Sounds: map[string]string{
			KindTooCold:  "/sounds/cold.wav",
			KindTooHot:   "/sounds/hot.wav",
			KindTooDry:   "/sounds/dry.wav",
			KindTooHumid: "/sounds/humid.wav",
		},
	}
}

func newTestManager(cfg Config, player Player) (*Manager, *time.Time) {
	m := NewManager(cfg, player)
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	return m, &clock
}

func TestTriggerFiresOnce(t *testing.T) {
	player := &fakePlayer{}
	m, _ := newTestManager(testConfig(), player)
	ctx := context.Background()

	assert.True(t, m.Trigger(ctx, KindTooHot, "too hot"))
	assert.False(t, m.Trigger(ctx, KindTooHot, "still too hot"))
	assert.Equal(t, []string{"/sounds/hot.wav"}, player.played())
}

func TestTriggerRefiresAfterCooldown(t *testing.T) {
	player := &fakePlayer{}
	m, clock := newTestManager(testConfig(), player)
	ctx := context.Background()

	require.True(t, m.Trigger(ctx, KindTooDry, "too dry"))

	*clock = clock.Add(29 * time.Minute)
	assert.False(t, m.Trigger(ctx, KindTooDry, "too dry"))

	*clock = clock.Add(2 * time.Minute)
	assert.True(t, m.Trigger(ctx, KindTooDry, "too dry"))
	assert.Len(t, player.played(), 2)
}

func TestCooldownsAreIndependent(t *testing.T) {
	player := &fakePlayer{}
	m, _ := newTestManager(testConfig(), player)
	ctx := context.Background()

	assert.True(t, m.Trigger(ctx, KindTooHot, "too hot"))
	assert.True(t, m.Trigger(ctx, KindTooHumid, "too humid"))
	assert.Len(t, player.played(), 2)
}

func TestTriggerDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	player := &fakePlayer{}
	m, _ := newTestManager(cfg, player)

	assert.False(t, m.Trigger(context.Background(), KindTooCold, "too cold"))
	assert.Empty(t, player.played())
}

func TestCheckThresholds(t *testing.T) {
	tests := []struct {
		name         string
		temperatureC float64
		humidity     float64
		wantKinds    []string
	}{
		{"comfortable", 22.0, 50.0, nil},
		{"too cold", 10.0, 50.0, []string{KindTooCold}},
		{"too hot", 35.0, 50.0, []string{KindTooHot}},
		{"too dry", 22.0, 20.0, []string{KindTooDry}},
		{"too humid", 22.0, 80.0, []string{KindTooHumid}},
		{"hot and humid", 35.0, 80.0, []string{KindTooHot, KindTooHumid}},
		{"at bounds", 15.0, 30.0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := &fakePlayer{}
			m, _ := newTestManager(testConfig(), player)

			m.CheckThresholds(context.Background(), tt.temperatureC, tt.humidity)

			var wantSounds []string
			for _, kind := range tt.wantKinds {
				wantSounds = append(wantSounds, testConfig().Sounds[kind])
			}
			assert.Equal(t, wantSounds, player.played())
		})
	}
}

func TestAudioDisabledSkipsPlayback(t *testing.T) {
	cfg := testConfig()
	cfg.AudioEnabled = false
	player := &fakePlayer{}
	m, _ := newTestManager(cfg, player)

	assert.True(t, m.Trigger(context.Background(), KindTooCold, "too cold"))
	assert.Empty(t, player.played())
}
