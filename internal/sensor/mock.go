package sensor

import (
	"sync"
	"time"

	"codeberg.org/mutker/climated/internal/errors"
)

const mockRetryDelay = time.Millisecond

// mockSequence is the fixed reading cycle served once any scripted
// results are exhausted. Deterministic on purpose: two mocks with the
// same script always produce the same readings.
var mockSequence = []Reading{
	{TemperatureC: 22.0, Humidity: 45.0},
	{TemperatureC: 22.4, Humidity: 46.5},
	{TemperatureC: 22.8, Humidity: 48.0},
	{TemperatureC: 22.2, Humidity: 44.0},
}

type mockResult struct {
	reading Reading
	err     error
}

// Mock is a deterministic test double. It shares the retry and
// validation core with the hardware drivers, so scripted raw results
// exercise the same code paths a flaky physical sensor would.
type Mock struct {
	retryingReader

	mu       sync.Mutex
	script   []mockResult
	cursor   int
	acquires int
	cleaned  bool
}

// NewMock creates a mock sensor honoring cfg.MaxRetries. The retry
// delay is forced to a nominal value so tests stay fast.
func NewMock(cfg Config) *Mock {
	m := &Mock{}
	m.retryingReader = retryingReader{
		name:       "mock",
		acquire:    m.acquireRaw,
		tempMin:    dht22TempMin,
		tempMax:    dht22TempMax,
		maxRetries: cfg.MaxRetries,
		retryDelay: mockRetryDelay,
	}

	return m
}

// Enqueue schedules a raw reading for the next acquire attempt. The
// reading is fed through validation, so out-of-range values trigger
// the normal retry behavior.
func (m *Mock) Enqueue(reading Reading) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockResult{reading: reading})
}

// EnqueueError schedules a transient acquire failure
func (m *Mock) EnqueueError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockResult{err: errors.New().New(ErrReadFailed)})
}

// Acquires reports how many raw acquisition attempts were made
func (m *Mock) Acquires() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquires
}

// WasCleaned reports whether Cleanup has been called
func (m *Mock) WasCleaned() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleaned
}

func (m *Mock) acquireRaw() (Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.acquires++

	if len(m.script) > 0 {
		next := m.script[0]
		m.script = m.script[1:]
		return next.reading, next.err
	}

	reading := mockSequence[m.cursor%len(mockSequence)]
	m.cursor++

	return reading, nil
}

func (m *Mock) Cleanup() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleaned = true
	return nil
}
