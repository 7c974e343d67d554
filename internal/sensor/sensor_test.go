package sensor_test

import (
	"testing"

	"codeberg.org/mutker/climated/internal/errors"
	"codeberg.org/mutker/climated/internal/sensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T, maxRetries int) *sensor.Mock {
	t.Helper()
	return sensor.NewMock(sensor.Config{Type: "mock", MaxRetries: maxRetries})
}

func TestNewSelectsDriverByType(t *testing.T) {
	s, err := sensor.New(sensor.Config{Type: "mock", MaxRetries: 3})
	require.NoError(t, err)
	assert.NotNil(t, s)

	_, err = sensor.New(sensor.Config{Type: "sht31", MaxRetries: 3})
	require.Error(t, err)
	assert.Equal(t, sensor.ErrUnsupportedType, errors.CodeOf(err))
}

func TestMockIsDeterministic(t *testing.T) {
	a := newMock(t, 3)
	b := newMock(t, 3)

	for i := 0; i < 8; i++ {
		readingA, errA := a.Read()
		readingB, errB := b.Read()
		require.NoError(t, errA)
		require.NoError(t, errB)
		assert.Equal(t, readingA, readingB, "iteration %d", i)
	}
}

func TestReadRetriesUntilValid(t *testing.T) {
	m := newMock(t, 3)

	// Two invalid attempts, then the default sequence takes over
	m.Enqueue(sensor.Reading{TemperatureC: 22, Humidity: 150})
	m.EnqueueError()

	reading, err := m.Read()
	require.NoError(t, err)
	assert.Equal(t, 3, m.Acquires())
	assert.InDelta(t, 22.0, reading.TemperatureC, 0.001)
	assert.InDelta(t, 45.0, reading.Humidity, 0.001)
}

func TestReadFailsAfterMaxRetries(t *testing.T) {
	m := newMock(t, 3)

	m.Enqueue(sensor.Reading{TemperatureC: 22, Humidity: 150})
	m.Enqueue(sensor.Reading{TemperatureC: 22, Humidity: -1})
	m.EnqueueError()

	_, err := m.Read()
	require.Error(t, err)
	assert.Equal(t, sensor.ErrReadFailed, errors.CodeOf(err))
	assert.Equal(t, 3, m.Acquires())
}

func TestReadRejectsOutOfRangeTemperature(t *testing.T) {
	m := newMock(t, 1)

	m.Enqueue(sensor.Reading{TemperatureC: 120, Humidity: 50})

	_, err := m.Read()
	require.Error(t, err)
	assert.Equal(t, sensor.ErrReadFailed, errors.CodeOf(err))
}

func TestIsAvailable(t *testing.T) {
	m := newMock(t, 1)
	assert.True(t, m.IsAvailable())

	unavailable := newMock(t, 2)
	unavailable.EnqueueError()
	unavailable.EnqueueError()
	assert.False(t, unavailable.IsAvailable())
}

func TestReadRoundsToOneDecimal(t *testing.T) {
	m := newMock(t, 1)

	pressure := 1013.267
	m.Enqueue(sensor.Reading{TemperatureC: 21.456, Humidity: 51.949, PressureHPa: &pressure})

	reading, err := m.Read()
	require.NoError(t, err)
	assert.InDelta(t, 21.5, reading.TemperatureC, 0.001)
	assert.InDelta(t, 51.9, reading.Humidity, 0.001)
	require.NotNil(t, reading.PressureHPa)
	assert.InDelta(t, 1013.3, *reading.PressureHPa, 0.001)
}

func TestCleanupIsObservable(t *testing.T) {
	m := newMock(t, 1)
	require.NoError(t, m.Cleanup())
	assert.True(t, m.WasCleaned())
}
