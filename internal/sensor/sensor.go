package sensor

import (
	"math"
	"time"

	"codeberg.org/mutker/climated/internal/errors"
	"codeberg.org/mutker/climated/internal/logger"
)

// New constructs the sensor selected by cfg.Type. The choice is made
// once at startup; everything downstream sees only the Sensor
// interface.
func New(cfg Config) (Sensor, error) {
	switch cfg.Type {
	case "dht22":
		return NewDHT22(cfg)
	case "bme280":
		return NewBME280(cfg)
	case "mock":
		return NewMock(cfg), nil
	default:
		return nil, errors.New().WithData(ErrUnsupportedType, cfg.Type)
	}
}

// retryingReader is the shared read core: every driver supplies an
// acquire function and its valid temperature range, and inherits the
// retry and validation policy.
type retryingReader struct {
	name       string
	acquire    func() (Reading, error)
	tempMin    float64
	tempMax    float64
	maxRetries int
	retryDelay time.Duration
}

func (r *retryingReader) Read() (Reading, error) {
	var lastErr error

	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		reading, err := r.acquire()
		if err == nil {
			err = r.validate(reading)
		}
		if err == nil {
			reading.TemperatureC = round1(reading.TemperatureC)
			reading.Humidity = round1(reading.Humidity)
			if reading.PressureHPa != nil {
				pressure := round1(*reading.PressureHPa)
				reading.PressureHPa = &pressure
			}

			return reading, nil
		}

		lastErr = err
		logger.Debug().Msgf("%s read attempt %d/%d failed: %v", r.name, attempt, r.maxRetries, err)

		if attempt < r.maxRetries {
			time.Sleep(r.retryDelay)
		}
	}

	return Reading{}, errors.New().Wrap(ErrReadFailed, lastErr)
}

func (r *retryingReader) IsAvailable() bool {
	_, err := r.Read()
	return err == nil
}

func (r *retryingReader) validate(reading Reading) error {
	errFactory := errors.New()

	if math.IsNaN(reading.TemperatureC) || math.IsNaN(reading.Humidity) {
		return errFactory.New(ErrValueMissing)
	}
	if reading.TemperatureC < r.tempMin || reading.TemperatureC > r.tempMax {
		return errFactory.WithData(ErrOutOfRange, struct {
			Field string
			Value float64
			Min   float64
			Max   float64
		}{"temperature", reading.TemperatureC, r.tempMin, r.tempMax})
	}
	if reading.Humidity < 0 || reading.Humidity > 100 {
		return errFactory.WithData(ErrOutOfRange, struct {
			Field string
			Value float64
			Min   float64
			Max   float64
		}{"humidity", reading.Humidity, 0, 100})
	}

	return nil
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}
