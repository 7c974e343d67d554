package sensor

import (
	"time"

	"codeberg.org/mutker/climated/internal/logger"
	"github.com/d2r2/go-dht"
)

const (
	dht22TempMin = -40
	dht22TempMax = 80

	dht22DefaultRetryDelay = 2 * time.Second
)

// dht22Sensor reads a DHT22 over its single-wire GPIO protocol
type dht22Sensor struct {
	retryingReader
	pin int
}

// NewDHT22 creates a DHT22 driver on the configured GPIO pin (BCM
// numbering).
func NewDHT22(cfg Config) (Sensor, error) {
	retryDelay := cfg.RetryDelay
	if retryDelay == 0 {
		retryDelay = dht22DefaultRetryDelay
	}

	s := &dht22Sensor{pin: cfg.GPIOPin}
	s.retryingReader = retryingReader{
		name:       "dht22",
		acquire:    s.acquireRaw,
		tempMin:    dht22TempMin,
		tempMax:    dht22TempMax,
		maxRetries: cfg.MaxRetries,
		retryDelay: retryDelay,
	}

	logger.Info().Msgf("DHT22 sensor initialized on GPIO pin %d", s.pin)

	return s, nil
}

func (s *dht22Sensor) acquireRaw() (Reading, error) {
	temperature, humidity, err := dht.ReadDHTxx(dht.DHT22, s.pin, false)
	if err != nil {
		return Reading{}, err
	}

	return Reading{
		TemperatureC: float64(temperature),
		Humidity:     float64(humidity),
	}, nil
}

func (s *dht22Sensor) Cleanup() error {
	// The single-wire bus holds no resources between reads
	logger.Debug().Msg("DHT22 sensor cleaned up")
	return nil
}
