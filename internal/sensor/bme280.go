package sensor

import (
	"time"

	"codeberg.org/mutker/climated/internal/errors"
	"codeberg.org/mutker/climated/internal/logger"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"
)

const (
	bme280TempMin = -40
	bme280TempMax = 85

	bme280DefaultRetryDelay = 1 * time.Second

	pascalsPerHectopascal = 100
)

// bme280Sensor reads a BME280 over I2C via periph.io
type bme280Sensor struct {
	retryingReader
	bus i2c.BusCloser
	dev *bmxx80.Dev
}

// NewBME280 opens the first available I2C bus and probes the device at
// the configured address.
func NewBME280(cfg Config) (Sensor, error) {
	errFactory := errors.New()

	if _, err := host.Init(); err != nil {
		return nil, errFactory.Wrap(ErrInitFailed, err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return nil, errFactory.Wrap(ErrInitFailed, err)
	}

	dev, err := bmxx80.NewI2C(bus, uint16(cfg.I2CAddress), &bmxx80.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, errFactory.Wrap(ErrInitFailed, err)
	}

	retryDelay := cfg.RetryDelay
	if retryDelay == 0 {
		retryDelay = bme280DefaultRetryDelay
	}

	s := &bme280Sensor{bus: bus, dev: dev}
	s.retryingReader = retryingReader{
		name:       "bme280",
		acquire:    s.acquireRaw,
		tempMin:    bme280TempMin,
		tempMax:    bme280TempMax,
		maxRetries: cfg.MaxRetries,
		retryDelay: retryDelay,
	}

	logger.Info().Msgf("BME280 sensor initialized on I2C address 0x%02X", cfg.I2CAddress)

	return s, nil
}

func (s *bme280Sensor) acquireRaw() (Reading, error) {
	var env physic.Env
	if err := s.dev.Sense(&env); err != nil {
		return Reading{}, err
	}

	pressure := float64(env.Pressure) / (pascalsPerHectopascal * float64(physic.Pascal))

	return Reading{
		TemperatureC: env.Temperature.Celsius(),
		Humidity:     float64(env.Humidity) / float64(physic.PercentRH),
		PressureHPa:  &pressure,
	}, nil
}

func (s *bme280Sensor) Cleanup() error {
	errFactory := errors.New()

	if err := s.dev.Halt(); err != nil {
		return errFactory.Wrap(ErrCleanupFailed, err)
	}
	if err := s.bus.Close(); err != nil {
		return errFactory.Wrap(ErrCleanupFailed, err)
	}

	logger.Debug().Msg("BME280 sensor cleaned up")

	return nil
}
