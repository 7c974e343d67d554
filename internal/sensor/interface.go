package sensor

import "time"

// Reading is a single validated measurement. PressureHPa is only set
// by sensors that measure pressure (BME280).
type Reading struct {
	TemperatureC float64
	Humidity     float64
	PressureHPa  *float64
}

// Sensor is the capability contract every climate sensor implements.
// Read retries transient faults internally and returns an error only
// after exhausting its retry budget. Availability is defined as a
// single successful read.
type Sensor interface {
	Read() (Reading, error)
	IsAvailable() bool
	Cleanup() error
}

// Config selects and parameterizes the sensor driver
type Config struct {
	Type       string
	GPIOPin    int
	I2CAddress int
	MaxRetries int
	RetryDelay time.Duration // zero selects the driver default
}
