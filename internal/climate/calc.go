// Package climate holds the meteorological calculations derived from a
// raw temperature/humidity pair. All functions are pure.
package climate

import (
	"math"
	"strings"
)

const (
	// Magnus formula constants
	magnusA = 17.27
	magnusB = 237.7

	// Heat index is only defined above 80°F
	heatIndexMinFahrenheit = 80.0

	// Fixed comfort classification bounds, independent of the
	// configurable alert thresholds
	comfortMinCelsius  = 18.0
	comfortMaxCelsius  = 26.0
	comfortMinHumidity = 30.0
	comfortMaxHumidity = 60.0

	comfortSeparator = "_and_"
)

// Comfort classification tags
const (
	Comfortable = "comfortable"
	TooCold     = "too_cold"
	TooHot      = "too_hot"
	TooDry      = "too_dry"
	TooHumid    = "too_humid"
)

// Metrics bundles the values derived from a single reading.
// HeatIndexC is nil below the heat index applicability threshold.
type Metrics struct {
	TemperatureF float64
	DewPointC    float64
	HeatIndexC   *float64
	ComfortLevel string
}

// CToF converts Celsius to Fahrenheit
func CToF(celsius float64) float64 {
	return celsius*9/5 + 32
}

// FToC converts Fahrenheit to Celsius
func FToC(fahrenheit float64) float64 {
	return (fahrenheit - 32) * 5 / 9
}

// DewPoint computes the dew point temperature in Celsius using the
// Magnus formula, rounded to one decimal. For humidity <= 100 the
// result never exceeds the air temperature.
func DewPoint(temperatureC, humidity float64) float64 {
	alpha := (magnusA*temperatureC)/(magnusB+temperatureC) + math.Log(humidity/100)
	dewPoint := (magnusB * alpha) / (magnusA - alpha)

	return round1(dewPoint)
}

// HeatIndex computes the apparent temperature in Celsius using the
// NOAA regression, rounded to one decimal. Returns nil when the
// temperature is below 80°F, where the heat index is not defined.
func HeatIndex(temperatureC, humidity float64) *float64 {
	tempF := CToF(temperatureC)
	if tempF < heatIndexMinFahrenheit {
		return nil
	}

	const (
		c1 = -42.379
		c2 = 2.04901523
		c3 = 10.14333127
		c4 = -0.22475541
		c5 = -0.00683783
		c6 = -0.05481717
		c7 = 0.00122874
		c8 = 0.00085282
		c9 = -0.00000199
	)

	hiF := c1 + c2*tempF + c3*humidity +
		c4*tempF*humidity + c5*tempF*tempF +
		c6*humidity*humidity + c7*tempF*tempF*humidity +
		c8*tempF*humidity*humidity +
		c9*tempF*tempF*humidity*humidity

	hiC := round1(FToC(hiF))

	return &hiC
}

// ComfortLevel classifies a reading against the fixed comfort bounds.
// Violations are joined in evaluation order, temperature before
// humidity.
func ComfortLevel(temperatureC, humidity float64) string {
	var issues []string

	if temperatureC < comfortMinCelsius {
		issues = append(issues, TooCold)
	} else if temperatureC > comfortMaxCelsius {
		issues = append(issues, TooHot)
	}

	if humidity < comfortMinHumidity {
		issues = append(issues, TooDry)
	} else if humidity > comfortMaxHumidity {
		issues = append(issues, TooHumid)
	}

	if len(issues) == 0 {
		return Comfortable
	}

	return strings.Join(issues, comfortSeparator)
}

// Derive computes all derived metrics for a reading
func Derive(temperatureC, humidity float64) Metrics {
	return Metrics{
		TemperatureF: CToF(temperatureC),
		DewPointC:    DewPoint(temperatureC, humidity),
		HeatIndexC:   HeatIndex(temperatureC, humidity),
		ComfortLevel: ComfortLevel(temperatureC, humidity),
	}
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}
