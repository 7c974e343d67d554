package store

import (
	"context"
	"time"

	"codeberg.org/mutker/climated/internal/errors"
)

// Record is one persisted climate reading. Rows are append-only:
// created by the persistence loop, removed only by retention pruning.
type Record struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	TemperatureC float64   `json:"temperature_c"`
	TemperatureF float64   `json:"temperature_f"`
	Humidity     float64   `json:"humidity"`
	DewPointC    *float64  `json:"dew_point_c,omitempty"`
	HeatIndexC   *float64  `json:"heat_index_c,omitempty"`
	ComfortLevel string    `json:"comfort_level,omitempty"`
}

// Period selects the statistics aggregation window
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// MinMaxAvg is an aggregate over one measured dimension
type MinMaxAvg struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// Statistics summarizes the readings within a period
type Statistics struct {
	Period       Period    `json:"period"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Temperature  MinMaxAvg `json:"temperature"`
	Humidity     MinMaxAvg `json:"humidity"`
	ReadingCount int64     `json:"reading_count"`
}

// Repository is the persistence contract for the readings history
type Repository interface {
	LogReading(ctx context.Context, record *Record) error
	LatestReading(ctx context.Context) (*Record, error)
	HistoricalData(ctx context.Context, start, end time.Time, limit int) ([]Record, error)
	Statistics(ctx context.Context, period Period) (*Statistics, error)
	CleanupOldData(ctx context.Context) (int64, error)
	ExportJSON(ctx context.Context, path string, start, end time.Time) error
	ExportCSV(ctx context.Context, path string, start, end time.Time) error
	Close() error
}

// Config locates the store and bounds its retention
type Config struct {
	Path          string
	RetentionDays int
}

func (c Config) Validate() error {
	if c.Path == "" {
		return errors.New().New(ErrInvalidDBPath)
	}
	return nil
}
