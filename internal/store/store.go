package store

import (
	"context"
	"database/sql"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mutker/climated/internal/errors"
	"codeberg.org/mutker/climated/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

const (
	defaultDirPerm = 0o755

	hoursPerDay  = 24
	daysPerWeek  = 7
	daysPerMonth = 30
)

type sqliteRepository struct {
	db  *sql.DB
	cfg Config
	mu  sync.Mutex
}

// NewRepository opens (or creates) the sqlite store and initializes
// its schema. Failure here is fatal at startup.
func NewRepository(cfg Config) (Repository, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().Msgf("Initializing readings repository at: %s", cfg.Path)

	if err := os.MkdirAll(filepath.Dir(cfg.Path), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	dsn := cfg.Path + "?_journal=WAL"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	return &sqliteRepository{
		db:  db,
		cfg: cfg,
	}, nil
}

func (r *sqliteRepository) LogReading(ctx context.Context, record *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	timestamp := record.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	_, err := r.db.ExecContext(ctx, insertReadingSQL,
		timestamp.Unix(),
		record.TemperatureC,
		record.TemperatureF,
		record.Humidity,
		nullFloat(record.DewPointC),
		nullFloat(record.HeatIndexC),
		nullString(record.ComfortLevel),
	)
	if err != nil {
		return errors.New().Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) LatestReading(ctx context.Context) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row := r.db.QueryRowContext(ctx, selectColumnsSQL+`
        ORDER BY timestamp DESC, id DESC
        LIMIT 1`)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New().Wrap(ErrStorageAccess, err)
	}

	return record, nil
}

func (r *sqliteRepository) HistoricalData(ctx context.Context, start, end time.Time, limit int) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.historicalData(ctx, start, end, limit)
}

// historicalData expects r.mu to be held
func (r *sqliteRepository) historicalData(ctx context.Context, start, end time.Time, limit int) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, selectColumnsSQL+`
        WHERE timestamp BETWEEN ? AND ?
        ORDER BY timestamp DESC, id DESC
        LIMIT ?`,
		start.Unix(), end.Unix(), limit)
	if err != nil {
		return nil, errors.New().Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, errors.New().Wrap(ErrStorageAccess, err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New().Wrap(ErrStorageAccess, err)
	}

	return records, nil
}

func (r *sqliteRepository) Statistics(ctx context.Context, period Period) (*Statistics, error) {
	errFactory := errors.New()

	now := time.Now()
	var start time.Time
	switch period {
	case PeriodDay:
		start = now.Add(-hoursPerDay * time.Hour)
	case PeriodWeek:
		start = now.AddDate(0, 0, -daysPerWeek)
	case PeriodMonth:
		start = now.AddDate(0, 0, -daysPerMonth)
	default:
		return nil, errFactory.WithData(ErrInvalidPeriod, string(period))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		tempMin, tempMax, tempAvg sql.NullFloat64
		humMin, humMax, humAvg    sql.NullFloat64
		count                     int64
	)
	err := r.db.QueryRowContext(ctx, `
        SELECT
            MIN(temperature_c), MAX(temperature_c), AVG(temperature_c),
            MIN(humidity), MAX(humidity), AVG(humidity),
            COUNT(*)
        FROM climate_readings
        WHERE timestamp >= ?`,
		start.Unix()).
		Scan(&tempMin, &tempMax, &tempAvg, &humMin, &humMax, &humAvg, &count)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	if count == 0 {
		return nil, nil
	}

	return &Statistics{
		Period:    period,
		StartTime: start,
		EndTime:   now,
		Temperature: MinMaxAvg{
			Min: round1(tempMin.Float64),
			Max: round1(tempMax.Float64),
			Avg: round1(tempAvg.Float64),
		},
		Humidity: MinMaxAvg{
			Min: round1(humMin.Float64),
			Max: round1(humMax.Float64),
			Avg: round1(humAvg.Float64),
		},
		ReadingCount: count,
	}, nil
}

func (r *sqliteRepository) CleanupOldData(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -r.cfg.RetentionDays)

	result, err := r.db.ExecContext(ctx, `
        DELETE FROM climate_readings
        WHERE timestamp < ?`,
		cutoff.Unix())
	if err != nil {
		return 0, errors.New().Wrap(ErrStorageAccess, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, errors.New().Wrap(ErrStorageAccess, err)
	}

	return deleted, nil
}

func (r *sqliteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		record    Record
		timestamp int64
		dewPoint  sql.NullFloat64
		heatIndex sql.NullFloat64
		comfort   sql.NullString
	)

	err := row.Scan(&record.ID, &timestamp,
		&record.TemperatureC, &record.TemperatureF, &record.Humidity,
		&dewPoint, &heatIndex, &comfort)
	if err != nil {
		return nil, err
	}

	record.Timestamp = time.Unix(timestamp, 0).UTC()
	if dewPoint.Valid {
		record.DewPointC = &dewPoint.Float64
	}
	if heatIndex.Valid {
		record.HeatIndexC = &heatIndex.Float64
	}
	record.ComfortLevel = comfort.String

	return &record, nil
}

func nullFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}
