package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"codeberg.org/mutker/climated/internal/errors"
	"codeberg.org/mutker/climated/internal/logger"
)

// exportLimit bounds a bulk export to keep memory use predictable
const exportLimit = 100000

func (r *sqliteRepository) ExportJSON(ctx context.Context, path string, start, end time.Time) error {
	errFactory := errors.New()

	records, err := r.exportRange(ctx, start, end)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errFactory.Wrap(ErrExportFailed, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errFactory.Wrap(ErrExportFailed, err)
	}

	logger.Info().Msgf("Exported %d records to %s", len(records), path)

	return nil
}

func (r *sqliteRepository) ExportCSV(ctx context.Context, path string, start, end time.Time) error {
	errFactory := errors.New()

	records, err := r.exportRange(ctx, start, end)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return errFactory.Wrap(ErrExportFailed, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{
		"id", "timestamp", "temperature_c", "temperature_f",
		"humidity", "dew_point_c", "heat_index_c", "comfort_level",
	}
	if err := writer.Write(header); err != nil {
		return errFactory.Wrap(ErrExportFailed, err)
	}

	for i := range records {
		if err := writer.Write(csvRow(&records[i])); err != nil {
			return errFactory.Wrap(ErrExportFailed, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errFactory.Wrap(ErrExportFailed, err)
	}

	logger.Info().Msgf("Exported %d records to %s", len(records), path)

	return nil
}

func (r *sqliteRepository) exportRange(ctx context.Context, start, end time.Time) ([]Record, error) {
	if start.IsZero() {
		start = time.Unix(0, 0)
	}
	if end.IsZero() {
		end = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.historicalData(ctx, start, end, exportLimit)
}

func csvRow(record *Record) []string {
	return []string{
		strconv.FormatInt(record.ID, 10),
		record.Timestamp.Format(time.RFC3339),
		formatFloat(record.TemperatureC),
		formatFloat(record.TemperatureF),
		formatFloat(record.Humidity),
		formatOptional(record.DewPointC),
		formatOptional(record.HeatIndexC),
		record.ComfortLevel,
	}
}

func formatFloat(value float64) string {
	return fmt.Sprintf("%.1f", value)
}

func formatOptional(value *float64) string {
	if value == nil {
		return ""
	}
	return formatFloat(*value)
}
