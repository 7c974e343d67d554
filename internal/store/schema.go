package store

import (
	"database/sql"

	"codeberg.org/mutker/climated/internal/errors"
)

const (
	createTablesSQL = `
    CREATE TABLE IF NOT EXISTS climate_readings (
        id            INTEGER PRIMARY KEY AUTOINCREMENT,
        timestamp     INTEGER NOT NULL,
        temperature_c REAL NOT NULL,
        temperature_f REAL NOT NULL,
        humidity      REAL NOT NULL,
        dew_point_c   REAL,
        heat_index_c  REAL,
        comfort_level TEXT
    );
    CREATE INDEX IF NOT EXISTS idx_climate_readings_timestamp
        ON climate_readings(timestamp);`

	insertReadingSQL = `
    INSERT INTO climate_readings (
        timestamp, temperature_c, temperature_f, humidity,
        dew_point_c, heat_index_c, comfort_level
    ) VALUES (?, ?, ?, ?, ?, ?, ?)`

	selectColumnsSQL = `
    SELECT id, timestamp, temperature_c, temperature_f, humidity,
           dew_point_c, heat_index_c, comfort_level
    FROM climate_readings`
)

// initSchema creates the readings table and its timestamp index
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(createTablesSQL); err != nil {
		return errors.New().Wrap(ErrSchemaInitFailed, err)
	}

	return nil
}
