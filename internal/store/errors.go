package store

import "codeberg.org/mutker/climated/internal/errors"

const (
	// Configuration Errors
	ErrInvalidDBPath = errors.ErrorCode("store_invalid_db_path")
	ErrInvalidPeriod = errors.ErrorCode("store_invalid_period")

	// Storage Errors
	ErrStorageInit      = errors.ErrorCode("store_init_failed")
	ErrStorageAccess    = errors.ErrorCode("store_access_failed")
	ErrStorageClose     = errors.ErrorCode("store_close_failed")
	ErrSchemaInitFailed = errors.ErrorCode("store_schema_init_failed")

	// Export Errors
	ErrExportFailed = errors.ErrorCode("store_export_failed")
)
