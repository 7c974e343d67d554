package sensor

import "codeberg.org/mutker/climated/internal/errors"

const (
	// Initialization Errors
	ErrInitFailed      = errors.ErrorCode("sensor_init_failed")
	ErrUnsupportedType = errors.ErrorCode("sensor_unsupported_type")

	// Read Errors
	ErrReadFailed   = errors.ErrorCode("sensor_read_failed")
	ErrValueMissing = errors.ErrorCode("sensor_value_missing")
	ErrOutOfRange   = errors.ErrorCode("sensor_value_out_of_range")

	// Lifecycle Errors
	ErrCleanupFailed = errors.ErrorCode("sensor_cleanup_failed")
)
