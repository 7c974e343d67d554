package alert

import "codeberg.org/mutker/climated/internal/errors"

const (
	ErrPlaybackFailed errors.ErrorCode = "alert_playback_failed"
)
