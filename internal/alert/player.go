package alert

import (
	"context"
	"os/exec"
	"time"

	"codeberg.org/mutker/climated/internal/errors"
)

const playbackTimeout = 10 * time.Second

type aplayPlayer struct{}

// NewPlayer returns a Player backed by the aplay command.
func NewPlayer() Player {
	return aplayPlayer{}
}

func (aplayPlayer) Play(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, playbackTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "aplay", "-q", path)
	if err := cmd.Run(); err != nil {
		return errors.New().Wrap(ErrPlaybackFailed, err)
	}

	return nil
}
