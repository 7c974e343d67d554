// Package publish pushes individual sensor values to an external
// collector command. Publishing is best effort; the daemon never
// blocks or fails on a collector outage.
package publish

import (
	"context"
	"os/exec"
	"strconv"
	"time"

	"codeberg.org/mutker/climated/internal/errors"
	"codeberg.org/mutker/climated/internal/logger"
)

const publishTimeout = 5 * time.Second

const (
	ErrPublishFailed errors.ErrorCode = "publish_failed"
)

// Publisher forwards a single named value to an external collector.
// The unit is optional; an empty string omits it from the invocation.
type Publisher interface {
	Publish(ctx context.Context, sensor string, value float64, unit string) error
}

// Config controls publishing.
type Config struct {
	Enabled bool
	Command string
}

// New returns a command-backed publisher, or a no-op publisher when
// publishing is disabled or no command is configured.
func New(cfg Config) Publisher {
	if !cfg.Enabled || cfg.Command == "" {
		return noopPublisher{}
	}

	return &execPublisher{command: cfg.Command}
}

type execPublisher struct {
	command string
}

func (p *execPublisher) Publish(ctx context.Context, sensor string, value float64, unit string) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	args := []string{
		"--sensor", sensor,
		"--value", strconv.FormatFloat(value, 'f', 1, 64),
	}
	if unit != "" {
		args = append(args, "--unit", unit)
	}

	cmd := exec.CommandContext(ctx, p.command, args...)
	if err := cmd.Run(); err != nil {
		return errors.New().Wrap(ErrPublishFailed, err)
	}

	logger.Debug().
		Str("sensor", sensor).
		Float64("value", value).
		Msg("Published sensor value")

	return nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, float64, string) error {
	return nil
}
