package poller

import (
	"time"

	"codeberg.org/mutker/dashmon/internal/errors"
)

const (
	defaultInterval  = 5 * time.Second
	defaultMaxErrors = 3
)

type Config struct {
	Interval  time.Duration
	MaxErrors int
}

func DefaultConfig() Config {
	return Config{
		Interval:  defaultInterval,
		MaxErrors: defaultMaxErrors,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval.String())
	}
	if c.MaxErrors <= 0 {
		return errFactory.WithData(ErrInvalidConfig, "max_errors must be positive")
	}
	return nil
}
