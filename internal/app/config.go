package app

import (
	"codeberg.org/mutker/dashmon/internal/card"
	"codeberg.org/mutker/dashmon/internal/errors"
	"codeberg.org/mutker/dashmon/internal/poller"
)

const defaultPageSize = 100

type Config struct {
	PageSize       int
	MaxHistorySize int
	Thresholds     card.Thresholds
	Polling        poller.Config
}

func DefaultConfig() Config {
	return Config{
		PageSize:       defaultPageSize,
		MaxHistorySize: card.DefaultHistorySize,
		Thresholds:     card.DefaultThresholds(),
		Polling:        poller.DefaultConfig(),
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.PageSize <= 0 {
		return errFactory.WithData(ErrInvalidConfig, "page_size must be positive")
	}
	if c.MaxHistorySize <= 0 {
		return errFactory.WithData(ErrInvalidConfig, "max_history_size must be positive")
	}
	t := c.Thresholds
	if t.Warning <= 0 || t.Critical > 100 || t.Warning > t.Critical {
		return errFactory.WithData(ErrInvalidConfig, struct {
			Warning  float64
			Critical float64
		}{t.Warning, t.Critical})
	}
	return c.Polling.Validate()
}
