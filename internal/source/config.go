package source

import (
	"net/url"
	"time"

	"codeberg.org/mutker/dashmon/internal/errors"
)

const defaultTimeout = 10 * time.Second

type Config struct {
	Mode    Mode
	BaseURL string
	Dir     string
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Mode:    ModeHTTP,
		BaseURL: "http://localhost:8080/sample",
		Timeout: defaultTimeout,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	switch c.Mode {
	case ModeHTTP:
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errFactory.WithData(ErrInvalidConfig, "api_base_url must be an absolute URL")
		}
	case ModeFile:
		if c.Dir == "" {
			return errFactory.WithData(ErrInvalidConfig, "source.dir is required in file mode")
		}
	case ModeSample:
	default:
		return errFactory.WithData(ErrInvalidConfig, "unknown source mode "+string(c.Mode))
	}

	return nil
}

// New builds the Source selected by cfg.Mode
func New(cfg Config) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Mode {
	case ModeSample:
		return NewSample(), nil
	case ModeFile:
		return NewFile(cfg.Dir, NewSample()), nil
	default:
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		return NewHTTP(cfg.BaseURL, timeout), nil
	}
}
