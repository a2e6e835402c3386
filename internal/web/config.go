package web

import "codeberg.org/mutker/dashmon/internal/errors"

const defaultAddr = ":8080"

type Config struct {
	Addr          string
	SampleBackend bool
	CORSOrigins   []string
}

func DefaultConfig() Config {
	return Config{
		Addr:          defaultAddr,
		SampleBackend: true,
		CORSOrigins:   []string{"*"},
	}
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New().WithData(ErrInvalidConfig, "server addr is required")
	}
	return nil
}
