package telemetry

import "codeberg.org/mutker/dashmon/internal/errors"

const (
	// File system permissions and paths
	defaultDirPerm      = 0o755
	defaultDBPath       = "/var/lib/dashmon/telemetry.db"
	defaultBatchSize    = 10
	defaultBatchTimeout = 5
)

type Config struct {
	Enabled      bool
	DBPath       string
	BatchSize    int
	BatchTimeout int // seconds
}

func DefaultConfig() Config {
	return Config{
		Enabled:      false, // Disabled by default
		DBPath:       defaultDBPath,
		BatchSize:    defaultBatchSize,
		BatchTimeout: defaultBatchTimeout,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate storage settings if telemetry is enabled
	if !c.Enabled {
		return nil
	}
	if c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.BatchSize < 0 || c.BatchTimeout < 0 {
		return errFactory.WithData(ErrInvalidConfig, "batch settings must not be negative")
	}
	return nil
}
