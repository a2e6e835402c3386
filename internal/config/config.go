package config

import (
	"os"
	"strings"
	"time"

	"codeberg.org/mutker/dashmon/internal/alert"
	"codeberg.org/mutker/dashmon/internal/app"
	"codeberg.org/mutker/dashmon/internal/card"
	"codeberg.org/mutker/dashmon/internal/errors"
	"codeberg.org/mutker/dashmon/internal/logger"
	"codeberg.org/mutker/dashmon/internal/poller"
	"codeberg.org/mutker/dashmon/internal/source"
	"codeberg.org/mutker/dashmon/internal/telemetry"
	"codeberg.org/mutker/dashmon/internal/web"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel  = "info"
	DefaultEnvPrefix = "DASHMON"
	configName       = "dashmon"
	configType       = "toml"
)

type Config struct {
	APIBaseURL string          `mapstructure:"api_base_url"`
	LogLevel   string          `mapstructure:"log_level"`
	Verbose    bool            `mapstructure:"verbose"`
	Source     SourceConfig    `mapstructure:"source"`
	Polling    PollingConfig   `mapstructure:"polling"`
	Alert      AlertConfig     `mapstructure:"alert"`
	Logs       LogsConfig      `mapstructure:"logs"`
	Metrics    MetricsConfig   `mapstructure:"metrics"`
	Server     ServerConfig    `mapstructure:"server"`
	Telemetry  TelemetryConfig `mapstructure:"telemetry"`
}

type SourceConfig struct {
	Mode      string `mapstructure:"mode"`
	Dir       string `mapstructure:"dir"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

type PollingConfig struct {
	IntervalMs int `mapstructure:"interval_ms"`
	MaxErrors  int `mapstructure:"max_errors"`
}

type AlertConfig struct {
	DurationMs int `mapstructure:"duration_ms"`
}

type LogsConfig struct {
	PageSize            int  `mapstructure:"page_size"`
	EnableVirtualScroll bool `mapstructure:"enable_virtual_scroll"`
}

type MetricsConfig struct {
	MaxHistorySize int             `mapstructure:"max_history_size"`
	Threshold      ThresholdConfig `mapstructure:"threshold"`
}

type ThresholdConfig struct {
	Warning  float64 `mapstructure:"warning"`
	Critical float64 `mapstructure:"critical"`
}

type ServerConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	Addr          string   `mapstructure:"addr"`
	SampleBackend bool     `mapstructure:"sample_backend"`
	CORSOrigins   []string `mapstructure:"cors_origins"`
}

type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DBPath       string `mapstructure:"db_path"`
	BatchSize    int    `mapstructure:"batch_size"`
	BatchTimeout int    `mapstructure:"batch_timeout"`
}

func setDefaults(v *viper.Viper) {
	src := source.DefaultConfig()
	pol := poller.DefaultConfig()
	ap := app.DefaultConfig()
	srv := web.DefaultConfig()
	tel := telemetry.DefaultConfig()

	v.SetDefault("api_base_url", src.BaseURL)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("verbose", false)

	v.SetDefault("source.mode", string(src.Mode))
	v.SetDefault("source.dir", "")
	v.SetDefault("source.timeout_ms", src.Timeout.Milliseconds())

	v.SetDefault("polling.interval_ms", pol.Interval.Milliseconds())
	v.SetDefault("polling.max_errors", pol.MaxErrors)

	v.SetDefault("alert.duration_ms", alert.DefaultDuration.Milliseconds())

	v.SetDefault("logs.page_size", ap.PageSize)
	v.SetDefault("logs.enable_virtual_scroll", false)

	v.SetDefault("metrics.max_history_size", ap.MaxHistorySize)
	v.SetDefault("metrics.threshold.warning", ap.Thresholds.Warning)
	v.SetDefault("metrics.threshold.critical", ap.Thresholds.Critical)

	v.SetDefault("server.enabled", true)
	v.SetDefault("server.addr", srv.Addr)
	v.SetDefault("server.sample_backend", srv.SampleBackend)
	v.SetDefault("server.cors_origins", srv.CORSOrigins)

	v.SetDefault("telemetry.enabled", tel.Enabled)
	v.SetDefault("telemetry.db_path", tel.DBPath)
	v.SetDefault("telemetry.batch_size", tel.BatchSize)
	v.SetDefault("telemetry.batch_timeout", tel.BatchTimeout)
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	fs.String("config", "", "Path to the configuration file")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.Bool("verbose", false, "Log every dashboard refresh")
	fs.String("api-base-url", "", "Base URL of the metrics and logs API")
	fs.String("source", "", "Data source mode (http, sample, file)")
	fs.String("source-dir", "", "Directory holding metrics.json and logs.json in file mode")
	fs.Int("interval", 0, "Polling interval in milliseconds")
	fs.Int("max-errors", 0, "Consecutive failures before polling stops")
	fs.String("addr", "", "HTTP listen address")
	fs.Bool("sample-backend", false, "Serve generated sample data under /sample")
	fs.Bool("telemetry", false, "Record applied snapshots to SQLite")
	fs.String("telemetry-db", "", "Path to the telemetry database")
	return fs
}

var flagKeys = map[string]string{
	"log-level":      "log_level",
	"verbose":        "verbose",
	"api-base-url":   "api_base_url",
	"source":         "source.mode",
	"source-dir":     "source.dir",
	"interval":       "polling.interval_ms",
	"max-errors":     "polling.max_errors",
	"addr":           "server.addr",
	"sample-backend": "server.sample_backend",
	"telemetry":      "telemetry.enabled",
	"telemetry-db":   "telemetry.db_path",
}

// Load reads configuration from defaults, the TOML file, environment
// variables and flags, in increasing order of precedence, and validates it.
func Load(opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{
		args:      os.Args[1:],
		envPrefix: DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(o)
	}

	v := viper.New()
	setDefaults(v)

	fs := newFlagSet()
	if err := fs.Parse(o.args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	// Only flags given on the command line override other sources.
	var bindErr error
	fs.Visit(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && bindErr == nil {
			bindErr = v.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, bindErr)
	}

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := o.configPath
	if f := fs.Lookup("config"); f != nil && f.Changed {
		configPath = f.Value.String()
	}
	if configPath == "" {
		configPath = os.Getenv(o.envPrefix + "_CONFIG")
	}

	v.SetConfigType(configType)
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath("/etc/dashmon")
		v.AddConfigPath("$HOME/.config/dashmon")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errFactory.Wrap(errors.ErrReadConfig, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values that are not covered by the component configs.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Polling.IntervalMs <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Polling.IntervalMs)
	}
	if c.Alert.DurationMs <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "alert.duration_ms must be positive")
	}

	if err := c.SourceConfig().Validate(); err != nil {
		return err
	}
	if err := c.AppConfig().Validate(); err != nil {
		return err
	}
	if c.Server.Enabled {
		if err := c.ServerConfig().Validate(); err != nil {
			return err
		}
	}
	return c.TelemetryConfig().Validate()
}

func (c *Config) Level() logger.LogLevel {
	level, _ := logger.ParseLevel(c.LogLevel)
	return level
}

func (c *Config) SourceConfig() source.Config {
	return source.Config{
		Mode:    source.Mode(c.Source.Mode),
		BaseURL: c.APIBaseURL,
		Dir:     c.Source.Dir,
		Timeout: time.Duration(c.Source.TimeoutMs) * time.Millisecond,
	}
}

func (c *Config) AppConfig() app.Config {
	return app.Config{
		PageSize:       c.Logs.PageSize,
		MaxHistorySize: c.Metrics.MaxHistorySize,
		Thresholds: card.Thresholds{
			Warning:  c.Metrics.Threshold.Warning,
			Critical: c.Metrics.Threshold.Critical,
		},
		Polling: poller.Config{
			Interval:  time.Duration(c.Polling.IntervalMs) * time.Millisecond,
			MaxErrors: c.Polling.MaxErrors,
		},
	}
}

func (c *Config) AlertDuration() time.Duration {
	return time.Duration(c.Alert.DurationMs) * time.Millisecond
}

func (c *Config) ServerConfig() web.Config {
	return web.Config{
		Addr:          c.Server.Addr,
		SampleBackend: c.Server.SampleBackend,
		CORSOrigins:   c.Server.CORSOrigins,
	}
}

func (c *Config) TelemetryConfig() telemetry.Config {
	return telemetry.Config{
		Enabled:      c.Telemetry.Enabled,
		DBPath:       c.Telemetry.DBPath,
		BatchSize:    c.Telemetry.BatchSize,
		BatchTimeout: c.Telemetry.BatchTimeout,
	}
}
