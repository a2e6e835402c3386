package config

// Option defines a configuration option that can be passed to Load
type Option func(*options)

// options holds internal configuration options
type options struct {
	args       []string
	configPath string
	envPrefix  string
}

// WithArgs sets the command line arguments to parse, without the program name
func WithArgs(args []string) Option {
	return func(o *options) {
		o.args = args
	}
}

// WithConfigFile specifies an explicit configuration file path
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configPath = path
	}
}

// WithEnvPrefix specifies a custom environment variable prefix
// Default is "DASHMON"
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}
