package config

import "time"

// Environment discriminators. Local and unit-test environments get extra
// first-run diagnostics (e.g. secret key remediation guidance).
const (
	EnvLocal    = "local"
	EnvUnittest = "unittest"
	EnvProd     = "prod"
)

// DefaultConfusedConfigurations maps deprecated configuration keys to their
// replacements. It is checked once after config load; matches produce
// warnings only, never errors.
var DefaultConfusedConfigurations = map[string]string{
	"bodyParser":  "bodyparser",
	"notFound":    "notfound",
	"sitefile":    "siteFile",
	"middlewares": "middleware",
	"httpclient":  "httpClient",
}

// Config is the effective application configuration.
type Config struct {
	// Name identifies the application in logs and dumped artifacts.
	Name string `yaml:"name" json:"name"`

	// Env is the environment discriminator: "local", "unittest", "prod", etc.
	Env string `yaml:"env" json:"env"`

	// Keys is a comma-separated list of cookie-signing secrets.
	// The first key signs; every key verifies, enabling rotation.
	Keys string `yaml:"keys" json:"-"`

	// RunDir is the directory where derived runtime artifacts
	// (config.json, router.json) are written on startup.
	RunDir string `yaml:"rundir" json:"rundir"`

	// Server holds HTTP server settings.
	Server ServerConfig `yaml:"server" json:"server"`

	// ConfusedConfigurations maps deprecated keys to their replacements.
	ConfusedConfigurations map[string]string `yaml:"confusedConfigurations" json:"confusedConfigurations"`

	path string
	raw  map[string]any
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Address is the listen address, "host:port". Default ":7001".
	Address string `yaml:"address" json:"address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `yaml:"readTimeout" json:"readTimeout"`

	// WriteTimeout is the maximum duration before timing out response writes.
	WriteTimeout time.Duration `yaml:"writeTimeout" json:"writeTimeout"`

	// IdleTimeout is the keep-alive idle limit.
	IdleTimeout time.Duration `yaml:"idleTimeout" json:"idleTimeout"`
}

// Default returns a Config populated with defaults only.
func Default() *Config {
	cfg := &Config{
		Name:   "egg",
		Env:    EnvProd,
		RunDir: "run",
		Server: ServerConfig{
			Address:      ":7001",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		ConfusedConfigurations: make(map[string]string, len(DefaultConfusedConfigurations)),
		raw:                    make(map[string]any),
	}
	for old, repl := range DefaultConfusedConfigurations {
		cfg.ConfusedConfigurations[old] = repl
	}
	return cfg
}

// IsSet reports whether key appeared in the raw configuration source
// (file or environment), regardless of whether the typed struct consumed it.
func (c *Config) IsSet(key string) bool {
	if c.raw == nil {
		return false
	}
	_, ok := c.raw[key]
	return ok
}

// Set records a key in both the typed-unaware raw map and, for known keys,
// nothing else. It exists for programmatic setup and tests.
func (c *Config) Set(key string, value any) {
	if c.raw == nil {
		c.raw = make(map[string]any)
	}
	c.raw[key] = value
}

// IsLocal reports whether the environment is trusted for extra diagnostics.
func (c *Config) IsLocal() bool {
	return c.Env == EnvLocal || c.Env == EnvUnittest
}

// Path returns the file this configuration was loaded from,
// or an empty string for programmatic configs.
func (c *Config) Path() string {
	return c.path
}
