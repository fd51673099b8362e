// Package config loads CLI settings. Sources are applied in order, each
// overriding the previous: built-in defaults, the YAML config file, a .env
// file in the working directory, then SWYCLE_* environment variables.
// Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Environment variables.
const (
	EnvAPIURL  = "SWYCLE_API_URL"
	EnvDB      = "SWYCLE_DB"
	EnvTimeout = "SWYCLE_TIMEOUT"
	EnvOutput  = "SWYCLE_OUTPUT"
	EnvLog     = "SWYCLE_LOG"
)

// DefaultAPIURL is the API root of a local development server.
const DefaultAPIURL = "http://localhost:5000/api"

// Output formats.
var Outputs = []string{"text", "json", "yaml"}

// Config is the resolved configuration.
type Config struct {
	APIURL  string        `yaml:"api_url"`
	DBPath  string        `yaml:"db"`
	Timeout time.Duration `yaml:"-"`
	Output  string        `yaml:"output"`
	LogFile string        `yaml:"log"`

	// RawTimeout is the timeout as written in the YAML file ("30s").
	RawTimeout string `yaml:"timeout"`
}

// Dir returns the directory holding the config file and state database.
func Dir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "swycle")
	}
	return "."
}

// DefaultPath is where Load looks for the YAML file when none is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:  DefaultAPIURL,
		DBPath:  filepath.Join(Dir(), "state.db"),
		Timeout: 30 * time.Second,
		Output:  "text",
	}
}

// Load resolves the configuration. An explicit path must exist; with an
// empty path the default file is used when present.
func Load(path string) (*Config, error) {
	required := path != ""
	if path == "" {
		path = DefaultPath()
	}
	return load(path, required, ".env")
}

func load(path string, required bool, dotenv string) (*Config, error) {
	cfg := Default()

	if err := readFile(&cfg, path); err != nil {
		if required || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	env, err := godotenv.Read(dotenv)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", dotenv, err)
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := env[key]
		return v, ok
	}

	if v, ok := lookup(EnvAPIURL); ok {
		cfg.APIURL = v
	}
	if v, ok := lookup(EnvDB); ok {
		cfg.DBPath = v
	}
	if v, ok := lookup(EnvOutput); ok {
		cfg.Output = v
	}
	if v, ok := lookup(EnvLog); ok {
		cfg.LogFile = v
	}
	if v, ok := lookup(EnvTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.RawTimeout != "" {
		d, err := time.ParseDuration(cfg.RawTimeout)
		if err != nil {
			return fmt.Errorf("parsing %s: timeout: %w", path, err)
		}
		cfg.Timeout = d
	}
	return nil
}

// Validate checks the resolved values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api url %q", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if !slices.Contains(Outputs, c.Output) {
		return fmt.Errorf("output must be one of %v, got %q", Outputs, c.Output)
	}
	if c.DBPath == "" {
		return errors.New("state database path is empty")
	}
	return nil
}
