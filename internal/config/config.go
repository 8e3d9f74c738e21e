/*
Package config maps REISTREAM_* environment variables onto the settings the
client needs at startup.

	cfg, err := config.Load()
	if err != nil {
	    return err
	}

Command-line flags override the environment after Load returns.
*/
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"

	"github.com/astroflix-site/reistream/internal/api"
	"github.com/astroflix-site/reistream/internal/updater"
	"github.com/astroflix-site/reistream/internal/util"
)

// Prefix is prepended to every variable name
const Prefix = "REISTREAM_"

// DatabaseFile is the device store inside DataDir
const DatabaseFile = "reistream.db"

// Config holds the runtime settings of the client
type Config struct {
	// Backend
	APIURL      string        `env:"API_URL"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`

	// DataDir holds the device store. Empty means the OS config dir.
	DataDir string `env:"DATA_DIR"`

	Debug bool `env:"DEBUG" envDefault:"false"`

	// Update check
	SkipUpdateCheck bool   `env:"SKIP_UPDATE_CHECK" envDefault:"false"`
	ReleasesURL     string `env:"RELEASES_URL"`
}

// Load parses the process environment into a [Config]
func Load() (*Config, error) {
	return LoadFrom(nil)
}

// LoadFrom parses the given variables instead of the process environment when environ is non-nil
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	opts := env.Options{Prefix: Prefix}
	if environ != nil {
		opts.Environment = environ
	}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, errors.Wrap(err, "config: failed to parse environment variables")
	}

	if cfg.APIURL == "" {
		cfg.APIURL = api.DefaultBaseURL
	}
	if cfg.ReleasesURL == "" {
		cfg.ReleasesURL = updater.DefaultReleasesURL
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = util.DefaultHTTPTimeout
	}
	if cfg.DataDir == "" {
		dir, err := defaultDataDir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = dir
	}

	return cfg, nil
}

// DatabasePath is where the device store lives
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, DatabaseFile)
}

func defaultDataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return "", errors.Wrap(err, "config: no config or home directory")
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "reistream"), nil
}
