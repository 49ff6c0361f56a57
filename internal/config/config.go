// Package config loads the rocks configuration: built-in defaults, then an
// optional YAML file, then ROCKS_* environment variables. Later layers win.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Default SsODNet endpoints.
const (
	DefaultQuaeroURL = "https://api.ssodnet.imcce.fr/quaero/1/sso/search"
	DefaultCardURL   = "https://ssp.imcce.fr/webservices/ssodnet/api/ssocard"
	DefaultIndexURL  = "https://ssp.imcce.fr/data/rocks/index.json"
)

// DefaultTimeout bounds every request to the SsODNet services.
const DefaultTimeout = 30 * time.Second

// Config holds everything the resolver, index and CLI need to run.
type Config struct {
	// CacheDir is where the local index and cached ssoCards live.
	// Empty means the platform cache directory, e.g. ~/.cache/rocks.
	CacheDir string `yaml:"cache_dir" env:"ROCKS_CACHE_DIR"`

	// QuaeroURL is the quaero search endpoint used for remote resolution.
	QuaeroURL string `yaml:"quaero_url" env:"ROCKS_QUAERO_URL"`

	// CardURL is the ssoCard endpoint, queried by SsODNet id.
	CardURL string `yaml:"card_url" env:"ROCKS_CARD_URL"`

	// IndexURL is where the published name-number dump is downloaded from.
	IndexURL string `yaml:"index_url" env:"ROCKS_INDEX_URL"`

	// Timeout bounds each request to the remote services.
	Timeout Duration `yaml:"timeout" env:"ROCKS_TIMEOUT"`
}

// Duration decodes Go duration strings ("30s", "2m") from YAML and the
// environment.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// UnmarshalText implements encoding.TextUnmarshaler, which env.Parse uses.
func (d *Duration) UnmarshalText(text []byte) error {
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	if dur <= 0 {
		return fmt.Errorf("invalid duration %q: must be positive", text)
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// Default returns the built-in configuration. CacheDir is left empty and
// filled in by Load so the platform lookup only runs when nothing else
// sets it.
func Default() *Config {
	return &Config{
		QuaeroURL: DefaultQuaeroURL,
		CardURL:   DefaultCardURL,
		IndexURL:  DefaultIndexURL,
		Timeout:   Duration(DefaultTimeout),
	}
}

// Load builds the configuration from defaults, the YAML file at path (when
// path is non-empty; a missing file is an error since the caller asked for
// it), and ROCKS_* environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.CacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("locate cache directory: %w", err)
		}
		cfg.CacheDir = filepath.Join(base, "rocks")
	}

	return cfg, nil
}

// HTTPTimeout returns the timeout as a time.Duration for http.Client.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Timeout)
}
