// Package hapticconfig defines the service's configuration surface: a
// typed Config loaded from a TOML file with HAPTIC_*-prefixed environment
// overrides, following the teacher pack's practice (lixenwraith-vi-fighter's
// per-subsystem *Config structs with a Default constructor) of one plain
// struct plus one default constructor per concern, rather than a
// framework-driven settings object.
package hapticconfig

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/kgkgzrtk/yuragi-haptic-go/internal/haperr"
)

// Environment labels the deployment as development or production. It is
// validated at load time; no default in this package depends on it.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// Config is the full enumerated configuration surface; no other
// runtime-tunable knob exists outside of this struct.
type Config struct {
	SampleRate   int      `toml:"sample_rate"`
	BlockSize    int      `toml:"block_size"`
	MinFrequency float64  `toml:"min_frequency"`
	MaxFrequency float64  `toml:"max_frequency"`
	CORSOrigins  []string `toml:"cors_origins"`
	LogLevel     string   `toml:"log_level"`
	LogFilePath  string   `toml:"log_file_path"`
	APIKey       *string  `toml:"api_key"`
	AllowedHosts []string    `toml:"allowed_hosts"`
	Environment  Environment `toml:"environment"`
}

// Default returns the configuration a fresh install starts from.
func Default() Config {
	return Config{
		SampleRate:   44100,
		BlockSize:    512,
		MinFrequency: 30.0,
		MaxFrequency: 120.0,
		CORSOrigins:  []string{"*"},
		LogLevel:     "info",
		LogFilePath:  "",
		APIKey:       nil,
		AllowedHosts: []string{"localhost", "127.0.0.1"},
		Environment:  Development,
	}
}

// Load reads path as TOML over the defaults, then applies HAPTIC_*
// environment overrides, then validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "loading config from %s", path)
		}
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnvOverrides reads HAPTIC_* environment variables over whatever
// Load already decoded, matching the configuration surface's documented
// override precedence (env beats file beats default).
func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("HAPTIC_SAMPLE_RATE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SampleRate = n
		}
	}
	if v, ok := os.LookupEnv("HAPTIC_BLOCK_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BlockSize = n
		}
	}
	if v, ok := os.LookupEnv("HAPTIC_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("HAPTIC_LOG_FILE_PATH"); ok {
		cfg.LogFilePath = v
	}
	if v, ok := os.LookupEnv("HAPTIC_API_KEY"); ok {
		key := v
		cfg.APIKey = &key
	}
	if v, ok := os.LookupEnv("HAPTIC_CORS_ORIGINS"); ok {
		cfg.CORSOrigins = strings.Split(v, ",")
	}
	if v, ok := os.LookupEnv("HAPTIC_ALLOWED_HOSTS"); ok {
		cfg.AllowedHosts = strings.Split(v, ",")
	}
	if v, ok := os.LookupEnv("HAPTIC_ENVIRONMENT"); ok {
		cfg.Environment = Environment(v)
	}
}

// Validate rejects a configuration that would fail at stream-open time
// rather than at load time: bad sample rate, inverted frequency bounds,
// or an unrecognized environment.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return errors.Wrap(haperr.InvalidParam, "sample_rate must be positive")
	}
	if c.BlockSize <= 0 {
		return errors.Wrap(haperr.InvalidParam, "block_size must be positive")
	}
	if c.MinFrequency <= 0 || c.MaxFrequency <= c.MinFrequency {
		return errors.Wrap(haperr.InvalidParam, "min_frequency must be positive and less than max_frequency")
	}
	if c.Environment != Development && c.Environment != Production {
		return errors.Wrapf(haperr.InvalidParam, "environment %q must be development or production", c.Environment)
	}
	return nil
}
