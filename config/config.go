// Package config resolves the runtime configuration of hash-audit.
//
// Values are applied in priority order: built-in defaults, then an optional
// YAML file, then HASH_AUDIT_* environment variables.  The result is
// normalised and validated before it is returned.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/mold/v4/modifiers"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile is the configuration file read when none is given.
	DefaultFile = "hash-audit.yaml"

	// DefaultSeconds is the default benchmark duration.
	DefaultSeconds = 2.0

	cacheDirName = "hash_audit"
)

// ErrInvalid is returned when the resolved configuration fails validation.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the resolved runtime configuration.
type Config struct {
	// CacheDir is where benchmark results are cached.
	CacheDir string `yaml:"cache_dir" env:"HASH_AUDIT_CACHE_DIR" mod:"trim" validate:"required"`

	// DefaultSeconds is the benchmark duration used when none is given.
	DefaultSeconds float64 `yaml:"default_seconds" env:"HASH_AUDIT_SECONDS" validate:"gt=0"`

	LogLevel  string `yaml:"log_level" env:"HASH_AUDIT_LOG_LEVEL" mod:"trim,lcase" validate:"oneof=debug info warn error"`
	LogFormat string `yaml:"log_format" env:"HASH_AUDIT_LOG_FORMAT" mod:"trim,lcase" validate:"oneof=text json"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		CacheDir:       DefaultCacheDir(),
		DefaultSeconds: DefaultSeconds,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// DefaultCacheDir returns hash_audit under the user's cache directory, or
// under ~/.cache when the platform reports none.
func DefaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, cacheDirName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", cacheDirName)
	}
	return filepath.Join(os.TempDir(), cacheDirName)
}

// Load resolves the configuration.  A missing file at path is not an
// error; an unreadable or malformed one is.
func Load(ctx context.Context, path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}

	if err := modifiers.New().Struct(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: normalise: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks every field of c.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s fails %q (got %v)", ErrInvalid, fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Level returns the slog level for c.LogLevel.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Logger returns a logger writing to w in c.LogFormat at c.LogLevel.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
