// Package config provides the configuration loader for anvil.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"go.trai.ch/anvil/internal/core/domain"
	"go.trai.ch/anvil/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ANVIL_"

// Loader implements ports.ConfigLoader using an optional YAML file and
// environment overrides.
type Loader struct {
	Logger ports.Logger
	// Environ supplies the environment. os.Environ is used when nil.
	Environ func() []string
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load starts from domain.DefaultConfig, applies the YAML file at path when it
// exists and then applies ANVIL_ environment variables. An empty path skips
// the file.
func (l *Loader) Load(path string) (domain.Config, error) {
	f := fromDomain(domain.DefaultConfig())

	if path != "" {
		if err := readAndUnmarshalYAML(path, &f); err != nil {
			return domain.Config{}, err
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if l.Environ != nil {
		opts.Environment = env.ToMap(l.Environ())
	}
	if err := env.ParseWithOptions(&f, opts); err != nil {
		return domain.Config{}, zerr.With(errors.Join(domain.ErrConfigParseFailed, err), "source", "environment")
	}

	return l.normalize(f, path), nil
}

func (l *Loader) normalize(f File, path string) domain.Config {
	defaults := domain.DefaultConfig()

	if len(f.Repositories) == 0 {
		l.Logger.Warn("no repositories configured, using " + domain.DefaultRepositoryURL)
		f.Repositories = defaults.Repositories
	}
	if f.Java == "" {
		f.Java = defaults.JavaPath
	}
	if f.HTTPTimeout <= 0 {
		f.HTTPTimeout = defaults.HTTPTimeout
	}
	if f.Retries < 0 {
		l.Logger.Warn(fmt.Sprintf("retries must not be negative, got %d", f.Retries))
		f.Retries = 0
	}

	// Relative directories in a config file are relative to the file.
	if path != "" {
		base := filepath.Dir(path)
		f.GameDir = resolveDir(base, f.GameDir)
		f.CacheDir = resolveDir(base, f.CacheDir)
	}
	return f.toDomain()
}

func resolveDir(base, dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}

// readAndUnmarshalYAML decodes the file at configPath into target. A missing
// file leaves target untouched.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is chosen by the user
	configFile, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return zerr.With(errors.Join(domain.ErrConfigReadFailed, err), "path", configPath)
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.With(errors.Join(domain.ErrConfigParseFailed, parseErr), "path", configPath)
	}

	return nil
}
