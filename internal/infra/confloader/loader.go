package confloader

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvFile is the dotenv file read when no other path is configured.
const DefaultEnvFile = ".env"

// Loader loads configuration from multiple sources.
type Loader struct {
	k           *koanf.Koanf
	bindings    map[string]string
	filePath    string
	envFile     string
	envRequired bool
	loaded      bool
}

// Option is a function that configures the Loader.
type Option func(*Loader)

// WithEnvBindings sets the environment variable to key bindings.
// Variables missing from the table are ignored.
func WithEnvBindings(bindings map[string]string) Option {
	return func(l *Loader) {
		l.bindings = bindings
	}
}

// WithConfigFile sets the configuration file path.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithEnvFile sets the dotenv file path. An explicitly configured file must
// exist; the default one is optional.
func WithEnvFile(path string) Option {
	return func(l *Loader) {
		l.envFile = path
		l.envRequired = path != DefaultEnvFile
	}
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:        koanf.New("."),
		bindings: map[string]string{},
		envFile:  DefaultEnvFile,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load loads configuration from all sources and unmarshals into target.
// Later sources override earlier ones: file, then dotenv/environment.
func (l *Loader) Load(target any) error {
	if l.filePath != "" {
		if err := l.LoadFile(l.filePath); err != nil {
			return fmt.Errorf("load config file: %w", err)
		}
	}

	if err := l.LoadDotenv(); err != nil {
		return fmt.Errorf("load dotenv: %w", err)
	}

	if err := l.LoadEnv(); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	l.loaded = true
	return nil
}

// LoadFile loads configuration from a YAML file.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}

	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("load file %s: %w", path, err)
	}
	return nil
}

// LoadDotenv copies variables from the dotenv file into the process
// environment. Variables already set in the environment win.
func (l *Loader) LoadDotenv() error {
	if l.envFile == "" {
		return nil
	}

	err := godotenv.Load(l.envFile)
	if err != nil && errors.Is(err, fs.ErrNotExist) && !l.envRequired {
		return nil
	}
	return err
}

// LoadEnv loads the bound environment variables.
func (l *Loader) LoadEnv() error {
	provider := env.Provider("", ".", func(name string) string {
		return l.bindings[name]
	})

	if err := l.k.Load(provider, nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

// LoadMap loads configuration from a nested map (useful for flags or testing).
func (l *Loader) LoadMap(data map[string]any) error {
	if err := l.k.Load(mapProvider(data), nil); err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	return nil
}

// Unmarshal unmarshals the loaded configuration into the target struct
// using koanf tags.
func (l *Loader) Unmarshal(target any) error {
	return l.k.Unmarshal("", target)
}

// GetString returns a string value from the configuration.
func (l *Loader) GetString(key string) string {
	return l.k.String(key)
}

// GetInt returns an int value from the configuration.
func (l *Loader) GetInt(key string) int {
	return l.k.Int(key)
}

// IsLoaded returns true if configuration has been loaded.
func (l *Loader) IsLoaded() bool {
	return l.loaded
}

// Keys returns all configuration keys.
func (l *Loader) Keys() []string {
	return l.k.Keys()
}
