package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Default connection settings.
const (
	DefaultAuthSource     = "admin"
	DefaultConnectTimeout = 10 * time.Second
)

// Config selects and configures a storage backend.
type Config struct {
	// URL picks the backend by scheme.
	URL string

	// User and Password are attached as a Mongo credential only when both
	// are set.
	User     string
	Password string

	// AuthSource is the Mongo authentication database (default: "admin").
	AuthSource string

	// ConnectTimeout bounds the connection attempt (default: 10s).
	ConnectTimeout time.Duration

	// Logger receives driver logs.
	Logger *slog.Logger

	// Registerer, when set, receives backend metrics.
	Registerer prometheus.Registerer
}

// NewConnector returns the Connector for cfg.URL.
func NewConnector(cfg Config) (Connector, error) {
	if cfg.URL == "" {
		return nil, errors.New("storage: url is required")
	}
	if cfg.AuthSource == "" {
		cfg.AuthSource = DefaultAuthSource
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	scheme, _, ok := strings.Cut(cfg.URL, "://")
	if !ok {
		return nil, fmt.Errorf("storage: url %q has no scheme", cfg.URL)
	}

	switch strings.ToLower(scheme) {
	case "mongodb", "mongodb+srv":
		return NewMongoConnector(cfg)
	case "badger":
		bc, err := badgerConfigFromURL(cfg.URL)
		if err != nil {
			return nil, err
		}
		return &BadgerConnector{
			Config:     bc,
			Logger:     cfg.Logger,
			Registerer: cfg.Registerer,
		}, nil
	default:
		return nil, fmt.Errorf("storage: unsupported scheme %q", scheme)
	}
}

// badgerConfigFromURL maps badger://memory and badger://<dir> to a config.
func badgerConfigFromURL(raw string) (BadgerConfig, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return BadgerConfig{}, fmt.Errorf("storage: parse url: %w", err)
	}

	cfg := DefaultBadgerConfig()
	dir := u.Host + u.Path
	if dir == "memory" {
		cfg.InMemory = true
		return cfg, nil
	}
	if dir == "" {
		return BadgerConfig{}, errors.New("storage: badger url needs a directory or \"memory\"")
	}
	cfg.Dir = dir
	return cfg, nil
}
