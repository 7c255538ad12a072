package config

import (
	"net"
	"strconv"
	"time"
)

// ServerConfig is the root configuration for playgate-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	HTTP     HTTPSection     `koanf:"http"`
	Storage  StorageSection  `koanf:"storage"`
	Auth     AuthSection     `koanf:"auth"`
	Realtime RealtimeSection `koanf:"realtime"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures process lifecycle.
type ServerSection struct {
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
}

// HTTPSection configures the HTTP listener and middleware chain.
type HTTPSection struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// CORSOrigin is the single allowed origin. Empty allows any origin.
	CORSOrigin string `koanf:"cors_origin"`

	// StaticDir is served at the root for GET/HEAD.
	StaticDir string `koanf:"static_dir"`

	// RateLimit is requests per second per client IP. 0 disables it.
	RateLimit int `koanf:"rate_limit"`

	// BodyLimit caps decoded request bodies, in bytes.
	BodyLimit int64 `koanf:"body_limit"`
}

// Addr returns the listen address.
func (h HTTPSection) Addr() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(h.Port))
}

// StorageSection configures the storage connection.
type StorageSection struct {
	URL            string        `koanf:"url"`
	User           string        `koanf:"user"`
	Password       string        `koanf:"password"`
	AuthSource     string        `koanf:"auth_source"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// AuthSection configures bearer credential verification.
type AuthSection struct {
	JWTSecret  string `koanf:"jwt_secret"`
	CookieName string `koanf:"cookie_name"`
}

// RealtimeSection configures the real-time channel.
type RealtimeSection struct {
	Path        string `koanf:"path"`
	RequireAuth bool   `koanf:"require_auth"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
