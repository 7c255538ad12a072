package config

import "time"

// Default configuration values.
const (
	DefaultPort              = 3000
	DefaultStaticDir         = "public"
	DefaultBodyLimit         = 100 << 10 // 100 KiB
	DefaultShutdownTimeout   = 30 * time.Second
	DefaultReadHeaderTimeout = 10 * time.Second

	DefaultAuthSource     = "admin"
	DefaultConnectTimeout = 10 * time.Second

	DefaultCookieName   = "jwt"
	DefaultRealtimePath = "/ws"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			ShutdownTimeout:   DefaultShutdownTimeout,
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
		},
		HTTP: HTTPSection{
			Port:      DefaultPort,
			StaticDir: DefaultStaticDir,
			BodyLimit: DefaultBodyLimit,
		},
		Storage: StorageSection{
			AuthSource:     DefaultAuthSource,
			ConnectTimeout: DefaultConnectTimeout,
		},
		Auth: AuthSection{
			CookieName: DefaultCookieName,
		},
		Realtime: RealtimeSection{
			Path: DefaultRealtimePath,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
