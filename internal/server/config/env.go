package config

// EnvBindings maps environment variable names to configuration keys.
func EnvBindings() map[string]string {
	return map[string]string{
		"MONGO_CONNECTION_URL":  "storage.url",
		"MONGO_USER":            "storage.user",
		"MONGO_PASSWORD":        "storage.password",
		"MONGO_AUTH_SOURCE":     "storage.auth_source",
		"MONGO_CONNECT_TIMEOUT": "storage.connect_timeout",
		"CORS_ORIGIN":           "http.cors_origin",
		"HOST":                  "http.host",
		"PORT":                  "http.port",
		"STATIC_DIR":            "http.static_dir",
		"RATE_LIMIT":            "http.rate_limit",
		"BODY_LIMIT":            "http.body_limit",
		"JWT_SECRET":            "auth.jwt_secret",
		"JWT_COOKIE":            "auth.cookie_name",
		"REALTIME_PATH":         "realtime.path",
		"REALTIME_REQUIRE_AUTH": "realtime.require_auth",
		"LOG_LEVEL":             "log.level",
		"LOG_FORMAT":            "log.format",
		"SHUTDOWN_TIMEOUT":      "server.shutdown_timeout",
	}
}
