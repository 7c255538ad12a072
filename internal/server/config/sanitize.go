package config

import (
	"strings"

	"github.com/yndnr/playgate/internal/telemetry/logger"
)

// Sanitize returns a copy of the config with sensitive fields masked.
//
// This is used for logging configuration without exposing secrets.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	if sanitized.Storage.Password != "" {
		sanitized.Storage.Password = maskSecret(sanitized.Storage.Password)
	}
	if sanitized.Storage.URL != "" {
		sanitized.Storage.URL = logger.RedactString(sanitized.Storage.URL)
	}
	if sanitized.Auth.JWTSecret != "" {
		sanitized.Auth.JWTSecret = maskSecret(sanitized.Auth.JWTSecret)
	}

	return &sanitized
}

// maskSecret masks a secret value for safe logging.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
