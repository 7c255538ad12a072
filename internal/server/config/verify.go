package config

import (
	"errors"
	"fmt"
	"strings"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyHTTP(&cfg.HTTP); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifyAuth(&cfg.Auth); err != nil {
		return err
	}
	if err := verifyRealtime(&cfg.Realtime); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}
	return nil
}

func verifyHTTP(cfg *HTTPSection) error {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", cfg.Port)
	}
	if cfg.RateLimit < 0 {
		return errors.New("http.rate_limit must not be negative")
	}
	if cfg.BodyLimit <= 0 {
		return errors.New("http.body_limit must be positive")
	}
	if cfg.CORSOrigin != "" && cfg.CORSOrigin != "*" &&
		!strings.HasPrefix(cfg.CORSOrigin, "http://") && !strings.HasPrefix(cfg.CORSOrigin, "https://") {
		return fmt.Errorf("http.cors_origin %q must be an http(s) origin", cfg.CORSOrigin)
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	if cfg.URL == "" {
		return errors.New("storage.url is required (MONGO_CONNECTION_URL)")
	}
	if cfg.ConnectTimeout <= 0 {
		return errors.New("storage.connect_timeout must be positive")
	}
	return nil
}

func verifyAuth(cfg *AuthSection) error {
	if cfg.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required (JWT_SECRET)")
	}
	if cfg.CookieName == "" {
		return errors.New("auth.cookie_name is required")
	}
	return nil
}

func verifyRealtime(cfg *RealtimeSection) error {
	if !strings.HasPrefix(cfg.Path, "/") {
		return fmt.Errorf("realtime.path %q must start with /", cfg.Path)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q is not json or text", cfg.Format)
	}
	return nil
}
