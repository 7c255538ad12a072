// Package config provides server configuration for playgate.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - env.go: Environment variable to key bindings
//   - verify.go: Business validation
//   - sanitize.go: Log sanitization (hide sensitive values)
//
// Configuration is loaded via internal/infra/confloader from, in increasing
// priority, defaults, a YAML file, a .env file and the process environment.
package config
