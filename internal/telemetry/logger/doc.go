// Package logger provides structured logging for playgate.
//
// It wraps the standard library log/slog:
//
//   - logger.go: handler selection (json/text) and dynamic level
//   - context.go: request-scoped loggers carrying the request ID
//   - redact.go: sensitive attribute masking (secrets, bearer tokens,
//     credentials embedded in connection URLs)
package logger
