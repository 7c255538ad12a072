package logger

import (
	"log/slog"
	"net/url"
	"strings"
)

// Sensitive key patterns that should be redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"authorization",
	"cookie",
	"bearer",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// jwtPrefix is the base64url encoding of `{"` that starts every JWT header.
const jwtPrefix = "eyJ"

func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		if v == "" {
			return a
		}
		if IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		return slog.String(a.Key, RedactString(v))
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// RedactString masks credentials inside a value: the password of a URL
// with user info, and bearer tokens / JWTs.
func RedactString(value string) string {
	if strings.Contains(value, "://") && strings.Contains(value, "@") {
		if u, err := url.Parse(value); err == nil && u.User != nil {
			if _, has := u.User.Password(); has {
				u.User = url.UserPassword(u.User.Username(), "xxxxx")
				return u.String()
			}
		}
	}

	if rest, ok := strings.CutPrefix(value, "Bearer "); ok && rest != "" {
		return "Bearer " + redactedValue
	}
	if strings.HasPrefix(value, jwtPrefix) && strings.Count(value, ".") == 2 {
		return maskValue(value)
	}
	return value
}

// maskValue keeps the first and last three characters.
func maskValue(value string) string {
	if len(value) <= 12 {
		return redactedValue
	}
	return value[:3] + "..." + value[len(value)-3:]
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
