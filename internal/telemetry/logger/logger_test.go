package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_Formats(t *testing.T) {
	tests := []struct {
		name   string
		format string
		check  func(string) bool
	}{
		{"json", "json", func(s string) bool { return strings.HasPrefix(s, "{") }},
		{"text", "text", func(s string) bool { return strings.Contains(s, "msg=hello") }},
		{"console alias", "console", func(s string) bool { return strings.Contains(s, "msg=hello") }},
		{"unknown falls back to json", "xml", func(s string) bool { return strings.HasPrefix(s, "{") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(Config{Level: "info", Format: tt.format, Output: &buf})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			l.Info("hello")
			if !tt.check(buf.String()) {
				t.Errorf("unexpected output for %s: %q", tt.format, buf.String())
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer SetLevel("info")

	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug entry written at info level: %q", buf.String())
	}

	SetLevel("debug")
	if GetLevel() != "debug" {
		t.Errorf("GetLevel() = %q, want debug", GetLevel())
	}
	l.Debug("visible")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log entry: %v", err)
	}
	if entry["msg"] != "visible" {
		t.Errorf("msg = %v, want visible", entry["msg"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "debug",
		"WARN":    "warn",
		"warning": "warn",
		"error":   "error",
		"bogus":   "info",
		"":        "info",
	}
	defer SetLevel("info")
	for in, want := range tests {
		SetLevel(in)
		if got := GetLevel(); got != want {
			t.Errorf("SetLevel(%q) -> GetLevel() = %q, want %q", in, got, want)
		}
	}
}
