package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestFromContext_Default(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Error("FromContext() should fall back to slog.Default()")
	}
}

func TestL_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "json", Output: &buf})

	ctx := WithLogger(context.Background(), l)
	ctx = WithRequestID(ctx, "01HZX")

	if RequestIDFromContext(ctx) != "01HZX" {
		t.Errorf("RequestIDFromContext() = %q", RequestIDFromContext(ctx))
	}

	L(ctx).Info("hello")
	if !strings.Contains(buf.String(), `"request_id":"01HZX"`) {
		t.Errorf("log entry missing request_id: %s", buf.String())
	}
}
