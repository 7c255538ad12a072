package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yndnr/playgate/internal/core/service"
	"github.com/yndnr/playgate/internal/telemetry/logger"
)

var testSecret = []byte("test-secret")

func newTranslator() *ErrorTranslator {
	return NewErrorTranslator(logger.Discard())
}

func newAuthCheck(t *testing.T) service.CapabilityCheck {
	t.Helper()
	svc, err := service.NewAuthService(service.AuthConfig{Secret: testSecret})
	if err != nil {
		t.Fatalf("NewAuthService() error = %v", err)
	}
	return svc.Check()
}

func signUser(t *testing.T, user any) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user": user,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return tok
}

// serve runs h behind trackResponse, the way NewRouter does.
func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	trackResponse(h).ServeHTTP(rec, r)
	return rec
}

func body(rec *httptest.ResponseRecorder) string {
	return strings.TrimSpace(rec.Body.String())
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var m map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return m
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
