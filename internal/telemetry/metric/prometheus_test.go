package metric

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestNewRegistry_RuntimeCollectors(t *testing.T) {
	body := scrape(t, NewRegistry())

	if !strings.Contains(body, "go_goroutines") {
		t.Error("expected go_goroutines metric")
	}
	if !strings.Contains(body, "process_") {
		t.Error("expected process metrics")
	}
}

func TestRecordRequest(t *testing.T) {
	r := NewRegistry()
	r.RecordRequest("GET", "public", 200, 5*time.Millisecond)
	r.RecordRequest("GET", "public", 200, 7*time.Millisecond)
	r.RecordRequest("GET", "not_found", 404, time.Millisecond)

	body := scrape(t, r)
	if !strings.Contains(body, `playgate_http_requests_total{method="GET",stage="public",status="200"} 2`) {
		t.Errorf("missing public request counter:\n%s", body)
	}
	if !strings.Contains(body, `playgate_http_requests_total{method="GET",stage="not_found",status="404"} 1`) {
		t.Error("missing not_found request counter")
	}
	if !strings.Contains(body, `playgate_http_request_duration_seconds_count{method="GET",stage="public"} 2`) {
		t.Error("missing duration histogram count")
	}
}

func TestGauges(t *testing.T) {
	r := NewRegistry()
	r.SetStorageState(2)
	r.IncRealtime()
	r.IncRealtime()
	r.DecRealtime()
	r.RecordAuth("rejected")

	body := scrape(t, r)
	for _, want := range []string{
		"playgate_storage_state 2",
		"playgate_realtime_connections 1",
		`playgate_auth_verifications_total{result="rejected"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in scrape output", want)
		}
	}
}
