package metrics

import (
	"net/http/httptest"
	"testing"
)

func TestExporterMux_Healthz(t *testing.T) {
	mux := exporterMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != 200 {
		t.Fatalf("healthz status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "ok\n" {
		t.Errorf("healthz body = %q, want ok", rec.Body.String())
	}
}

func TestExporterMux_Metrics(t *testing.T) {
	mux := exporterMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("metrics status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("metrics body is empty")
	}
}

func TestExporterMux_UnknownPath(t *testing.T) {
	mux := exporterMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != 404 {
		t.Errorf("unknown path status = %d, want 404", rec.Code)
	}
}
