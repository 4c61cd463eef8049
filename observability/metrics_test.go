package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dcode-github/rental_listing_platform/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	observability.ObserveHTTP("/api/v1/property/", "GET", 200, 12*time.Millisecond)
	observability.ObserveUpload("ok")

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, name := range []string{"rentals_http_requests_total", "rentals_media_uploads_total"} {
		if !strings.Contains(out, name) {
			t.Errorf("expected %s in output", name)
		}
	}
}
