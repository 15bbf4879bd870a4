package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestHandlerExposesDomainCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)

	IncAnalysisStarted()
	IncAnalysisFailed()
	ObserveAnalysisDuration(1500 * time.Millisecond)
	IncProfileSaves()
	IncPreviewWrites()
	IncStoreReadFailure("profileplus_preview")
	IncContactDeliveries("delivered")

	r := gin.New()
	r.Use(Middleware())
	r.GET("/metrics", Handler())

	// One request so the latency histogram has a sample.
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	body := resp.Body.String()
	for _, want := range []string{
		`profileplus_assistant_analyses_total{outcome="started"}`,
		`profileplus_assistant_analyses_total{outcome="failed"}`,
		"profileplus_assistant_analysis_duration_seconds_count",
		"profileplus_profiles_saves_total",
		"profileplus_profiles_preview_writes_total",
		`profileplus_store_read_failures_total{key="profileplus_preview"}`,
		`profileplus_contact_deliveries_total{outcome="delivered"}`,
		`profileplus_http_request_duration_seconds_count{method="GET",path="/metrics",status="200"}`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}
