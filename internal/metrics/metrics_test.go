package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Record(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordSearchRequest("web", "ok", 100*time.Millisecond)
	m.RecordSearchRequest("web", "ok", 200*time.Millisecond)
	m.RecordSearchRequest("github", "error", time.Second)
	m.RecordLLMRequest("openai", "summary", "ok", 2*time.Second)
	m.RecordLLMTokens("openai", 100, 50)
	m.RecordFetch("ok")

	if got := testutil.ToFloat64(m.SearchRequestsTotal.WithLabelValues("web", "ok")); got != 2 {
		t.Errorf("search web ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.SearchRequestsTotal.WithLabelValues("github", "error")); got != 1 {
		t.Errorf("search github error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LLMTokensTotal.WithLabelValues("openai", "completion")); got != 50 {
		t.Errorf("completion tokens = %v, want 50", got)
	}

	m.IncRequestsInFlight()
	m.IncRequestsInFlight()
	m.DecRequestsInFlight()
	if got := testutil.ToFloat64(m.RequestsInFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
}

// два реестра - никаких паник про повторную регистрацию
func TestNew_IsolatedRegistries(t *testing.T) {
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("research", "ok", time.Second)
	m.RecordSearchRequest("web", "ok", time.Second)
	m.RecordLLMRequest("openai", "summary", "ok", time.Second)
	m.RecordLLMTokens("openai", 1, 1)
	m.RecordFetch("ok")
	m.IncRequestsInFlight()
	m.DecRequestsInFlight()
}

func TestMetrics_Handler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.RecordFetch("error")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `research_bot_fetch_requests_total{status="error"} 1`) {
		t.Errorf("metrics output missing fetch counter:\n%s", rec.Body.String())
	}
}
