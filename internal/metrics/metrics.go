package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics - все методы безопасны на nil-получателе, метрики можно не подключать
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	LLMRequestsTotal   *prometheus.CounterVec
	LLMRequestDuration *prometheus.HistogramVec
	LLMTokensTotal     *prometheus.CounterVec

	SearchRequestsTotal   *prometheus.CounterVec
	SearchRequestDuration *prometheus.HistogramVec

	FetchRequestsTotal *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New регистрирует метрики в reg. nil - глобальный реестр prometheus.
func New(reg prometheus.Registerer) *Metrics {
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}
	f := promauto.With(reg)

	return &Metrics{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "research_bot_requests_total",
				Help: "Total number of research requests processed",
			},
			[]string{"type", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "research_bot_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
			[]string{"type"},
		),
		RequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "research_bot_requests_in_flight",
				Help: "Number of requests currently being processed",
			},
		),

		LLMRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "research_bot_llm_requests_total",
				Help: "Total number of LLM API requests",
			},
			[]string{"provider", "stage", "status"},
		),
		LLMRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "research_bot_llm_request_duration_seconds",
				Help:    "LLM request duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"provider"},
		),
		LLMTokensTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "research_bot_llm_tokens_total",
				Help: "Tokens reported by LLM providers",
			},
			[]string{"provider", "kind"},
		),

		SearchRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "research_bot_search_requests_total",
				Help: "Total number of search API requests",
			},
			[]string{"source", "status"},
		),
		SearchRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "research_bot_search_request_duration_seconds",
				Help:    "Search request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 15},
			},
			[]string{"source"},
		),

		FetchRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "research_bot_fetch_requests_total",
				Help: "Total number of page fetches",
			},
			[]string{"status"},
		),

		gatherer: gatherer,
	}
}

// Handler отдает метрики того реестра, в котором они зарегистрированы
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordRequest(reqType, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(reqType, status).Inc()
	m.RequestDuration.WithLabelValues(reqType).Observe(duration.Seconds())
}

func (m *Metrics) RecordLLMRequest(provider, stage, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.LLMRequestsTotal.WithLabelValues(provider, stage, status).Inc()
	m.LLMRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func (m *Metrics) RecordLLMTokens(provider string, prompt, completion int) {
	if m == nil {
		return
	}
	m.LLMTokensTotal.WithLabelValues(provider, "prompt").Add(float64(prompt))
	m.LLMTokensTotal.WithLabelValues(provider, "completion").Add(float64(completion))
}

func (m *Metrics) RecordSearchRequest(source, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.SearchRequestsTotal.WithLabelValues(source, status).Inc()
	m.SearchRequestDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func (m *Metrics) RecordFetch(status string) {
	if m == nil {
		return
	}
	m.FetchRequestsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) IncRequestsInFlight() {
	if m == nil {
		return
	}
	m.RequestsInFlight.Inc()
}

func (m *Metrics) DecRequestsInFlight() {
	if m == nil {
		return
	}
	m.RequestsInFlight.Dec()
}
