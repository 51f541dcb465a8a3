package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Analysis metrics
	DocumentsAnalyzed     *prometheus.CounterVec
	LinesProcessed        *prometheus.CounterVec
	TransactionsExtracted prometheus.Counter
	AnalysisDuration      prometheus.Histogram

	// Classifier metrics
	ClassifierCalls    *prometheus.CounterVec
	ClassifierDuration prometheus.Histogram

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DocumentsAnalyzed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statement_documents_analyzed_total",
				Help: "Total statements analyzed by outcome",
			},
			[]string{"outcome"},
		),
		LinesProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statement_lines_processed_total",
				Help: "Total statement lines processed by result",
			},
			[]string{"result"},
		),
		TransactionsExtracted: factory.NewCounter(prometheus.CounterOpts{
			Name: "statement_transactions_extracted_total",
			Help: "Total transactions extracted from statements",
		}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "statement_analysis_duration_seconds",
			Help:    "Duration of a full statement analysis",
			Buckets: prometheus.DefBuckets,
		}),

		ClassifierCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statement_classifier_calls_total",
				Help: "Total risk classifier invocations by outcome",
			},
			[]string{"outcome"},
		),
		ClassifierDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "statement_classifier_duration_seconds",
			Help:    "Duration of batched risk classifier calls",
			Buckets: prometheus.DefBuckets,
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statement_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "statement_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// ObserveLine counts one processed line. Safe on a nil receiver.
func (m *Metrics) ObserveLine(result string) {
	if m == nil {
		return
	}
	m.LinesProcessed.WithLabelValues(result).Inc()
}

// ObserveExtracted adds n extracted transactions. Safe on a nil receiver.
func (m *Metrics) ObserveExtracted(n int) {
	if m == nil {
		return
	}
	m.TransactionsExtracted.Add(float64(n))
}

// ObserveDocument counts one analyzed document. Safe on a nil receiver.
func (m *Metrics) ObserveDocument(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.DocumentsAnalyzed.WithLabelValues(outcome).Inc()
	m.AnalysisDuration.Observe(seconds)
}

// ObserveClassifier counts one classifier call. Safe on a nil receiver.
func (m *Metrics) ObserveClassifier(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.ClassifierCalls.WithLabelValues(outcome).Inc()
	m.ClassifierDuration.Observe(seconds)
}

// ObserveHTTP records one served request. Safe on a nil receiver.
func (m *Metrics) ObserveHTTP(method, path string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(seconds)
}
