package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "triage_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
		},
		[]string{"method", "path", "status"},
	)

	emailsSynced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_emails_synced_total",
			Help: "Emails stored by source syncs",
		},
		[]string{"source", "status"},
	)

	repliesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_replies_generated_total",
			Help: "Reply suggestions requested from the LLM",
		},
		[]string{"status"},
	)

	emailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_emails_sent_total",
			Help: "Replies handed to a mail transport",
		},
		[]string{"transport", "status"},
	)
)

func recordHTTPRequest(method, path, status string, d time.Duration) {
	httpRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}
