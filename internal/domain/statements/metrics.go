package statements

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statement_uploads_total",
		Help: "Statement uploads received.",
	})
	uploadsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statement_uploads_failed_total",
		Help: "Statement uploads rejected or failed during processing.",
	})
	extractionSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "statement_extraction_duration_seconds",
		Help:    "Wall time spent extracting transactions from one statement.",
		Buckets: prometheus.DefBuckets,
	})
)
