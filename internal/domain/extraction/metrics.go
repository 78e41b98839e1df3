package extraction

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statement_pages_processed_total",
		Help: "Statement pages walked by the extractor.",
	})

	rowsExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statement_rows_extracted_total",
		Help: "Transaction rows produced, labeled by extraction pass.",
	}, []string{"pass"})
)
