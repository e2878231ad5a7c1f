package issue

import "github.com/prometheus/client_golang/prometheus"

func init() {
	prometheus.MustRegister(recordsProcessed, issuesExtracted, batchDuration)
}

const (
	resultComplete  = "complete"
	resultFailed    = "failed"
	resultExpired   = "expired"
	resultSkipped   = "skipped"
	resultDuplicate = "duplicate"
	resultTimedOut  = "timed_out"
)

var (
	recordsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "console",
		Subsystem: "issues",
		Name:      "records_total",
		Help:      "Total log stream records processed by result",
	}, []string{"result"})

	issuesExtracted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "console",
		Subsystem: "issues",
		Name:      "extracted_total",
		Help:      "Total error occurrences extracted from log events",
	})

	batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "console",
		Subsystem: "issues",
		Name:      "batch_duration_seconds",
		Help:      "Time taken to process a batch of log stream records",
		Buckets:   prometheus.DefBuckets,
	})
)
