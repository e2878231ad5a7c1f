package http

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	prometheus.MustRegister(requestDuration)
}

var requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "console",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "Duration of http requests by method and status code",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "code"})

func observeRequest(method string, code int, seconds float64) {
	requestDuration.WithLabelValues(method, strconv.Itoa(code)).Observe(seconds)
}
