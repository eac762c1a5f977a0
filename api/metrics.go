package api

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "depot",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Backend API calls by method and status class.",
	}, []string{"method", "status"})
	metricLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "depot",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "Backend API call latency, including calls that got no response.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
	metricUnauthorized = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "depot",
		Subsystem: "api",
		Name:      "unauthorized_total",
		Help:      "Responses that tore down the session with a 401.",
	})
	metricNoResponse = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "depot",
		Subsystem: "api",
		Name:      "no_response_total",
		Help:      "Calls that failed before any response was received.",
	})
)

// statusClass buckets a status code as "2xx", "4xx", ... or "none"
func statusClass(code int) string {
	if code <= 0 {
		return "none"
	}
	return strconv.Itoa(code/100) + "xx"
}
