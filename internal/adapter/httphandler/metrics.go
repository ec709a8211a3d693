package httphandler

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/pvolkov/shoply/pkg/kvcache"
)

var (
	requestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of incoming HTTP requests.",
	}, []string{"method", "path"})

	latencyHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency distributions.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	errorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_errors_total",
		Help: "Total number of HTTP 5xx responses.",
	}, []string{"method", "path"})
)

func init() {
	prometheus.MustRegister(requestCounter, latencyHistogram, errorCounter)
}

// RegisterCacheMetrics exposes the listing cache counters as prometheus
// metrics.
func RegisterCacheMetrics(cache *kvcache.Cache) {
	prometheus.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "listing_cache_hits_total",
			Help: "Total number of listing cache hits.",
		}, func() float64 { return float64(cache.Stats().Hits) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "listing_cache_misses_total",
			Help: "Total number of listing cache misses.",
		}, func() float64 { return float64(cache.Stats().Misses) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "listing_cache_entries",
			Help: "Current number of listing cache entries.",
		}, func() float64 { return float64(cache.Stats().Size) }),
	)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func ObserveMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		labels := prometheus.Labels{
			"method": r.Method,
			"path":   normalizePath(r.URL.Path),
		}
		requestCounter.With(labels).Inc()
		latencyHistogram.With(labels).Observe(time.Since(start).Seconds())
		if rec.status >= 500 {
			errorCounter.With(labels).Inc()
		}
	})
}

// normalizePath collapses ids so the label set stays bounded.
func normalizePath(path string) string {
	if rest, ok := strings.CutPrefix(path, "/v1/products/"); ok {
		if strings.HasSuffix(rest, "/images") {
			return "/v1/products/{id}/images"
		}
		return "/v1/products/{id}"
	}
	return path
}
