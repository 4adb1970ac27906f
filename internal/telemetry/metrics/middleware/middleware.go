package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Middleware instruments a single handler with duration and in-flight metrics.
type Middleware struct {
	duration *prometheus.HistogramVec
	inFlight *prometheus.GaugeVec
}

// New registers the handler metrics on reg. Nil buckets fall back to the prometheus defaults.
func New(reg prometheus.Registerer, buckets []float64) *Middleware {
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	factory := promauto.With(reg)
	return &Middleware{
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Tracks the latencies for HTTP requests.",
			Buckets: buckets,
		}, []string{"handler", "method", "code"}),
		inFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of requests currently being handled.",
		}, []string{"handler"}),
	}
}

func (m *Middleware) WrapHandler(handlerName string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inFlight := m.inFlight.WithLabelValues(handlerName)
		inFlight.Inc()
		defer inFlight.Dec()

		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		begin := time.Now()
		handler.ServeHTTP(rw, r)

		m.duration.WithLabelValues(
			handlerName,
			r.Method,
			strconv.Itoa(rw.statusCode),
		).Observe(time.Since(begin).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
