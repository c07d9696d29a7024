package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	RegisterSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "register_success_total",
		Help: "Total successful registrations",
	})

	LoginSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "login_success_total",
		Help: "Total successful login attempts",
	})

	LoginFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_failure_total",
		Help: "Total failed login attempts",
	}, []string{"reason"})

	PublicationsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "publications_created_total",
		Help: "Total publications created",
	})

	FollowsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "follows_created_total",
		Help: "Total follow edges created",
	})

	RepliesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replies_created_total",
		Help: "Total replies added to publications",
	})

	MediaUploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "media_uploads_total",
		Help: "Uploads accepted by the object store, by kind",
	}, []string{"kind"})

	ActivityEventsConsumed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "activity_events_consumed_total",
		Help: "Activity stream events read by the audit workers, by type",
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(
		RequestDuration,
		RegisterSuccess,
		LoginSuccess,
		LoginFailure,
		PublicationsCreated,
		FollowsCreated,
		RepliesCreated,
		MediaUploads,
		ActivityEventsConsumed,
	)
}

type statusRecordingWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecordingWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// InstrumentHandler records request duration labelled by the matched chi route pattern,
// so /api/user/profile/1 and /api/user/profile/2 share one series.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &statusRecordingWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		RequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
