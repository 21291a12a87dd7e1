package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hotel_admin_http_request_duration_seconds",
		Help:    "Duration of HTTP requests by route and status",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	rosterUpsertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotel_admin_roster_upserts_total",
		Help: "Total number of roster dates written, by outcome",
	}, []string{"outcome"})

	rosterCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotel_admin_roster_cache_lookups_total",
		Help: "Roster cache lookups by result (hit, miss, error, stale)",
	}, []string{"result"})

	mailPublishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotel_admin_mail_publish_total",
		Help: "Notification mails handed to the queue, by outcome",
	}, []string{"outcome"})
)

func (h *Handler) metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		// 用路由模板而不是原始路径，避免 ID 造成标签爆炸
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		httpRequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(rw.StatusCode)).Observe(time.Since(start).Seconds())
	})
}
