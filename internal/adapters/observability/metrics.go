package observability

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "stayscore", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stayscore", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ChannelRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "stayscore", Name: "channel_requests_total", Help: "Outbound review-channel requests."},
		[]string{"channel", "endpoint", "status"},
	)
	ChannelLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stayscore", Name: "channel_request_duration_seconds",
			Help:    "Outbound review-channel request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"channel", "endpoint"},
	)
	FetchOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "stayscore", Name: "fetch_outcomes_total", Help: "Per-channel fetch outcomes."},
		[]string{"channel", "outcome"}, // outcome: scored|not_found|error|not_configured|cached
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "stayscore", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
)

func Serve() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ChannelRequests, ChannelLatency, FetchOutcomes, CacheEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

// ObserveChannel records one outbound call to a review platform; status 0
// means the request never completed.
func ObserveChannel(channel, endpoint string, status int, dur time.Duration) {
	ChannelRequests.WithLabelValues(channel, endpoint, strconv.Itoa(status)).Inc()
	ChannelLatency.WithLabelValues(channel, endpoint).Observe(dur.Seconds())
}

func ObserveFetch(channel, outcome string) {
	FetchOutcomes.WithLabelValues(channel, outcome).Inc()
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}
