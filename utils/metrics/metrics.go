// Package metrics holds the Prometheus collectors of the client. They are
// registered on a private registry so tests and embedding programs do not
// collide with the default one.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "teluhub",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of REST calls to the backend.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	StockStreamsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "teluhub",
		Subsystem: "stock",
		Name:      "streams_active",
		Help:      "Number of open stock subscriptions.",
	})

	StockUpdatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "teluhub",
		Subsystem: "stock",
		Name:      "updates_total",
		Help:      "Stock updates applied to subscriptions.",
	})

	PushMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "teluhub",
			Subsystem: "push",
			Name:      "messages_total",
			Help:      "Push messages received, by channel and outcome.",
		},
		[]string{"channel", "result"},
	)
)

func init() {
	Registry.MustRegister(
		HTTPRequestDuration,
		StockStreamsActive,
		StockUpdatesTotal,
		PushMessagesTotal,
	)
}

// ObserveHTTP records one REST call. status 0 means the call never got a
// response.
func ObserveHTTP(method string, status int, started time.Time) {
	HTTPRequestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(time.Since(started).Seconds())
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
