package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	SubscriptionsActive *prometheus.GaugeVec
	SnapshotsDelivered  *prometheus.CounterVec
	SubscriptionErrors  *prometheus.CounterVec
	FeedConnections     *prometheus.GaugeVec
	Writes              *prometheus.CounterVec
	WriteErrors         *prometheus.CounterVec
	WriteDuration       *prometheus.HistogramVec
}

// NewMetrics registers the service metrics on reg. Pass
// prometheus.DefaultRegisterer in main and a fresh registry in tests.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SubscriptionsActive: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscriptions_active",
			Help:      "Live query subscriptions currently open",
		}, []string{"collection"}),
		SnapshotsDelivered: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_delivered_total",
			Help:      "The total number of snapshots delivered to consumers",
		}, []string{"collection"}),
		SubscriptionErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscription_errors_total",
			Help:      "The total number of subscriptions terminated by an error",
		}, []string{"collection"}),
		FeedConnections: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_connections",
			Help:      "Open websocket feed connections",
		}, []string{"feed"}),
		Writes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "writes_total",
			Help:      "The total number of write operations",
		}, []string{"operation"}),
		WriteErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_errors_total",
			Help:      "The total number of failed write operations",
		}, []string{"operation"}),
		WriteDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "write_duration_seconds",
			Help:      "Time taken by write operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// NewNopMetrics registers on a private registry so tests can build any
// number of instances without duplicate registration panics.
func NewNopMetrics() *Metrics {
	return NewMetrics("test", prometheus.NewRegistry())
}
