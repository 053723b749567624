package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_catalog_fetch_total",
			Help: "Total catalog fetches by result",
		},
		[]string{"result"},
	)

	fetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storefront_catalog_fetch_duration_seconds",
			Help:    "Catalog fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
