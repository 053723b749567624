package wishlist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	itemsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_wishlist_items",
		Help: "Number of products in the wish list",
	})

	writeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_wishlist_write_failures_total",
		Help: "Total failed wish list storage writes",
	})

	readFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_wishlist_read_failures_total",
		Help: "Total failed or corrupt wish list storage reads",
	})
)
