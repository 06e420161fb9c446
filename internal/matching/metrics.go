// internal/matching/metrics.go

package matching

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	swipesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amoria_swipes_total",
		Help: "Total swipes recorded, by direction",
	}, []string{"direction"})

	matchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amoria_matches_total",
		Help: "Total mutual matches created",
	})

	matchScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "amoria_match_compatibility_score",
		Help:    "Compatibility score of created matches",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})

	feedSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "amoria_discovery_feed_size",
		Help:    "Number of candidates returned per discovery request",
		Buckets: []float64{0, 1, 5, 10, 25, 50},
	})
)
