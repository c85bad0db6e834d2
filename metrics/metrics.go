package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RoundTotal counts orchestration rounds by terminal phase.
	RoundTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fedprompt_round_total",
			Help: "Total number of orchestration rounds",
		},
		[]string{"phase"},
	)

	RoundDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fedprompt_round_duration_seconds",
			Help:    "Full round duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
	)

	ClientRoundDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fedprompt_client_round_duration_seconds",
			Help:    "Per-client round sequence duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"client_id"},
	)

	ClientReward = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fedprompt_client_reward",
			Help:    "Reward derived from the feedback signal per client round",
			Buckets: prometheus.LinearBuckets(-0.5, 0.1, 11),
		},
		[]string{"client_id"},
	)

	AggregationTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fedprompt_aggregation_total",
			Help: "Total number of aggregations performed",
		},
	)
)
