// Package metrics exposes Prometheus collectors for gameplay.
// Collectors register on the default registry; /metrics serves them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "homophones"

// AnswersTotal counts submitted answers by result (correct, rejected).
var AnswersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "answers_total",
	Help:      "Submitted answers by result.",
}, []string{"result"})

// HintsTotal counts hint requests by kind (free, paid, denied).
var HintsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "hints_total",
	Help:      "Hint requests by kind.",
}, []string{"kind"})

// GemsSpent counts gems deducted for paid hints.
var GemsSpent = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "gems_spent_total",
	Help:      "Gems spent on hints.",
})

// SessionsStarted counts new sessions.
var SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "sessions_started_total",
	Help:      "Sessions started.",
})

// SessionsCompleted counts sessions in which every word was found.
var SessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "sessions_completed_total",
	Help:      "Sessions completed.",
})

// SessionsActive tracks sessions held in memory.
var SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "sessions_active",
	Help:      "Sessions currently held in memory.",
})

// FinalScore observes the score of each completed session.
var FinalScore = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "final_score",
	Help:      "Score at completion.",
	Buckets:   prometheus.LinearBuckets(0, 25, 12),
})
