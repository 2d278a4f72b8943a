package tsume

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	solvesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tsume",
		Subsystem: "solver",
		Name:      "solves_total",
		Help:      "Solves finished, by outcome",
	}, []string{"outcome"})

	nodesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tsume",
		Subsystem: "solver",
		Name:      "nodes_total",
		Help:      "Search nodes visited",
	})

	solveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tsume",
		Subsystem: "solver",
		Name:      "solve_duration_seconds",
		Help:      "Wall time per solve",
		Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	}, []string{"outcome"})

	mateLength = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tsume",
		Subsystem: "solver",
		Name:      "mate_length_plies",
		Help:      "Length of the mates found",
		Buckets:   []float64{1, 3, 5, 7, 9, 11, 15, 19, 23, 29},
	})

	ttableLookups = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tsume",
		Subsystem: "ttable",
		Name:      "lookups_total",
		Help:      "Transposition table lookups",
	})

	ttableHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tsume",
		Subsystem: "ttable",
		Name:      "hits_total",
		Help:      "Transposition table hits",
	})
)

func observeSolve(res *Result, tt *TranspositionTable) {
	outcome := res.Outcome.String()
	solvesTotal.WithLabelValues(outcome).Inc()
	solveDuration.WithLabelValues(outcome).Observe(res.Elapsed.Seconds())
	nodesTotal.Add(float64(res.Nodes))
	if res.Outcome == Mate {
		mateLength.Observe(float64(len(res.Moves)))
	}
	if tt != nil {
		ttableLookups.Add(float64(tt.lookups.Load()))
		ttableHits.Add(float64(tt.hits.Load()))
	}
}
