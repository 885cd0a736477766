package build

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	plansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "javabuild_plans_total",
		Help: "Compile plans computed, by planner mode",
	}, []string{"mode"})

	compilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "javabuild_compiles_total",
		Help: "Compile outcomes by status",
	}, []string{"status"})

	staleFiles = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "javabuild_stale_files",
		Help:    "Stale source files found by incremental plans",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 500},
	})

	compiledFiles = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "javabuild_compiled_files",
		Help:    "Source files handed to the compiler by incremental plans, dependents included",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 500},
	})

	planDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "javabuild_plan_duration_seconds",
		Help:    "Time spent planning a compile",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	compileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "javabuild_compile_duration_seconds",
		Help:    "Time spent in the compiler",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})
)
