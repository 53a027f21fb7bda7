// Package observability wires tracing and metrics for the agent.
//
// This file exposes Prometheus instrumentation for the dialog pipeline with
// careful attention to label cardinality:
//
//   - state:     the conversation state a message was handled in
//   - outcome:   "ok" or "error" for outbound calls and commits
//   - partition: the catalog partition a search was fanned out to
//
// All collectors are safe for concurrent use.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// dialogMsgs counts handled inbound messages by conversation state.
	dialogMsgs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_messages_total",
			Help: "Total number of inbound messages handled, by conversation state.",
		},
		[]string{"state"},
	)

	// interpreterReqs counts language-model interpretation calls by outcome.
	interpreterReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interpreter_requests_total",
			Help: "Total number of interpreter requests.",
		},
		[]string{"outcome"},
	)

	// catalogSearches counts catalog partition searches by partition and outcome.
	catalogSearches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_searches_total",
			Help: "Total number of catalog partition searches.",
		},
		[]string{"partition", "outcome"},
	)

	// mealCommits counts diary commit attempts by outcome.
	mealCommits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meal_commits_total",
			Help: "Total number of meal diary commit attempts.",
		},
		[]string{"outcome"},
	)

	// resolveLat records food resolution duration in seconds.
	resolveLat = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "food_resolution_duration_seconds",
			Help:    "Duration of food resolution in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// activeSessions gauges the number of live chat sessions.
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_sessions_active",
			Help: "Current number of live chat sessions.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		dialogMsgs, interpreterReqs, catalogSearches, mealCommits,
		resolveLat, activeSessions,
	)
}

// CountMessage records one handled inbound message for the given state.
func CountMessage(state string) { dialogMsgs.WithLabelValues(state).Inc() }

// CountInterpreterRequest records an interpreter call outcome.
func CountInterpreterRequest(err error) {
	interpreterReqs.WithLabelValues(outcome(err)).Inc()
}

// CountCatalogSearch records a partition search outcome.
func CountCatalogSearch(partition string, err error) {
	catalogSearches.WithLabelValues(partition, outcome(err)).Inc()
}

// CountCommit records a diary commit outcome.
func CountCommit(err error) { mealCommits.WithLabelValues(outcome(err)).Inc() }

// ObserveResolution records the duration of one food resolution.
func ObserveResolution(d time.Duration) { resolveLat.Observe(d.Seconds()) }

// SessionOpened and SessionClosed track the live session gauge.
func SessionOpened() { activeSessions.Inc() }

// SessionClosed decrements the live session gauge.
func SessionClosed() { activeSessions.Dec() }

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ServeMetrics starts a blocking HTTP listener exposing /metrics on addr.
// Callers run it in a goroutine; an empty addr is rejected by ListenAndServe.
func ServeMetrics(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
