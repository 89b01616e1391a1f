// Package metrics declares the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RoadmapOperations counts roadmap mutations by operation and outcome.
	RoadmapOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skilltrack_roadmap_operations_total",
			Help: "Total number of roadmap operations",
		},
		[]string{"op", "outcome"},
	)

	// SkillCompletions counts skills completed, by provenance.
	SkillCompletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skilltrack_skill_completions_total",
			Help: "Total number of roadmap skills completed",
		},
		[]string{"source"},
	)

	// RoadmapsCompleted counts roadmaps that reached 100%.
	RoadmapsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skilltrack_roadmaps_completed_total",
			Help: "Total number of roadmaps completed",
		},
	)

	// VersionConflicts counts optimistic-lock retries.
	VersionConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skilltrack_tracker_version_conflicts_total",
			Help: "Total number of tracker saves retried after a version conflict",
		},
	)

	// BadgesIssued counts badges minted.
	BadgesIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skilltrack_badges_issued_total",
			Help: "Total number of badges issued",
		},
	)

	// NotificationsSent counts completion notifications by outcome.
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skilltrack_notifications_total",
			Help: "Total number of completion notifications attempted",
		},
		[]string{"outcome"},
	)

	// HTTPRequests counts API requests.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skilltrack_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks API latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skilltrack_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// LLMRequests counts model calls by purpose and outcome.
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skilltrack_llm_requests_total",
			Help: "Total number of LLM requests",
		},
		[]string{"purpose", "outcome"},
	)

	// LLMTokens counts tokens consumed, split by direction.
	LLMTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skilltrack_llm_tokens_total",
			Help: "Total number of LLM tokens",
		},
		[]string{"direction"},
	)
)
