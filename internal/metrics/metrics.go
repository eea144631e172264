// Package metrics exposes prometheus collectors for the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled HTTP requests by method, route, and
	// status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assistd",
		Name:      "http_requests_total",
		Help:      "Handled HTTP requests.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency per route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "assistd",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	// ActiveSessions tracks the live session count.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "assistd",
		Name:      "active_sessions",
		Help:      "Currently active chat sessions.",
	})

	// SessionsExpired counts sessions removed by the idle sweep.
	SessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "assistd",
		Name:      "sessions_expired_total",
		Help:      "Sessions removed by the idle-timeout sweep.",
	})

	// MessagesAppended counts messages appended to conversations by role.
	MessagesAppended = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assistd",
		Name:      "messages_appended_total",
		Help:      "Messages appended to conversations.",
	}, []string{"role"})

	// ToolExecutions counts tool invocations by tool and outcome.
	ToolExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assistd",
		Name:      "tool_executions_total",
		Help:      "Tool invocations.",
	}, []string{"tool", "outcome"})

	// ToolDuration observes tool execution time.
	ToolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "assistd",
		Name:      "tool_duration_seconds",
		Help:      "Tool execution time.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"tool"})

	// InferenceRequests counts calls to the inference backend.
	InferenceRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assistd",
		Name:      "inference_requests_total",
		Help:      "Inference backend calls.",
	}, []string{"outcome"})
)

// Tool execution outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeError       = "error"
	OutcomeRefused     = "refused"
	OutcomeDisabled    = "disabled"
	OutcomeUnknownTool = "unknown_tool"
)
