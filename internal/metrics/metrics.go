// Package metrics exposes prometheus collectors for the gateway.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pageza/recipehub/backend/internal/types"
)

// Metrics groups the gateway's collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	sourceRequests    *prometheus.CounterVec
	listingWarnings   *prometheus.CounterVec
	moderationActions *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sourceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recipehub",
			Name:      "source_requests_total",
			Help:      "Calls to the recipe sources by outcome.",
		}, []string{"source", "op", "outcome"}),
		listingWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recipehub",
			Name:      "listing_warnings_total",
			Help:      "Degraded listing results by source.",
		}, []string{"source"}),
		moderationActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recipehub",
			Name:      "moderation_actions_total",
			Help:      "Moderation calls by action and outcome.",
		}, []string{"action", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recipehub",
			Name:      "http_requests_total",
			Help:      "HTTP requests served.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "recipehub",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg != nil {
		reg.MustRegister(m.sourceRequests, m.listingWarnings, m.moderationActions, m.httpRequests, m.httpDuration)
	}
	return m
}

// ObserveSource counts a call to a recipe source
func (m *Metrics) ObserveSource(source types.Source, op string, err error) {
	if m == nil {
		return
	}
	m.sourceRequests.WithLabelValues(string(source), op, Outcome(err)).Inc()
}

// ObserveWarning counts a degraded listing
func (m *Metrics) ObserveWarning(source types.Source) {
	if m == nil {
		return
	}
	m.listingWarnings.WithLabelValues(string(source)).Inc()
}

// ObserveModeration counts a terminal moderation outcome
func (m *Metrics) ObserveModeration(action types.ModerationAction, outcome string) {
	if m == nil {
		return
	}
	m.moderationActions.WithLabelValues(string(action), outcome).Inc()
}

// ObserveHTTP records a served request
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Outcome classifies err into a low-cardinality label
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	var (
		netErr     *types.NetworkError
		serverErr  *types.ServerError
		notFound   *types.NotFoundError
		inProgress *types.OperationInProgressError
		invalid    *types.InvalidTransitionError
		malformed  *types.MalformedRecordError
	)
	switch {
	case errors.As(err, &netErr):
		return "network_error"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &serverErr):
		return "server_error"
	case errors.As(err, &inProgress):
		return "in_progress"
	case errors.As(err, &invalid):
		return "invalid_transition"
	case errors.As(err, &malformed):
		return "malformed"
	default:
		return "error"
	}
}
