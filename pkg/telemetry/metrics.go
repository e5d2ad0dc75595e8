package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "screening"

var (
	metricAnalysisRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analysis_runs_total",
		Help:      "Post-conversation analysis runs by outcome.",
	}, []string{"outcome"})
	metricAnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "analysis_duration_seconds",
		Help:      "Wall time of a full analysis run.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	})
	metricToolInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tool_invocations_total",
		Help:      "Tool invocations by tool name and status.",
	}, []string{"tool", "status"})
	metricToolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tool_duration_seconds",
		Help:      "Execution time of a single tool invocation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"tool"})
	metricDecisionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decisions_created_total",
		Help:      "Decisions persisted by type.",
	}, []string{"decision_type"})
	metricNotifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Recruiter notifications by transport and status.",
	}, []string{"transport", "status"})
)

func RecordAnalysis(outcome string, elapsed time.Duration) {
	metricAnalysisRuns.WithLabelValues(outcome).Inc()
	metricAnalysisDuration.Observe(elapsed.Seconds())
}

func RecordTool(tool string, success bool, elapsed time.Duration) {
	metricToolInvocations.WithLabelValues(tool, statusLabel(success)).Inc()
	metricToolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

func RecordDecision(decisionType string) {
	metricDecisionsCreated.WithLabelValues(decisionType).Inc()
}

func RecordNotification(transport string, success bool) {
	metricNotifications.WithLabelValues(transport, statusLabel(success)).Inc()
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
