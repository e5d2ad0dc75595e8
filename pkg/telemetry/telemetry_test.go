package telemetry

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordMetrics(t *testing.T) {
	RecordAnalysis("test_done", 150*time.Millisecond)
	RecordAnalysis("test_done", 10*time.Millisecond)
	if got := testutil.ToFloat64(metricAnalysisRuns.WithLabelValues("test_done")); got != 2 {
		t.Fatalf("analysis runs = %v, want 2", got)
	}

	RecordTool("test_tool", false, time.Millisecond)
	if got := testutil.ToFloat64(metricToolInvocations.WithLabelValues("test_tool", "error")); got != 1 {
		t.Fatalf("tool invocations = %v, want 1", got)
	}

	RecordNotification("test_transport", true)
	if got := testutil.ToFloat64(metricNotifications.WithLabelValues("test_transport", "success")); got != 1 {
		t.Fatalf("notifications = %v, want 1", got)
	}
}

func TestTracerProviderDisabled(t *testing.T) {
	tp, err := NewTracerProvider(Config{Enabled: false}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("NewTracerProvider() error = %v", err)
	}
	if tp != nil {
		t.Fatalf("NewTracerProvider() = %v, want nil when disabled", tp)
	}
	if err := tp.Shutdown(context.Background()); err != nil {
		t.Fatalf("nil Shutdown() error = %v", err)
	}
}

func TestTracerProviderExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	tp, err := NewTracerProvider(Config{Enabled: true, ServiceName: "screening-test"}, &buf)
	if err != nil {
		t.Fatalf("NewTracerProvider() error = %v", err)
	}

	_, span := StartSpan(context.Background(), "analyzer.test", AttrConversationID.String("c-1"))
	EndSpan(span, errors.New("boom"))

	if err := tp.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"analyzer.test", "screening.conversation.id", "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("exported spans missing %q:\n%s", want, out)
		}
	}
}
