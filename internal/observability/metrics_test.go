package observability

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.ApiInflightInc()
	m.IncAggregateRetry("op")
	require.Nil(t, NewMetrics(MetricsConfig{}))

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 503, rec.Code)
}

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.ObserveAPI("POST", "/api/conversations", "201", 30*time.Millisecond)
	m.ObserveAPI("POST", "/api/conversations", "503", 2*time.Second)
	m.ObserveAggregateOperation("Conversation.Lineage.AppendConversation", "success", 4*time.Millisecond)
	m.IncAggregateRetry("Conversation.Lineage.AppendConversation")
	m.IncAggregateConflict("Conversation.Lineage.AppendConversation")
	m.IncVerificationCode("login", "issued")

	var buf bytes.Buffer
	require.NoError(t, m.WritePrometheus(&buf))
	out := buf.String()

	require.Contains(t, out, `studio_api_requests_total{method="POST",route="/api/conversations",status="201"} 1.000000`)
	require.Contains(t, out, "studio_api_requests_5xx_total 1.000000")
	require.Contains(t, out, `studio_api_request_duration_seconds_bucket{method="POST",route="/api/conversations",status="201",le="0.05"} 1`)
	require.Contains(t, out, `studio_aggregate_retries_total{op="Conversation.Lineage.AppendConversation"} 1.000000`)
	require.Contains(t, out, `studio_aggregate_conflicts_total{op="Conversation.Lineage.AppendConversation"} 1.000000`)
	require.Contains(t, out, `studio_verification_codes_total{purpose="login",result="issued"} 1.000000`)

	// Series of one family come out in label order.
	first := strings.Index(out, `status="201"} 1.000000`)
	second := strings.Index(out, `status="503"} 1.000000`)
	require.True(t, first >= 0 && second > first)
}

func TestLabelEscaping(t *testing.T) {
	require.Equal(t, `{a="x\"y",b="unknown"}`, labelString([]string{"a", "b"}, []string{`x"y`}))
	require.Equal(t, `{op="a",le="0.5"}`, withLe(`{op="a"}`, "0.5"))
	require.Equal(t, `{le="+Inf"}`, withLe("", "+Inf"))
}
