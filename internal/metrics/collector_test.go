package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_RecordAICall(t *testing.T) {
	c := NewCollector()

	c.RecordAICall("DeepSeek", "success", time.Second)
	c.RecordAICall("DeepSeek", "success", 2*time.Second)
	c.RecordAICall("Qwen", "failed", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.aiCallsTotal.WithLabelValues("DeepSeek", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.aiCallsTotal.WithLabelValues("Qwen", "failed")))
}

func TestCollector_StreamEventsAndBatch(t *testing.T) {
	c := NewCollector()

	c.RecordStreamEvent("start")
	c.RecordStreamEvent("streaming")
	c.RecordStreamEvent("streaming")
	c.RecordBatchItem("failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.streamEventsTotal.WithLabelValues("streaming")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.batchItemsTotal.WithLabelValues("failed")))
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordAICall("x", "y", time.Second)
		c.RecordPollAttempts(3)
		c.RecordStreamEvent("start")
		c.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
		c.RecordBatchItem("completed")
	})
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.RecordPollAttempts(4)
	c.RecordHTTPRequest("POST", "/api/generate", 200, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "vibe_image_poll_attempts_count 1"))
	assert.Contains(t, body, `vibe_http_requests_total{method="POST",path="/api/generate",status="200"} 1`)
}
