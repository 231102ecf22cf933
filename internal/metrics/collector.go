// Package metrics Prometheus 指标
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vibe"

// Collector 指标收集器，使用独立的 Registry，测试中可以多次创建
type Collector struct {
	registry *prometheus.Registry

	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// AI 调用指标
	aiCallsTotal      *prometheus.CounterVec
	aiCallDuration    *prometheus.HistogramVec
	imagePollAttempts prometheus.Histogram
	streamEventsTotal *prometheus.CounterVec
	batchItemsTotal   *prometheus.CounterVec
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	c := &Collector{registry: reg}

	c.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
		[]string{"method", "path"},
	)

	c.aiCallsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_calls_total",
			Help:      "Total number of upstream AI calls",
		},
		[]string{"provider", "status"},
	)

	c.aiCallDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ai_call_duration_seconds",
			Help:      "Upstream AI call duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"provider"},
	)

	c.imagePollAttempts = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "image_poll_attempts",
			Help:      "Status checks needed per image generation task",
			Buckets:   []float64{1, 2, 4, 6, 8, 12, 16, 20, 24},
		},
	)

	c.streamEventsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_events_total",
			Help:      "SSE events written to clients",
		},
		[]string{"type"},
	)

	c.batchItemsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Batch generation items by final status",
		},
		[]string{"status"},
	)

	return c
}

// Handler /metrics 输出
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// ==================== 记录 ====================
// 所有方法允许 nil 接收者，未启用指标时直接跳过

func (c *Collector) RecordHTTPRequest(method, path string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (c *Collector) RecordAICall(provider, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.aiCallsTotal.WithLabelValues(provider, status).Inc()
	c.aiCallDuration.WithLabelValues(provider).Observe(d.Seconds())
}

func (c *Collector) RecordPollAttempts(attempts int) {
	if c == nil {
		return
	}
	c.imagePollAttempts.Observe(float64(attempts))
}

func (c *Collector) RecordStreamEvent(eventType string) {
	if c == nil {
		return
	}
	c.streamEventsTotal.WithLabelValues(eventType).Inc()
}

func (c *Collector) RecordBatchItem(status string) {
	if c == nil {
		return
	}
	c.batchItemsTotal.WithLabelValues(status).Inc()
}
