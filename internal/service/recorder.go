package service

import (
	"context"
	"encoding/json"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/metrics"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/middleware"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/model"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/repository"
)

// Call 一次上游 AI 调用
type Call struct {
	CallType   string
	Provider   string
	Model      string
	ProductID  string
	Endpoint   string
	Prompt     string
	Output     string
	ImageCount int
	Attempts   int
	Duration   time.Duration
	Err        error
	Degraded   bool
	Meta       map[string]interface{}
}

// Status 由 Err 与 Degraded 推导
func (c Call) Status() string {
	switch {
	case c.Err != nil:
		return model.AICallStatusFailed
	case c.Degraded:
		return model.AICallStatusDegraded
	default:
		return model.AICallStatusSuccess
	}
}

// CallRecorder 记录每次 AI 调用的指标与日志
// repo 为 nil 时只记指标
type CallRecorder struct {
	repo    repository.AICallLogRepository
	metrics *metrics.Collector
	logger  *zap.Logger
	timeout time.Duration
}

func NewCallRecorder(repo repository.AICallLogRepository, collector *metrics.Collector, logger *zap.Logger) *CallRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CallRecorder{repo: repo, metrics: collector, logger: logger, timeout: 3 * time.Second}
}

// Record 写入失败只打警告，不影响业务结果
func (r *CallRecorder) Record(ctx context.Context, call Call) {
	if r == nil {
		return
	}

	status := call.Status()
	r.metrics.RecordAICall(call.Provider, status, call.Duration)

	if r.repo == nil {
		return
	}

	log := &model.AICallLog{
		ProductID:   call.ProductID,
		Endpoint:    call.Endpoint,
		Operator:    middleware.OperatorFromContext(ctx),
		CallType:    call.CallType,
		Provider:    call.Provider,
		ModelName:   call.Model,
		PromptChars: utf8.RuneCountInString(call.Prompt),
		OutputChars: utf8.RuneCountInString(call.Output),
		ImageCount:  call.ImageCount,
		Attempts:    call.Attempts,
		DurationMs:  call.Duration.Milliseconds(),
		Status:      status,
	}
	if call.Err != nil {
		log.ErrorMsg = truncate(call.Err.Error(), 1024)
	}
	if len(call.Meta) > 0 {
		if raw, err := json.Marshal(call.Meta); err == nil {
			log.Meta = datatypes.JSON(raw)
		}
	}

	// 请求可能已经结束，日志写入不跟随请求取消
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	if err := r.repo.Create(writeCtx, log); err != nil {
		r.logger.Warn("写入AI调用日志失败",
			zap.String("provider", call.Provider),
			zap.String("call_type", call.CallType),
			zap.Error(err),
		)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// 按字符截断，避免切坏多字节字符
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
