package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/api/dto"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/metrics"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/service"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/sse"
)

// TikTokController 抖音文案，默认以 SSE 推送
type TikTokController struct {
	tiktokService *service.TikTokService
	metrics       *metrics.Collector
	logger        *zap.Logger
}

func NewTikTokController(tiktokService *service.TikTokService, collector *metrics.Collector, logger *zap.Logger) *TikTokController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TikTokController{tiktokService: tiktokService, metrics: collector, logger: logger}
}

// Generate 生成抖音文案
// @Summary SSE 推送抖音文案，?stream=false 时返回 JSON
// @Tags TikTok
// @Accept json
// @Produce text/event-stream
// @Param body body dto.TikTokRequest true "商品与选项"
// @Router /api/generate/tiktok [post]
func (ctrl *TikTokController) Generate(c *gin.Context) {
	var req dto.TikTokRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.streamError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if req.Product == nil {
		ctrl.streamError(c, http.StatusBadRequest, "No product provided")
		return
	}

	// 流打开之前的错误以普通 JSON 返回
	opts, err := ctrl.tiktokService.Validate(req.Options)
	if err == nil {
		err = ctrl.tiktokService.Ready()
	}
	if err != nil {
		ctrl.streamError(c, statusOf(err), service.UserMessage(err))
		return
	}

	if c.Query("stream") == "false" {
		result, err := ctrl.tiktokService.Generate(c.Request.Context(), req.Product, opts)
		if err != nil {
			respondError(c, err)
			return
		}
		respondResult(c, result)
		return
	}

	sse.SetHeaders(c.Writer.Header())
	c.Status(http.StatusOK)

	w := sse.NewWriter(c.Writer).OnEvent(func(t sse.EventType) {
		ctrl.metrics.RecordStreamEvent(string(t))
	})

	err = sse.Relay(c.Request.Context(), w, req.Product.ID, func(ctx context.Context, emit func(string)) (interface{}, error) {
		result, err := ctrl.tiktokService.Stream(ctx, req.Product, opts, emit)
		if err != nil {
			return nil, &publicError{err: err}
		}
		return result, nil
	})
	if err != nil {
		ctrl.logger.Warn("抖音文案流式生成失败", zap.String("product_id", req.Product.ID), zap.Error(err))
	}
	if werr := w.Err(); werr != nil {
		ctrl.logger.Info("客户端已断开，事件未全部送达", zap.String("product_id", req.Product.ID), zap.Error(werr))
	}
}

func (ctrl *TikTokController) streamError(c *gin.Context, status int, msg string) {
	c.JSON(status, dto.StreamErrorResponse{Type: string(sse.EventError), Error: msg})
}

// publicError 事件流中只展示对外文案，Unwrap 保留取消与超时的判断
type publicError struct {
	err error
}

func (e *publicError) Error() string { return service.UserMessage(e.err) }
func (e *publicError) Unwrap() error { return e.err }
