package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/metrics"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/model"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/prompt"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/apperr"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/qwenimage"
)

// ImagePolling 轮询参数
type ImagePolling struct {
	MaxAttempts int
	Interval    time.Duration
}

// ImageService 营销图生成
type ImageService struct {
	images   ImageSource
	storage  StorageProvider // 可为 nil
	polling  ImagePolling
	recorder *CallRecorder
	metrics  *metrics.Collector
	logger   *zap.Logger
	now      func() time.Time
}

func NewImageService(images ImageSource, storage StorageProvider, polling ImagePolling, recorder *CallRecorder, collector *metrics.Collector, logger *zap.Logger) *ImageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageService{
		images:   images,
		storage:  storage,
		polling:  polling,
		recorder: recorder,
		metrics:  collector,
		logger:   logger,
		now:      time.Now,
	}
}

// BuildPrompt 按输入方式得到提示词，inputMode 不是 product 时一律按 manual 处理
func BuildPrompt(opts model.ImageGenerationOptions, p *model.Product) (string, *string, error) {
	if opts.StyleID == "" {
		return "", nil, apperr.Invalid("Style ID is required")
	}

	if opts.InputMode == model.InputModeProduct {
		if p == nil {
			return "", nil, apperr.Invalid("Product data required for product mode")
		}
		text, err := prompt.BuildImagePrompt(p, opts.StyleID)
		if err != nil {
			return "", nil, err
		}
		productID := p.ID
		return text, &productID, nil
	}

	if opts.ManualPrompt == "" {
		return "", nil, apperr.Invalid("Manual prompt required for manual mode")
	}
	if err := prompt.ValidateManualPrompt(opts.ManualPrompt); err != nil {
		return "", nil, err
	}
	return opts.ManualPrompt, nil, nil
}

// Generate 阻塞直到生图完成，最长 MaxAttempts x Interval
func (s *ImageService) Generate(ctx context.Context, opts model.ImageGenerationOptions, p *model.Product) (*model.GeneratedImage, error) {
	generator, err := s.images()
	if err != nil {
		return nil, err
	}

	text, productID, err := BuildPrompt(opts, p)
	if err != nil {
		return nil, err
	}

	s.logger.Info("开始生成图片",
		zap.String("style", opts.StyleID),
		zap.String("input_mode", string(opts.InputMode)),
		zap.String("prompt", previewRunes(text, 100)),
	)

	attempts := 0
	start := time.Now()
	imageURL, err := generator.GenerateImage(ctx, text, qwenimage.Options{
		MaxAttempts: s.polling.MaxAttempts,
		Interval:    s.polling.Interval,
		OnProgress: func(attempt int, status string) {
			attempts = attempt
			s.logger.Debug("生图轮询", zap.Int("attempt", attempt), zap.String("status", status))
		},
	})
	elapsed := time.Since(start)
	s.metrics.RecordPollAttempts(attempts)

	call := Call{
		CallType: model.AICallTypeImage,
		Provider: "Qwen-Image",
		Model:    generator.Model(),
		Endpoint: "generate-image",
		Prompt:   text,
		Attempts: attempts,
		Duration: elapsed,
		Meta: map[string]interface{}{
			"styleId":   opts.StyleID,
			"inputMode": opts.InputMode,
		},
	}
	if productID != nil {
		call.ProductID = *productID
	}
	if err != nil {
		call.Err = err
		s.recorder.Record(ctx, call)
		s.logger.Warn("生图失败", zap.Int("attempts", attempts), zap.Error(err))
		return nil, fmt.Errorf("image generation failed: %w", err)
	}
	call.ImageCount = 1
	call.Output = imageURL
	s.recorder.Record(ctx, call)

	s.logger.Info("生图完成", zap.Duration("elapsed", elapsed), zap.Int("attempts", attempts))

	result := &model.GeneratedImage{
		ID:             "img-" + uuid.New().String(),
		ProductID:      productID,
		StyleID:        opts.StyleID,
		Prompt:         text,
		ImageURL:       imageURL,
		Status:         model.StatusCompleted,
		GeneratedAt:    s.now(),
		GenerationTime: elapsed.Seconds(),
	}
	result.StoredURL = s.mirror(ctx, imageURL)
	return result, nil
}

// mirror 转存失败不影响结果，前端仍可用上游 URL
func (s *ImageService) mirror(ctx context.Context, imageURL string) string {
	if s.storage == nil {
		return ""
	}
	stored, err := s.storage.UploadFromURL(ctx, imageURL, "generated.png")
	if err != nil {
		s.logger.Warn("生成图片转存失败", zap.String("image_url", imageURL), zap.Error(err))
		return ""
	}
	return stored
}

func previewRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
