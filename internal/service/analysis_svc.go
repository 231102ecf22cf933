package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/model"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/prompt"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/apperr"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/llm"
)

const defaultImageMIME = "data:image/jpeg;base64,"

// AnalysisService 商品图视觉分析
type AnalysisService struct {
	vision   ChatSource
	recorder *CallRecorder
	logger   *zap.Logger
	now      func() time.Time
}

func NewAnalysisService(vision ChatSource, recorder *CallRecorder, logger *zap.Logger) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{vision: vision, recorder: recorder, logger: logger, now: time.Now}
}

// Analyze 分析 product.images[imageIndex]，图片内容由前端以 base64 传入
// 配置检查在参数校验之前
func (s *AnalysisService) Analyze(ctx context.Context, p *model.Product, imageIndex int, base64Image string) (*model.ImageAnalysisResult, error) {
	client, err := s.vision()
	if err != nil {
		return nil, err
	}

	if p == nil {
		return nil, apperr.Invalid("No product provided")
	}
	imageURL, ok := p.ImageAt(imageIndex)
	if !ok {
		return nil, apperr.Invalid("Image at index %d not found", imageIndex)
	}
	if base64Image == "" {
		return nil, apperr.Invalid("Base64 image data is required")
	}

	dataURL := base64Image
	if !strings.HasPrefix(dataURL, "data:") {
		dataURL = defaultImageMIME + dataURL
	}

	userPrompt := prompt.BuildImageAnalysisPrompt(p)
	messages := []llm.Message{llm.UserWithImage(dataURL, userPrompt)}

	s.logger.Info("开始分析商品图片",
		zap.String("product_id", p.ID),
		zap.Int("image_index", imageIndex),
		zap.Int("image_size", len(base64Image)),
	)

	start := time.Now()
	text, err := client.Complete(ctx, messages)
	call := Call{
		CallType:  model.AICallTypeVision,
		Provider:  client.Provider(),
		Model:     client.Model(),
		ProductID: p.ID,
		Endpoint:  "analyze-image",
		Prompt:    userPrompt,
		Output:    text,
		Duration:  time.Since(start),
		Meta:      map[string]interface{}{"imageIndex": imageIndex},
	}
	if err != nil {
		call.Err = err
		s.recorder.Record(ctx, call)
		return nil, fmt.Errorf("Image analysis failed: %w", err)
	}

	parsed, ok := prompt.ParseImageAnalysis(text)
	call.Degraded = !ok
	s.recorder.Record(ctx, call)
	if !ok {
		s.logger.Warn("图片分析结果解析失败，使用兜底内容", zap.String("product_id", p.ID))
	}

	now := s.now()
	return &model.ImageAnalysisResult{
		ID:             fmt.Sprintf("%s-%d-%d", p.ID, imageIndex, now.UnixMilli()),
		ProductID:      p.ID,
		ImageIndex:     imageIndex,
		ImageURL:       imageURL,
		SellingPoints:  parsed.SellingPoints,
		Keywords:       parsed.Keywords,
		VisualFeatures: parsed.VisualFeatures,
		Status:         model.StatusCompleted,
		Degraded:       !ok,
		AnalyzedAt:     &now,
	}, nil
}
