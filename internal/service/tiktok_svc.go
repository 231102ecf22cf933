package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/model"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/prompt"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/apperr"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/llm"
)

// TikTokService 抖音短视频文案
type TikTokService struct {
	chat     ChatSource
	recorder *CallRecorder
	logger   *zap.Logger
	now      func() time.Time
}

func NewTikTokService(chat ChatSource, recorder *CallRecorder, logger *zap.Logger) *TikTokService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TikTokService{chat: chat, recorder: recorder, logger: logger, now: time.Now}
}

// Validate 校验并补全选项，长度为空时默认 medium
func (s *TikTokService) Validate(opts model.TikTokCopyOptions) (model.TikTokCopyOptions, error) {
	if opts.StyleID == "" {
		return opts, apperr.Invalid("No style selected")
	}
	if _, ok := prompt.FindTikTokStyle(opts.StyleID); !ok {
		return opts, apperr.Invalid("Invalid style ID: %s", opts.StyleID)
	}
	if opts.TargetLength == "" {
		opts.TargetLength = model.LengthMedium
	}
	if !prompt.ValidTikTokLength(opts.TargetLength) {
		return opts, apperr.Invalid("Invalid target length: %s", opts.TargetLength)
	}
	return opts, nil
}

// Ready 流开始前检查配置，错误能以普通 JSON 返回
func (s *TikTokService) Ready() error {
	_, err := s.chat()
	return err
}

// Stream 流式生成，每个非空片段回调 onChunk，结束后解析全文
func (s *TikTokService) Stream(ctx context.Context, p *model.Product, opts model.TikTokCopyOptions, onChunk func(string)) (*model.TikTokCopy, error) {
	opts, err := s.Validate(opts)
	if err != nil {
		return nil, err
	}
	client, err := s.chat()
	if err != nil {
		return nil, err
	}

	userPrompt := prompt.BuildTikTokPrompt(p, opts.StyleID, opts.TargetLength, opts.IncludeHashtags)
	messages := []llm.Message{
		llm.System(prompt.BuildTikTokSystemPrompt()),
		llm.User(userPrompt),
	}

	s.logger.Info("开始生成抖音文案",
		zap.String("product_id", p.ID),
		zap.String("style", opts.StyleID),
		zap.String("length", string(opts.TargetLength)),
	)

	start := time.Now()
	text, err := streamText(ctx, client, messages, onChunk)
	call := Call{
		CallType:  model.AICallTypeText,
		Provider:  client.Provider(),
		Model:     client.Model(),
		ProductID: p.ID,
		Endpoint:  "generate/tiktok",
		Prompt:    userPrompt,
		Output:    text,
		Duration:  time.Since(start),
		Meta: map[string]interface{}{
			"styleId":         opts.StyleID,
			"targetLength":    opts.TargetLength,
			"includeHashtags": opts.IncludeHashtags,
		},
	}
	if err != nil {
		call.Err = err
		s.recorder.Record(ctx, call)
		return nil, fmt.Errorf("tiktok copy stream failed: %w", err)
	}

	parsed, ok := prompt.ParseTikTokCopy(text)
	call.Degraded = !ok
	s.recorder.Record(ctx, call)
	if !ok {
		s.logger.Warn("抖音文案解析失败，原文作为正文", zap.String("product_id", p.ID))
	}

	now := s.now()
	return &model.TikTokCopy{
		ID:          fmt.Sprintf("%s-%d", p.ID, now.UnixMilli()),
		ProductID:   p.ID,
		StyleID:     opts.StyleID,
		Hook:        parsed.Hook,
		Content:     parsed.Content,
		CTA:         parsed.CTA,
		Hashtags:    parsed.Hashtags,
		Status:      model.StatusCompleted,
		Degraded:    !ok,
		GeneratedAt: now,
	}, nil
}

// Generate 非流式版本
func (s *TikTokService) Generate(ctx context.Context, p *model.Product, opts model.TikTokCopyOptions) (*model.TikTokCopy, error) {
	return s.Stream(ctx, p, opts, nil)
}
