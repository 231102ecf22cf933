package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/metrics"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/model"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/prompt"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/store"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/llm"
)

const defaultFailureMessage = "生成失败"

// CopyService 商品标题与卖点生成
type CopyService struct {
	chat     ChatSource
	recorder *CallRecorder
	metrics  *metrics.Collector
	logger   *zap.Logger
	now      func() time.Time
}

func NewCopyService(chat ChatSource, recorder *CallRecorder, collector *metrics.Collector, logger *zap.Logger) *CopyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CopyService{
		chat:     chat,
		recorder: recorder,
		metrics:  collector,
		logger:   logger,
		now:      time.Now,
	}
}

// ==================== 单个生成 ====================

// GenerateContent 不返回错误，失败记录在结果的 status 与 error 中
func (s *CopyService) GenerateContent(ctx context.Context, p *model.Product) model.GeneratedContent {
	content, err := s.generate(ctx, p, "generate")
	if err != nil {
		s.logger.Warn("商品文案生成失败", zap.String("product_id", p.ID), zap.Error(err))
		return failedContent(p, err)
	}
	return content
}

func (s *CopyService) generate(ctx context.Context, p *model.Product, endpoint string) (model.GeneratedContent, error) {
	client, err := s.chat()
	if err != nil {
		return model.GeneratedContent{}, err
	}

	userPrompt := prompt.BuildProductPrompt(p)
	messages := []llm.Message{
		llm.System(prompt.ProductSystemPrompt),
		llm.User(userPrompt),
	}

	start := time.Now()
	text, err := streamText(ctx, client, messages, nil)
	call := Call{
		CallType:  model.AICallTypeText,
		Provider:  client.Provider(),
		Model:     client.Model(),
		ProductID: p.ID,
		Endpoint:  endpoint,
		Prompt:    userPrompt,
		Output:    text,
		Duration:  time.Since(start),
	}
	if err != nil {
		call.Err = err
		s.recorder.Record(ctx, call)
		return model.GeneratedContent{}, fmt.Errorf("copy generation failed: %w", err)
	}

	parsed, ok := prompt.ParseProductCopy(text)
	call.Degraded = !ok
	s.recorder.Record(ctx, call)
	if !ok {
		s.logger.Warn("文案解析失败，使用兜底内容",
			zap.String("product_id", p.ID),
			zap.Int("output_length", len(text)),
		)
	}

	now := s.now()
	main := p.MainImage()
	return model.GeneratedContent{
		ProductID: p.ID,
		MainImage: model.MainImage{
			OriginalImage:  main,
			GeneratedImage: main,
			TextOverlay:    parsed.Title,
		},
		Title:         parsed.Title,
		SellingPoints: parsed.SellingPoints,
		Status:        model.StatusCompleted,
		Degraded:      !ok,
		GeneratedAt:   &now,
	}, nil
}

// ==================== 批量生成 ====================

// GenerateBatch 严格串行，单个失败只影响自己的结果槽位
// onProgress 在每个商品处理后调用（包括失败的）
// 商品 ID 重复时后写覆盖先写
func (s *CopyService) GenerateBatch(ctx context.Context, products []model.Product, onProgress func(current, total int)) map[string]model.GeneratedContent {
	results := store.NewKeyed[model.GeneratedContent]()
	total := len(products)

	s.logger.Info("开始批量生成", zap.Int("total", total))

	for i := range products {
		p := &products[i]

		var content model.GeneratedContent
		if err := ctx.Err(); err != nil {
			content = failedContent(p, fmt.Errorf("batch aborted: %w", err))
		} else {
			content = s.generateIsolated(ctx, p)
		}

		results.Put(p.ID, content)
		s.metrics.RecordBatchItem(string(content.Status))

		if onProgress != nil {
			onProgress(i+1, total)
		}
	}

	snapshot := results.Snapshot()
	s.logger.Info("批量生成完成", zap.Int("total", total), zap.Int("results", len(snapshot)))
	return snapshot
}

// generateIsolated panic 也只记为该商品失败
func (s *CopyService) generateIsolated(ctx context.Context, p *model.Product) (content model.GeneratedContent) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("商品生成 panic", zap.String("product_id", p.ID), zap.Any("panic", r))
			content = failedContent(p, fmt.Errorf("panic: %v", r))
		}
	}()
	return s.GenerateContent(ctx, p)
}

// ==================== 模板生成 ====================

// GenerateFromTemplate 模板有标题或卖点时直接渲染，否则走 AI 生成
func (s *CopyService) GenerateFromTemplate(ctx context.Context, p *model.Product, tmpl *model.Template) model.GeneratedContent {
	if !tmpl.HasContent() {
		content, err := s.generate(ctx, p, "generate/template")
		if err != nil {
			s.logger.Warn("模板为空，AI 生成失败", zap.String("product_id", p.ID), zap.Error(err))
			return failedContent(p, err)
		}
		return content
	}

	var title string
	if tmpl.Content.TitleTemplate != "" {
		title = prompt.Render(tmpl.Content.TitleTemplate, prompt.TitleFields(p))
	}

	sellingPoints := make([]string, 0, len(tmpl.Content.SellingPointsTemplate))
	fields := prompt.SellingPointFields(p)
	for _, point := range tmpl.Content.SellingPointsTemplate {
		sellingPoints = append(sellingPoints, prompt.Render(point, fields))
	}

	now := s.now()
	main := p.MainImage()
	return model.GeneratedContent{
		ProductID: p.ID,
		MainImage: model.MainImage{
			OriginalImage:  main,
			GeneratedImage: main,
			TextOverlay:    title,
		},
		Title:         title,
		SellingPoints: sellingPoints,
		Status:        model.StatusCompleted,
		GeneratedAt:   &now,
	}
}

// ==================== 工具函数 ====================

func failedContent(p *model.Product, err error) model.GeneratedContent {
	main := p.MainImage()
	return model.GeneratedContent{
		ProductID: p.ID,
		MainImage: model.MainImage{
			OriginalImage:  main,
			GeneratedImage: main,
		},
		Title:         "",
		SellingPoints: []string{},
		Status:        model.StatusFailed,
		Error:         UserMessage(err),
	}
}

// streamText 流式调用并拼接全文
// ctx 取消时上游 channel 直接关闭不带错误，这里补上
func streamText(ctx context.Context, client ChatClient, messages []llm.Message, onChunk func(string)) (string, error) {
	ch, err := client.Stream(ctx, messages)
	if err != nil {
		return "", err
	}
	text, err := llm.Collect(ch, onChunk)
	if err != nil {
		return text, err
	}
	if err := ctx.Err(); err != nil {
		return text, err
	}
	return text, nil
}
