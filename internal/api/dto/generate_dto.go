package dto

import "github.com/Dexter1636/vibe-ec-dashboard/internal/model"

// ==================== 文案生成 ====================

// GenerateRequest 批量生成标题与卖点
type GenerateRequest struct {
	Products []model.Product `json:"products"`
}

// GenerateResponse 批量生成结果，以商品ID为键
type GenerateResponse struct {
	Success bool                              `json:"success"`
	Results map[string]model.GeneratedContent `json:"results"`
}

// TemplateGenerateRequest 基于模板生成
type TemplateGenerateRequest struct {
	Product  *model.Product  `json:"product"`
	Template *model.Template `json:"template"`
}

// ==================== 抖音文案 ====================

// TikTokRequest 抖音文案生成
type TikTokRequest struct {
	Product *model.Product          `json:"product"`
	Options model.TikTokCopyOptions `json:"options"`
}

// StreamErrorResponse 流开始前的错误
type StreamErrorResponse struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// ==================== 图片 ====================

// GenerateImageRequest 营销图生成，product 模式下 Product 必填
type GenerateImageRequest struct {
	Options *model.ImageGenerationOptions `json:"options"`
	Product *model.Product                `json:"product,omitempty"`
}

// AnalyzeImageRequest 商品图分析
type AnalyzeImageRequest struct {
	Product     *model.Product `json:"product"`
	ImageIndex  int            `json:"imageIndex"`
	Base64Image string         `json:"base64Image"`
}

// ==================== 通用响应 ====================

// ResultResponse 单个结果
type ResultResponse struct {
	Success bool        `json:"success"`
	Result  interface{} `json:"result"`
}

// ErrorResponse 失败响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
