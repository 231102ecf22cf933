package model

import "time"

// InputMode 生图输入方式
type InputMode string

const (
	InputModeProduct InputMode = "product"
	InputModeManual  InputMode = "manual"
)

// ImageGenerationOptions 生图选项
// product 模式使用请求中的商品信息拼接提示词，manual 模式使用 ManualPrompt
type ImageGenerationOptions struct {
	StyleID      string    `json:"styleId"`
	InputMode    InputMode `json:"inputMode"`
	ProductID    string    `json:"productId,omitempty"`
	ManualPrompt string    `json:"manualPrompt,omitempty"`
}

// GeneratedImage 生图结果
// ProductID 在 manual 模式下为 null；StoredURL 为转存到对象存储后的地址
type GeneratedImage struct {
	ID             string           `json:"id"`
	ProductID      *string          `json:"productId"`
	StyleID        string           `json:"styleId"`
	Prompt         string           `json:"prompt"`
	ImageURL       string           `json:"imageUrl"`
	ThumbnailURL   string           `json:"thumbnailUrl,omitempty"`
	StoredURL      string           `json:"storedUrl,omitempty"`
	Status         GenerationStatus `json:"status"`
	Error          string           `json:"error,omitempty"`
	GeneratedAt    time.Time        `json:"generatedAt"`
	GenerationTime float64          `json:"generationTime"` // 秒
}
