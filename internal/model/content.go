package model

import "time"

// GenerationStatus 单个生成任务的状态
type GenerationStatus string

const (
	StatusPending    GenerationStatus = "pending"
	StatusGenerating GenerationStatus = "generating"
	StatusStreaming  GenerationStatus = "streaming"
	StatusAnalyzing  GenerationStatus = "analyzing"
	StatusCompleted  GenerationStatus = "completed"
	StatusFailed     GenerationStatus = "failed"
)

// MainImage 主图信息，生成图暂时沿用原图，文字叠加为标题
type MainImage struct {
	OriginalImage  string `json:"originalImage"`
	GeneratedImage string `json:"generatedImage"`
	TextOverlay    string `json:"textOverlay,omitempty"`
}

// GeneratedContent 标题与卖点生成结果
// Degraded 为 true 表示模型输出无法解析，标题和卖点是兜底内容
type GeneratedContent struct {
	ProductID     string           `json:"productId"`
	MainImage     MainImage        `json:"mainImage"`
	Title         string           `json:"title"`
	SellingPoints []string         `json:"sellingPoints"`
	Status        GenerationStatus `json:"status"`
	Degraded      bool             `json:"degraded,omitempty"`
	GeneratedAt   *time.Time       `json:"generatedAt,omitempty"`
	Error         string           `json:"error,omitempty"`
}
