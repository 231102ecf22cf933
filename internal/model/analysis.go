package model

import "time"

// VisualFeatures 图片视觉特征
type VisualFeatures struct {
	Colors []string `json:"colors"`
	Style  string   `json:"style"`
	Scene  string   `json:"scene,omitempty"`
}

// ImageAnalysisResult 单张商品图的分析结果
type ImageAnalysisResult struct {
	ID             string           `json:"id"`
	ProductID      string           `json:"productId"`
	ImageIndex     int              `json:"imageIndex"`
	ImageURL       string           `json:"imageUrl"`
	SellingPoints  []string         `json:"sellingPoints"`
	Keywords       []string         `json:"keywords"`
	VisualFeatures VisualFeatures   `json:"visualFeatures"`
	Status         GenerationStatus `json:"status"`
	Degraded       bool             `json:"degraded,omitempty"`
	Error          string           `json:"error,omitempty"`
	AnalyzedAt     *time.Time       `json:"analyzedAt,omitempty"`
}
