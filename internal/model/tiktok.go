package model

import "time"

// TikTokLength 目标文案长度
type TikTokLength string

const (
	LengthShort  TikTokLength = "short"
	LengthMedium TikTokLength = "medium"
	LengthLong   TikTokLength = "long"
)

// TikTokCopyOptions 抖音文案生成选项
type TikTokCopyOptions struct {
	StyleID         string       `json:"styleId"`
	TargetLength    TikTokLength `json:"targetLength"`
	IncludeHashtags bool         `json:"includeHashtags"`
}

// TikTokCopy 单条抖音文案
type TikTokCopy struct {
	ID          string           `json:"id"`
	ProductID   string           `json:"productId"`
	StyleID     string           `json:"styleId"`
	Hook        string           `json:"hook"`
	Content     string           `json:"content"`
	CTA         string           `json:"cta"`
	Hashtags    []string         `json:"hashtags"`
	Status      GenerationStatus `json:"status"`
	Degraded    bool             `json:"degraded,omitempty"`
	Error       string           `json:"error,omitempty"`
	GeneratedAt time.Time        `json:"generatedAt"`
}
