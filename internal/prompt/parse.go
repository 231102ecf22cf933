package prompt

import (
	"encoding/json"
	"strings"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/model"
)

// ==================== 兜底内容 ====================

const (
	FallbackTitle       = "AI生成标题"
	FallbackCTA         = "点击链接购买，限时优惠中！"
	FallbackVisualStyle = "未知"
)

var fallbackSellingPoints = []string{"精选品质", "值得信赖"}

// ProductCopy 标题与卖点
type ProductCopy struct {
	Title         string   `json:"title"`
	SellingPoints []string `json:"sellingPoints"`
}

// TikTokParsed 抖音文案结构化结果
type TikTokParsed struct {
	Hook     string   `json:"hook"`
	Content  string   `json:"content"`
	CTA      string   `json:"cta"`
	Hashtags []string `json:"hashtags"`
}

// ImageAnalysis 图片分析结构化结果
type ImageAnalysis struct {
	SellingPoints  []string             `json:"sellingPoints"`
	Keywords       []string             `json:"keywords"`
	VisualFeatures model.VisualFeatures `json:"visualFeatures"`
}

// ==================== 解析 ====================
// 模型输出无法解析时返回兜底内容与 false，不返回错误

// ParseProductCopy 解析标题卖点
func ParseProductCopy(text string) (ProductCopy, bool) {
	var out ProductCopy
	if !decodeObject(text, &out) {
		return ProductCopy{
			Title:         FallbackTitle,
			SellingPoints: append([]string(nil), fallbackSellingPoints...),
		}, false
	}
	if out.SellingPoints == nil {
		out.SellingPoints = []string{}
	}
	return out, true
}

// ParseTikTokCopy 解析抖音文案，失败时整段原文作为正文
func ParseTikTokCopy(text string) (TikTokParsed, bool) {
	var out TikTokParsed
	if !decodeObject(text, &out) {
		return TikTokParsed{
			Hook:     "",
			Content:  text,
			CTA:      FallbackCTA,
			Hashtags: []string{},
		}, false
	}
	if out.Hashtags == nil {
		out.Hashtags = []string{}
	}
	return out, true
}

// ParseImageAnalysis 解析图片分析结果
func ParseImageAnalysis(text string) (ImageAnalysis, bool) {
	var out ImageAnalysis
	if !decodeObject(text, &out) {
		return ImageAnalysis{
			SellingPoints:  []string{},
			Keywords:       []string{},
			VisualFeatures: model.VisualFeatures{Colors: []string{}, Style: FallbackVisualStyle},
		}, false
	}
	if out.SellingPoints == nil {
		out.SellingPoints = []string{}
	}
	if out.Keywords == nil {
		out.Keywords = []string{}
	}
	if out.VisualFeatures.Colors == nil {
		out.VisualFeatures.Colors = []string{}
	}
	return out, true
}

// decodeObject 只接受 JSON 对象，null 与数组都视为解析失败
func decodeObject(text string, v interface{}) bool {
	cleaned := StripFence(text)
	if !strings.HasPrefix(cleaned, "{") {
		return false
	}
	return json.Unmarshal([]byte(cleaned), v) == nil
}
