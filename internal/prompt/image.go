package prompt

import (
	"strings"
	"unicode/utf8"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/model"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/apperr"
)

// ImageScenario 生图场景，决定基础提示词
type ImageScenario string

const (
	ScenarioPoster       ImageScenario = "poster"
	ScenarioProductCover ImageScenario = "product-cover"
	ScenarioSocial       ImageScenario = "social"
)

var scenarioPrompts = map[ImageScenario]string{
	ScenarioPoster:       "Professional e-commerce promotional poster, high quality, 4K, commercial photography",
	ScenarioProductCover: "Product cover image for e-commerce platform, clean background, professional lighting, product photography",
	ScenarioSocial:       "Social media marketing image, lifestyle photography, aesthetic composition, Instagram style",
}

// ImageStyle 生图风格
type ImageStyle struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Icon        string        `json:"icon"`
	Description string        `json:"description"`
	Scenario    ImageScenario `json:"scenario"`
	modifiers   string
}

var ImageStyles = []ImageStyle{
	{ID: "poster", Name: "电商海报", Icon: "🛒", Description: "促销活动海报，突出价格和优惠信息", Scenario: ScenarioPoster,
		modifiers: "bold typography, sale tag, price emphasis, promotional elements, vibrant colors"},
	{ID: "product-cover", Name: "商品首图", Icon: "📦", Description: "抖音/淘宝主图，突出产品特点", Scenario: ScenarioProductCover,
		modifiers: "white background, studio lighting, sharp focus, high contrast, professional product photography"},
	{ID: "lifestyle", Name: "生活方式", Icon: "🌟", Description: "展示产品使用场景和生活美学", Scenario: ScenarioSocial,
		modifiers: "natural lighting, candid moment, lifestyle context, warm tones, authentic feel"},
	{ID: "minimalist", Name: "简约风格", Icon: "⬜", Description: "干净简洁的视觉设计", Scenario: ScenarioSocial,
		modifiers: "clean composition, negative space, simple colors, modern aesthetic, Scandinavian style"},
	{ID: "luxury", Name: "高端奢华", Icon: "💎", Description: "彰显品质和尊贵感", Scenario: ScenarioSocial,
		modifiers: "elegant lighting, gold accents, premium materials, sophisticated atmosphere, luxury brand style"},
	{ID: "vibrant", Name: "活力鲜艳", Icon: "🎨", Description: "色彩鲜明，充满活力", Scenario: ScenarioSocial,
		modifiers: "saturated colors, dynamic composition, energetic feel, bold contrasts, eye-catching"},
	{ID: "seasonal", Name: "季节主题", Icon: "🍂", Description: "结合季节元素的营销图", Scenario: ScenarioPoster,
		modifiers: "seasonal decorations, thematic elements, holiday atmosphere, relevant props"},
	{ID: "brand-story", Name: "品牌故事", Icon: "📖", Description: "讲述品牌理念和价值", Scenario: ScenarioPoster,
		modifiers: "editorial style, brand aesthetic, premium quality, sophisticated mood, brand identity"},
}

// FindImageStyle 按 ID 查找生图风格
func FindImageStyle(id string) (ImageStyle, bool) {
	for _, s := range ImageStyles {
		if s.ID == id {
			return s, true
		}
	}
	return ImageStyle{}, false
}

// BuildImagePrompt 场景基础词 + 商品描述 + 风格修饰词
func BuildImagePrompt(p *model.Product, styleID string) (string, error) {
	style, ok := FindImageStyle(styleID)
	if !ok {
		return "", apperr.Invalid("Invalid style ID: %s", styleID)
	}

	prompt := scenarioPrompts[style.Scenario] + ", " + describeProduct(p) + ", " + style.modifiers
	return strings.TrimSpace(prompt), nil
}

func describeProduct(p *model.Product) string {
	desc := p.Name + ", " + p.Brand + " brand, " + p.Category
	if p.Material != "" {
		desc += ", made of " + p.Material
	}
	if p.Color != "" {
		desc += ", " + p.Color + " color"
	}
	if p.TargetAudience != "" {
		desc += ", designed for " + p.TargetAudience
	}
	return desc
}

const (
	ManualPromptMin = 10
	ManualPromptMax = 1000
)

// ValidateManualPrompt 手动提示词裁剪后按字符计长度，范围 [10, 1000]
func ValidateManualPrompt(prompt string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(prompt))
	switch {
	case n == 0:
		return apperr.Invalid("Prompt cannot be empty")
	case n < ManualPromptMin:
		return apperr.Invalid("Prompt must be at least %d characters", ManualPromptMin)
	case n > ManualPromptMax:
		return apperr.Invalid("Prompt must be less than %d characters", ManualPromptMax)
	}
	return nil
}
