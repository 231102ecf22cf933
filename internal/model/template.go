package model

// TemplateType 模板类型
type TemplateType string

const (
	TemplateComplete          TemplateType = "complete"
	TemplateTitleOnly         TemplateType = "title-only"
	TemplateSellingPointsOnly TemplateType = "selling-points-only"
	TemplateImageOnly         TemplateType = "image-only"
)

// Template 文案模板，占位符形如 {brand}、{name}
// 模板库在浏览器端保存，服务端只负责渲染
type Template struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Type     TemplateType    `json:"type"`
	Tags     []string        `json:"tags,omitempty"`
	Category string          `json:"category,omitempty"`
	Content  TemplateContent `json:"content"`
}

type TemplateContent struct {
	MainImageTemplate     *MainImageTemplate `json:"mainImageTemplate,omitempty"`
	TitleTemplate         string             `json:"titleTemplate,omitempty"`
	SellingPointsTemplate []string           `json:"sellingPointsTemplate,omitempty"`
}

type MainImageTemplate struct {
	TextOverlay string `json:"textOverlay"`
	Style       string `json:"style"`
}

// HasContent 是否有可渲染的标题或卖点模板
func (t *Template) HasContent() bool {
	return t != nil && (t.Content.TitleTemplate != "" || len(t.Content.SellingPointsTemplate) > 0)
}
