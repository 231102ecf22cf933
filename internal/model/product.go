package model

import "time"

// Product 运营录入的商品，由前端随请求整体提交，服务端不持久化
type Product struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Category        string     `json:"category"`
	Brand           string     `json:"brand"`
	Material        string     `json:"material,omitempty"`
	Size            string     `json:"size,omitempty"`
	Color           string     `json:"color,omitempty"`
	TargetAudience  string     `json:"targetAudience,omitempty"`
	Images          []string   `json:"images"`
	ReferenceImages []string   `json:"referenceImages,omitempty"`
	ReferenceLinks  []string   `json:"referenceLinks,omitempty"`
	SaveToLibrary   bool       `json:"saveToLibrary,omitempty"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
}

// MainImage 第一张商品图，没有图片时为空串
func (p *Product) MainImage() string {
	if p == nil || len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ImageAt 按下标取图，越界返回 false
func (p *Product) ImageAt(index int) (string, bool) {
	if p == nil || index < 0 || index >= len(p.Images) || p.Images[index] == "" {
		return "", false
	}
	return p.Images[index], true
}

// 类目与人群候选值
var (
	Categories      = []string{"男包", "女包", "配饰", "鞋靴", "服装", "其他"}
	TargetAudiences = []string{"商务人士", "学生", "运动爱好者", "旅行者", "时尚潮人", "通用"}
)
