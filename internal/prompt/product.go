package prompt

import (
	"fmt"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/model"
)

// ProductSystemPrompt 标题卖点生成的系统提示词
const ProductSystemPrompt = "你是专业的电商文案创作专家。请根据商品信息生成吸引人的标题和卖点。"

// BuildProductPrompt 标题卖点生成的用户提示词
func BuildProductPrompt(p *model.Product) string {
	return fmt.Sprintf(`你是专业的电商文案创作专家。请为以下商品生成吸引人的标题和卖点。

【商品信息】
- 商品名称：%s
- 品牌：%s
- 类目：%s
- 材质：%s
- 颜色：%s
- 尺寸：%s
- 适用人群：%s

【要求】
1. 标题要吸引眼球，突出核心卖点
2. 卖点要具体、有说服力，3-5条
3. 语言简洁有力，符合电商风格

请以JSON格式返回：
{
  "title": "吸引人的商品标题",
  "sellingPoints": ["卖点1", "卖点2", "卖点3"]
}`,
		p.Name,
		p.Brand,
		p.Category,
		orDefault(p.Material, "未指定"),
		orDefault(p.Color, "未指定"),
		orDefault(p.Size, "未指定"),
		orDefault(p.TargetAudience, "通用"),
	)
}

// ==================== 模板字段 ====================

// TitleFields 标题模板可用的占位符
func TitleFields(p *model.Product) map[string]string {
	return map[string]string{
		"brand":          p.Brand,
		"name":           p.Name,
		"category":       p.Category,
		"material":       p.Material,
		"color":          p.Color,
		"targetAudience": p.TargetAudience,
	}
}

// SellingPointFields 卖点模板可用的占位符，缺省值用于弥补空字段
func SellingPointFields(p *model.Product) map[string]string {
	return map[string]string{
		"brand":          p.Brand,
		"material":       orDefault(p.Material, "精选材料"),
		"targetAudience": orDefault(p.TargetAudience, "多场景"),
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
