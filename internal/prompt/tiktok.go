package prompt

import (
	"strings"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/model"
)

// TikTokStyle 抖音文案风格
type TikTokStyle struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	instruction string
}

var TikTokStyles = []TikTokStyle{
	{
		ID: "funny", Name: "搞笑幽默", Icon: "😄",
		Description: "用幽默诙谐的方式介绍产品，增加娱乐性和传播力",
		instruction: `【风格要求：搞笑幽默】
- 使用幽默、诙谐、夸张的语言
- 适当使用网络热梗和流行语
- 制造反差萌和意外感
- 用轻松的方式展示产品价值
- 语气：活泼、俏皮、接地气`,
	},
	{
		ID: "practical", Name: "实用干货", Icon: "💡",
		Description: "突出产品功能和使用场景，强调实用价值",
		instruction: `【风格要求：实用干货】
- 直接点明产品功能和使用场景
- 列举具体的使用方法和技巧
- 强调解决问题的能力
- 用数据和事实说话
- 语气：专业、真诚、实用`,
	},
	{
		ID: "emotional", Name: "情感共鸣", Icon: "❤️",
		Description: "通过情感故事和用户痛点引发共鸣",
		instruction: `【风格要求：情感共鸣】
- 从用户痛点和情感需求切入
- 讲述温暖、感人的故事
- 强调产品带来的情感价值
- 激发用户共鸣和认同
- 语气：温暖、走心、感性`,
	},
	{
		ID: "recommendation", Name: "种草安利", Icon: "🌟",
		Description: "真诚推荐，像朋友分享一样自然",
		instruction: `【风格要求：种草安利】
- 像朋友一样真诚推荐
- 分享真实使用体验
- 强调"必入"、"不买亏"的感觉
- 用第一人称叙述更自然
- 语气：热情、真诚、种草感强`,
	},
	{
		ID: "story", Name: "故事讲述", Icon: "📖",
		Description: "通过故事情节展示产品价值",
		instruction: `【风格要求：故事讲述】
- 用完整的故事线展示产品
- 设置情节转折和高潮
- 通过故事自然植入产品
- 制造悬念和吸引力
- 语气：生动、有趣、代入感强`,
	},
	{
		ID: "comparison", Name: "对比测评", Icon: "⚔️",
		Description: "与市面产品对比，突出优势",
		instruction: `【风格要求：对比测评】
- 与市面同类产品对比
- 突出本产品的独特优势
- 客观指出其他产品不足
- 强调性价比和购买理由
- 语气：客观、专业、有说服力`,
	},
}

var lengthInstructions = map[model.TikTokLength]string{
	model.LengthShort:  "50-100字",
	model.LengthMedium: "100-200字",
	model.LengthLong:   "200-300字",
}

// FindTikTokStyle 按 ID 查找风格
func FindTikTokStyle(id string) (TikTokStyle, bool) {
	for _, s := range TikTokStyles {
		if s.ID == id {
			return s, true
		}
	}
	return TikTokStyle{}, false
}

// ValidTikTokLength 长度是否合法
func ValidTikTokLength(l model.TikTokLength) bool {
	_, ok := lengthInstructions[l]
	return ok
}

// BuildTikTokSystemPrompt 抖音文案系统提示词
func BuildTikTokSystemPrompt() string {
	return `你是专业的抖音/短视频电商文案创作专家。

【文案结构要求】
1. 黄金3秒开头（Hook）：立即抓住用户注意力
2. 主体内容：根据指定风格展开
3. 行动号召（CTA）：引导用户点赞、评论、购买
4. 话题标签：3-5个相关标签

【创作原则】
- 口语化、接地气，避免书面语
- 多用短句，节奏感强
- 适当使用emoji增强表达
- 制造紧迫感和稀缺感
- 突出产品独特卖点
- 考虑目标受众的语言习惯

【输出格式】请严格按照以下JSON格式输出：
{
  "hook": "黄金3秒开头，立即抓住注意力",
  "content": "主体内容，根据风格展开",
  "cta": "行动号召，引导购买",
  "hashtags": ["标签1", "标签2", "标签3"]
}`
}

// BuildTikTokPrompt 抖音文案用户提示词
// 未知风格不追加风格要求，未知长度按 medium 处理
func BuildTikTokPrompt(p *model.Product, styleID string, length model.TikTokLength, includeHashtags bool) string {
	style, _ := FindTikTokStyle(styleID)
	lengthText, ok := lengthInstructions[length]
	if !ok {
		lengthText = lengthInstructions[model.LengthMedium]
	}

	var b strings.Builder
	b.WriteString(style.instruction)
	b.WriteString("\n\n\n【商品信息】\n")
	b.WriteString("- 商品名称：" + p.Name + "\n")
	b.WriteString("- 品牌：" + p.Brand + "\n")
	b.WriteString("- 类目：" + p.Category + "\n")
	if p.Material != "" {
		b.WriteString("- 材质：" + p.Material + "\n")
	}
	if p.Size != "" {
		b.WriteString("- 尺寸：" + p.Size + "\n")
	}
	if p.Color != "" {
		b.WriteString("- 颜色：" + p.Color + "\n")
	}
	if p.TargetAudience != "" {
		b.WriteString("- 适用人群：" + p.TargetAudience + "\n")
	}

	b.WriteString("\n【目标长度】" + lengthText + "\n")
	if includeHashtags {
		b.WriteString("【要求】生成3-5个相关话题标签\n")
	} else {
		b.WriteString("【要求】不生成标签\n")
	}

	b.WriteString("\n\n请根据以上信息和风格要求，创作一篇抖音/短视频文案。")
	return b.String()
}
