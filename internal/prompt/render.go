// Package prompt 负责提示词拼装与模型输出解析
package prompt

import (
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Render 按字段表渲染 {name} 占位符
// 每个已知占位符只替换第一次出现，之后的出现与未知占位符原样保留，替换结果不会被再次扫描
func Render(template string, fields map[string]string) string {
	if template == "" || len(fields) == 0 {
		return template
	}

	used := make(map[string]bool, len(fields))
	return placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		name := token[1 : len(token)-1]
		value, ok := fields[name]
		if !ok || used[name] {
			return token
		}
		used[name] = true
		return value
	})
}

var fencePattern = regexp.MustCompile("```json\\n?|\\n?```")

// StripFence 去掉 ```json / ``` 代码块标记并裁剪空白
func StripFence(text string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))
}
