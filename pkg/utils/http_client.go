package utils

import (
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// NewAPIClient 创建上游 AI 接口统一使用的 Resty 客户端
// baseURL 末尾的 "/" 会被去掉，调用方以 "/v1/..." 形式拼接路径
// 不开启自动重试：上游调用失败由业务层决定如何处理
func NewAPIClient(baseURL, apiKey string, timeout time.Duration) *resty.Client {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "Vibe-EC/1.0")

	if baseURL != "" {
		client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	}
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}

	return client
}
