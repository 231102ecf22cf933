// Package llm 是 OpenAI 兼容协议的对话客户端
// DeepSeek 文本生成与 Qwen-VL 图片分析都通过 ModelScope 的兼容接口调用
package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Dexter1636/vibe-ec-dashboard/pkg/apperr"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/utils"
)

const DefaultBaseURL = "https://api-inference.modelscope.cn/v1"

type Config struct {
	Provider       string // 日志与错误提示中的名称，如 DeepSeek、Qwen
	APIKey         string
	APIKeyEnv      string // 缺失时错误信息里引用的环境变量名
	BaseURL        string
	Model          string
	ModelEnv       string
	EnableThinking bool
	Timeout        time.Duration // 包含流式读取在内的整体超时
}

type Client struct {
	cfg    Config
	http   *resty.Client
	logger *zap.Logger
}

// NewClient 缺少 API Key 时返回配置错误，不发起任何网络请求
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apperr.MissingConfig(cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		cfg:    cfg,
		http:   utils.NewAPIClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout),
		logger: logger.With(zap.String("provider", cfg.Provider)),
	}, nil
}

func (c *Client) Provider() string { return c.cfg.Provider }
func (c *Client) Model() string    { return c.cfg.Model }

func (c *Client) newRequest(messages []Message, stream bool) chatRequest {
	req := chatRequest{
		Model:    c.cfg.Model,
		Messages: messages,
		Stream:   stream,
	}
	if c.cfg.EnableThinking {
		enabled := true
		req.EnableThinking = &enabled
	}
	return req
}

// Complete 非流式调用，返回第一条 choice 的内容
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	c.logger.Debug("发起对话请求",
		zap.String("model", c.cfg.Model),
		zap.Int("messages", len(messages)),
		zap.Bool("hasApiKey", c.cfg.APIKey != ""),
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(c.newRequest(messages, false)).
		Post("/chat/completions")
	if err != nil {
		return "", c.connectionError(err)
	}
	if !resp.IsSuccess() {
		return "", c.mapHTTPError(resp.StatusCode(), resp.Body())
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", &APIError{Provider: c.cfg.Provider, StatusCode: resp.StatusCode(), Message: "invalid response body", Err: err}
	}
	if len(out.Choices) == 0 || out.Choices[0].Message == nil {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}

// Stream 流式调用，返回增量 channel
// channel 在 [DONE]、EOF、读取错误或 ctx 取消后关闭，读取或解码失败时最后一个 chunk 携带 Err
func (c *Client) Stream(ctx context.Context, messages []Message) (<-chan StreamChunk, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "text/event-stream").
		SetBody(c.newRequest(messages, true)).
		Post("/chat/completions")
	if err != nil {
		return nil, c.connectionError(err)
	}

	body := resp.RawBody()
	if !resp.IsSuccess() {
		defer body.Close()
		raw, _ := io.ReadAll(io.LimitReader(body, 64*1024))
		return nil, c.mapHTTPError(resp.StatusCode(), raw)
	}

	return c.readStream(ctx, body), nil
}

func (c *Client) readStream(ctx context.Context, body io.ReadCloser) <-chan StreamChunk {
	ch := make(chan StreamChunk)

	send := func(chunk StreamChunk) bool {
		select {
		case <-ctx.Done():
			return false
		case ch <- chunk:
			return true
		}
	}

	go func() {
		defer body.Close()
		defer close(ch)

		reader := bufio.NewReader(body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil && err != io.EOF {
				c.logger.Warn("读取流式响应失败", zap.Error(err))
				send(StreamChunk{Err: &APIError{Provider: c.cfg.Provider, Message: err.Error(), Err: err}})
				return
			}

			done, chunks, perr := parseLine(line)
			if perr != nil {
				send(StreamChunk{Err: &APIError{Provider: c.cfg.Provider, Message: "invalid stream chunk", Err: perr}})
				return
			}
			for _, chunk := range chunks {
				if !send(chunk) {
					return
				}
			}
			if done || err == io.EOF {
				return
			}
		}
	}()

	return ch
}

// parseLine 解析单行 `data: {...}`，done 表示收到 [DONE]
func parseLine(line string) (done bool, chunks []StreamChunk, err error) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(line, "data:") {
		return false, nil, nil
	}
	data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
	if data == "[DONE]" {
		return true, nil, nil
	}

	var resp chatResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		return false, nil, err
	}
	for _, choice := range resp.Choices {
		if choice.Delta == nil || choice.Delta.Content == "" {
			continue
		}
		chunks = append(chunks, StreamChunk{Content: choice.Delta.Content, FinishReason: choice.FinishReason})
	}
	return false, chunks, nil
}

// Collect 消费整个流并拼接全文，onChunk 可为 nil
// 遇到错误时返回已累积的文本与该错误
func Collect(ch <-chan StreamChunk, onChunk func(string)) (string, error) {
	var sb strings.Builder
	for chunk := range ch {
		if chunk.Err != nil {
			return sb.String(), chunk.Err
		}
		sb.WriteString(chunk.Content)
		if onChunk != nil {
			onChunk(chunk.Content)
		}
	}
	return sb.String(), nil
}
