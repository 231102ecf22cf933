package service

import (
	"context"

	"github.com/Dexter1636/vibe-ec-dashboard/pkg/llm"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/qwenimage"
)

// ==================== 上游客户端 ====================

// ChatClient 对话模型，*llm.Client 实现
type ChatClient interface {
	Stream(ctx context.Context, messages []llm.Message) (<-chan llm.StreamChunk, error)
	Complete(ctx context.Context, messages []llm.Message) (string, error)
	Provider() string
	Model() string
}

// ImageGenerator 生图模型，*qwenimage.Client 实现
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, opts qwenimage.Options) (string, error)
	Model() string
}

// ChatSource 每次请求获取客户端
// 缺少 API Key 不影响启动，只让对应请求返回配置错误
type ChatSource func() (ChatClient, error)

// ImageSource 同 ChatSource
type ImageSource func() (ImageGenerator, error)

// StaticChat 已构造好的客户端
func StaticChat(c ChatClient) ChatSource {
	return func() (ChatClient, error) { return c, nil }
}

// MissingChat 构造失败时固定返回该错误
func MissingChat(err error) ChatSource {
	return func() (ChatClient, error) { return nil, err }
}

func StaticImage(g ImageGenerator) ImageSource {
	return func() (ImageGenerator, error) { return g, nil }
}

func MissingImage(err error) ImageSource {
	return func() (ImageGenerator, error) { return nil, err }
}

// NewChatSource 用 llm.NewClient 的结果构造来源
func NewChatSource(c *llm.Client, err error) ChatSource {
	if err != nil {
		return MissingChat(err)
	}
	return StaticChat(c)
}

// NewImageSource 用 qwenimage.NewClient 的结果构造来源
func NewImageSource(c *qwenimage.Client, err error) ImageSource {
	if err != nil {
		return MissingImage(err)
	}
	return StaticImage(c)
}
