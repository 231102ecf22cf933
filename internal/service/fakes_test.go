package service

import (
	"context"
	"strings"
	"sync"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/model"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/llm"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/qwenimage"
)

// fakeChat 按用户提示词决定输出
type fakeChat struct {
	mu       sync.Mutex
	respond  func(userPrompt string) ([]string, error)
	complete func(messages []llm.Message) (string, error)
	calls    []string
}

func (f *fakeChat) Provider() string { return "DeepSeek" }
func (f *fakeChat) Model() string    { return "fake-model" }

func (f *fakeChat) Stream(ctx context.Context, messages []llm.Message) (<-chan llm.StreamChunk, error) {
	user := messages[len(messages)-1].Content
	f.mu.Lock()
	f.calls = append(f.calls, user)
	f.mu.Unlock()

	fragments, err := f.respond(user)
	if err != nil && len(fragments) == 0 {
		return nil, err
	}

	ch := make(chan llm.StreamChunk, len(fragments)+1)
	for _, s := range fragments {
		ch <- llm.StreamChunk{Content: s}
	}
	if err != nil {
		ch <- llm.StreamChunk{Err: err}
	}
	close(ch)
	return ch, nil
}

func (f *fakeChat) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "complete")
	f.mu.Unlock()
	return f.complete(messages)
}

// fixedChat 固定分片输出
func fixedChat(fragments ...string) *fakeChat {
	return &fakeChat{respond: func(string) ([]string, error) { return fragments, nil }}
}

// textOf 拼接多模态消息中的文本片段
func textOf(m llm.Message) string {
	var sb strings.Builder
	for _, part := range m.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

type fakeImages struct {
	url       string
	err       error
	attempts  int
	lastOpts  qwenimage.Options
	lastText  string
	callCount int
}

func (f *fakeImages) Model() string { return "Qwen/Qwen-Image-2512" }

func (f *fakeImages) GenerateImage(ctx context.Context, prompt string, opts qwenimage.Options) (string, error) {
	f.callCount++
	f.lastText = prompt
	f.lastOpts = opts
	for i := 1; i <= f.attempts; i++ {
		if opts.OnProgress != nil {
			opts.OnProgress(i, "Generating image...")
		}
	}
	return f.url, f.err
}

type fakeStorage struct {
	uploaded []string
	err      error
}

func (f *fakeStorage) Upload(ctx context.Context, data []byte, filename string, contentType string) (string, error) {
	return "https://cdn.example.com/" + filename, f.err
}

func (f *fakeStorage) UploadFromURL(ctx context.Context, sourceURL string, filename string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploaded = append(f.uploaded, sourceURL)
	return "https://cdn.example.com/mirrored.png", nil
}


func product(id, name string) model.Product {
	return model.Product{
		ID:       id,
		Name:     name,
		Category: "男包",
		Brand:    "Vibe",
		Images:   []string{"https://cdn/" + id + ".jpg", "https://cdn/" + id + "-2.jpg"},
	}
}
