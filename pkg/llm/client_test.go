package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dexter1636/vibe-ec-dashboard/pkg/apperr"
)

func newTestClient(t *testing.T, url string, thinking bool) *Client {
	t.Helper()
	c, err := NewClient(Config{
		Provider:       "DeepSeek",
		APIKey:         "sk-test",
		APIKeyEnv:      "DEEPSEEK_API_KEY",
		BaseURL:        url,
		Model:          "deepseek-ai/DeepSeek-V3.2",
		ModelEnv:       "DEEPSEEK_MODEL",
		EnableThinking: thinking,
	}, nil)
	require.NoError(t, err)
	return c
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	_, err := NewClient(Config{Provider: "Qwen", APIKeyEnv: "QWEN_API_KEY"}, nil)

	var cfgErr *apperr.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "QWEN_API_KEY is not configured", err.Error())
}

// ==================== 流式 ====================

func TestStream_FragmentsUntilDone(t *testing.T) {
	var reqBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&reqBody)

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"He\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"reasoning_content\":\"思考\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"llo\\n\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ignored\"}}]}\n\n")
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, true)
	ch, err := c.Stream(context.Background(), []Message{System("sys"), User("hi")})
	require.NoError(t, err)

	var fragments []string
	text, err := Collect(ch, func(s string) { fragments = append(fragments, s) })
	require.NoError(t, err)

	assert.Equal(t, "Hello\n", text)
	assert.Equal(t, []string{"He", "llo\n"}, fragments)
	assert.Equal(t, true, reqBody["stream"])
	assert.Equal(t, true, reqBody["enable_thinking"])
	assert.Equal(t, "deepseek-ai/DeepSeek-V3.2", reqBody["model"])
}

func TestStream_InvalidChunk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n\n")
		fmt.Fprint(w, "data: {broken\n\n")
	}))
	defer srv.Close()

	ch, err := newTestClient(t, srv.URL, false).Stream(context.Background(), []Message{User("x")})
	require.NoError(t, err)

	text, err := Collect(ch, nil)
	assert.Equal(t, "ok", text)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
}

func TestStream_EOFWithoutDone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"tail\"}}]}")
	}))
	defer srv.Close()

	ch, err := newTestClient(t, srv.URL, false).Stream(context.Background(), []Message{User("x")})
	require.NoError(t, err)

	text, err := Collect(ch, nil)
	require.NoError(t, err)
	assert.Equal(t, "tail", text)
}

func TestStream_HTTPErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		contains string
	}{
		{"鉴权失败", http.StatusUnauthorized, `{"error":{"message":"invalid key"}}`, "Please check your DEEPSEEK_API_KEY"},
		{"模型不存在", http.StatusNotFound, `{"message":"no model"}`, "Please check your DEEPSEEK_MODEL"},
		{"服务端错误", http.StatusInternalServerError, "overloaded", "DeepSeek API error 500: overloaded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL, false).Stream(context.Background(), []Message{User("x")})

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

// ==================== 非流式 ====================

func TestComplete_MultimodalMessage(t *testing.T) {
	var raw map[string]json.RawMessage

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"{\"colors\":[\"红\"]}"}}]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, false)
	out, err := c.Complete(context.Background(), []Message{UserWithImage("data:image/png;base64,AAA", "分析")})
	require.NoError(t, err)
	assert.Equal(t, `{"colors":["红"]}`, out)

	var msgs []struct {
		Role    string `json:"role"`
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			ImageURL struct {
				URL string `json:"url"`
			} `json:"image_url"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(raw["messages"], &msgs))
	require.Len(t, msgs, 1)
	require.Len(t, msgs[0].Content, 2)
	assert.Equal(t, "image_url", msgs[0].Content[0].Type)
	assert.Equal(t, "data:image/png;base64,AAA", msgs[0].Content[0].ImageURL.URL)
	assert.Equal(t, "分析", msgs[0].Content[1].Text)

	_, hasThinking := raw["enable_thinking"]
	assert.False(t, hasThinking)
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	out, err := newTestClient(t, srv.URL, false).Complete(context.Background(), []Message{User("x")})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestComplete_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, url, false).Complete(context.Background(), []Message{User("x")})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "Failed to connect to DeepSeek API")
}

func TestMessage_MarshalPlainText(t *testing.T) {
	b, err := json.Marshal(System("hello"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"system","content":"hello"}`, string(b))
}
