package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/middleware"
)

func TestTokenCmd(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "cli-secret")

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"token", "--user", "alice", "--ttl", "1h", "--env-file", "missing.env"})
	require.NoError(t, cmd.Execute())

	claims, err := middleware.ParseToken("cli-secret", strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Operator)
}

func TestTokenCmd_NoSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"token", "--user", "alice", "--env-file", "missing.env"})
	assert.EqualError(t, cmd.Execute(), "AUTH_JWT_SECRET is not configured")
}

func TestImageCmd_RejectsShortPrompt(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"image", "--prompt", "太短"})
	assert.EqualError(t, cmd.Execute(), "Prompt must be at least 10 characters")
}

// fakeDeepSeek 把文案 JSON 在 "content" 处拆成两段按 OpenAI 流式协议返回
func fakeDeepSeek(t *testing.T, text string) *httptest.Server {
	t.Helper()
	half := strings.Index(text, `"content"`)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{text[:half], text[half:]} {
			chunk, _ := json.Marshal(map[string]interface{}{
				"choices": []map[string]interface{}{{"delta": map[string]string{"content": part}}},
			})
			fmt.Fprintf(w, "data: %s\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTikTokCmd_StreamsAndPrintsResult(t *testing.T) {
	copyJSON := `{"hook":"开箱","content":"真皮双肩包","cta":"下单","hashtags":["通勤"]}`
	srv := fakeDeepSeek(t, copyJSON)
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")
	t.Setenv("DEEPSEEK_BASE_URL", srv.URL)

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"tiktok", "--name", "商务双肩包", "--style", "funny", "--hashtags", "--env-file", "missing.env"})
	require.NoError(t, cmd.Execute())

	text := out.String()
	assert.True(t, strings.HasPrefix(text, copyJSON), "增量文本按顺序输出")
	assert.Contains(t, text, `"hook": "开箱"`)
	assert.Contains(t, text, `"styleId": "funny"`)
}

func TestTikTokCmd_ValidationBeforeStream(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"未选风格", []string{"tiktok", "--name", "包"}, "No style selected"},
		{"未知长度", []string{"tiktok", "--name", "包", "--style", "story", "--length", "huge"}, "Invalid target length: huge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(append(tt.args, "--env-file", "missing.env"))
			assert.EqualError(t, cmd.Execute(), tt.wantErr)
		})
	}
}

func TestTikTokCmd_MissingKey(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "")

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"tiktok", "--name", "包", "--style", "story", "--env-file", "missing.env"})
	assert.EqualError(t, cmd.Execute(), "DEEPSEEK_API_KEY is not configured")
}
