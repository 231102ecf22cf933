package sse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type copyResult struct {
	Hook     string   `json:"hook"`
	Content  string   `json:"content"`
	CTA      string   `json:"cta"`
	Hashtags []string `json:"hashtags"`
}

func types(events []Event) []EventType {
	out := make([]EventType, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

// ==================== Relay ====================

func TestRelay_CompleteSequence(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(rec)

	want := copyResult{Hook: "h", Content: "c", CTA: "b", Hashtags: []string{"x"}}
	err := Relay(context.Background(), w, "p-1", func(_ context.Context, emit func(string)) (interface{}, error) {
		emit("He")
		emit("llo")
		return want, nil
	})
	require.NoError(t, err)

	events, err := Decode(rec.Body.String())
	require.NoError(t, err)
	require.Equal(t, []EventType{EventStart, EventStreaming, EventStreaming, EventComplete}, types(events))

	assert.Equal(t, "p-1", events[0].ProductID)
	assert.Equal(t, "He", events[1].Text)
	assert.Equal(t, "llo", events[2].Text)

	var got copyResult
	require.NoError(t, json.Unmarshal(events[3].Result, &got))
	assert.Equal(t, want, got)

	assert.ErrorIs(t, w.Write(StreamingEvent("late")), ErrClosed)
	assert.True(t, rec.Flushed)
}

func TestRelay_ErrorMidStream(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(rec)

	err := Relay(context.Background(), w, "p-2", func(_ context.Context, emit func(string)) (interface{}, error) {
		emit("partial")
		return nil, errors.New("upstream reset")
	})
	require.EqualError(t, err, "upstream reset")

	events, err := Decode(rec.Body.String())
	require.NoError(t, err)
	require.Equal(t, []EventType{EventStart, EventStreaming, EventError}, types(events))
	assert.Equal(t, "partial", events[1].Text)
	assert.Equal(t, "upstream reset", events[2].Error)

	// 终止事件之后的写入被忽略
	assert.ErrorIs(t, w.Write(StreamingEvent("late")), ErrClosed)
	after, _ := Decode(rec.Body.String())
	assert.Len(t, after, 3)
}

func TestRelay_PanicBecomesErrorEvent(t *testing.T) {
	rec := httptest.NewRecorder()

	err := Relay(context.Background(), NewWriter(rec), "p-3", func(_ context.Context, emit func(string)) (interface{}, error) {
		emit("a")
		panic("boom")
	})

	var panicErr *PanicError
	require.ErrorAs(t, err, &panicErr)

	events, _ := Decode(rec.Body.String())
	require.Equal(t, []EventType{EventStart, EventStreaming, EventError}, types(events))
	assert.Contains(t, events[2].Error, "boom")
}

func TestRelay_ContextCanceled(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx, cancel := context.WithCancel(context.Background())

	err := Relay(ctx, NewWriter(rec), "p-4", func(ctx context.Context, emit func(string)) (interface{}, error) {
		emit("x")
		cancel()
		return copyResult{}, nil
	})
	require.ErrorIs(t, err, context.Canceled)

	events, _ := Decode(rec.Body.String())
	require.Equal(t, []EventType{EventStart, EventStreaming, EventError}, types(events))
	assert.Equal(t, "Generation canceled", events[2].Error)
}

func TestRelay_EmptyFragmentsSkipped(t *testing.T) {
	rec := httptest.NewRecorder()
	var seen []EventType

	_ = Relay(context.Background(), NewWriter(rec).OnEvent(func(et EventType) { seen = append(seen, et) }), "p-5",
		func(_ context.Context, emit func(string)) (interface{}, error) {
			emit("")
			emit("ok")
			return map[string]string{}, nil
		})

	assert.Equal(t, []EventType{EventStart, EventStreaming, EventComplete}, seen)
}

// ==================== Writer ====================

type failingWriter struct{ calls int }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.calls++
	return 0, io.ErrClosedPipe
}

func TestWriter_FailedWriteBecomesNoop(t *testing.T) {
	fw := &failingWriter{}
	w := NewWriter(fw)

	assert.ErrorIs(t, w.Write(StartEvent("x")), io.ErrClosedPipe)
	assert.ErrorIs(t, w.Write(StreamingEvent("y")), io.ErrClosedPipe)
	assert.Equal(t, 1, fw.calls, "首次失败后不再写底层连接")
	assert.ErrorIs(t, w.Err(), io.ErrClosedPipe)

	// 客户端断开时 Relay 仍然正常返回
	assert.NotPanics(t, func() {
		_ = Relay(context.Background(), NewWriter(fw), "z", func(_ context.Context, emit func(string)) (interface{}, error) {
			emit("a")
			return "done", nil
		})
	})
}

// ==================== 编解码 ====================

func TestEncodeDecode_RoundTrip(t *testing.T) {
	complete, err := CompleteEvent(copyResult{Hook: "第一行\n第二行", Hashtags: []string{}})
	require.NoError(t, err)

	tests := []struct {
		name  string
		event Event
	}{
		{"start", StartEvent("prod-1")},
		{"含换行的文本", StreamingEvent("line1\nline2\n\nline3")},
		{"含 data: 前缀的文本", StreamingEvent("data: fake\n\n")},
		{"complete", complete},
		{"error", ErrorEvent("DEEPSEEK_API_KEY is not configured")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := Encode(tt.event)
			require.NoError(t, err)

			s := string(frame)
			assert.True(t, strings.HasPrefix(s, "data: "))
			assert.True(t, strings.HasSuffix(s, "\n\n"))
			assert.Equal(t, 2, strings.Count(s, "\n"), "帧内不能出现裸换行")

			events, err := Decode(s)
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, tt.event, events[0])
		})
	}
}

func TestEncode_FieldNames(t *testing.T) {
	frame, err := Encode(StartEvent("p-9"))
	require.NoError(t, err)
	assert.Equal(t, "data: {\"type\":\"start\",\"productId\":\"p-9\"}\n\n", string(frame))
}

func TestReader_Next(t *testing.T) {
	var buf bytes.Buffer
	for _, e := range []Event{StartEvent("a"), StreamingEvent("b\nc"), ErrorEvent("d")} {
		frame, _ := Encode(e)
		buf.Write(frame)
	}
	buf.WriteString(": comment line\n\n")

	r := NewReader(&buf)
	var got []Event
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, e)
	}

	require.Len(t, got, 3)
	assert.Equal(t, "b\nc", got[1].Text)
	assert.True(t, got[2].Type.Terminal())
}

func TestSetHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SetHeaders(rec.Header())

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", rec.Header().Get("Connection"))
	assert.True(t, IsEventStream(rec.Header()))
}
