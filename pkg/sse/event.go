// Package sse 实现浏览器端使用的 text/event-stream 帧格式与流式转发
//
// 每个事件编码为一行 JSON：`data: <json>\n\n`
// 消费端按换行切分、保留 `data: ` 开头的行、对剩余部分做 JSON 解码即可还原事件
package sse

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// EventType 事件类型
type EventType string

const (
	EventStart     EventType = "start"
	EventStreaming EventType = "streaming"
	EventComplete  EventType = "complete"
	EventError     EventType = "error"
)

// Terminal 是否为终止事件
func (t EventType) Terminal() bool {
	return t == EventComplete || t == EventError
}

// Event 单个流式事件
// start 携带 ProductID，streaming 携带 Text，complete 携带 Result，error 携带 Error
type Event struct {
	Type      EventType       `json:"type"`
	ProductID string          `json:"productId,omitempty"`
	Text      string          `json:"text,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}

const dataPrefix = "data: "

// ==================== 事件构造 ====================

func StartEvent(productID string) Event {
	return Event{Type: EventStart, ProductID: productID}
}

func StreamingEvent(text string) Event {
	return Event{Type: EventStreaming, Text: text}
}

func ErrorEvent(message string) Event {
	return Event{Type: EventError, Error: message}
}

// CompleteEvent 将结果对象序列化后放入 complete 事件
func CompleteEvent(result interface{}) (Event, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return Event{}, fmt.Errorf("序列化结果失败: %w", err)
	}
	return Event{Type: EventComplete, Result: raw}, nil
}

// ==================== 编解码 ====================

// Encode 编码为一帧；json.Marshal 会把文本中的换行转义为 \n，保证单行
func Encode(e Event) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, len(dataPrefix)+len(payload)+2)
	buf = append(buf, dataPrefix...)
	buf = append(buf, payload...)
	buf = append(buf, '\n', '\n')
	return buf, nil
}

// Decode 解析一段完整的事件流文本
func Decode(stream string) ([]Event, error) {
	var events []Event
	for _, line := range strings.Split(stream, "\n") {
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		e, err := decodeLine(line)
		if err != nil {
			return events, err
		}
		events = append(events, e)
	}
	return events, nil
}

func decodeLine(line string) (Event, error) {
	var e Event
	if err := json.Unmarshal([]byte(strings.TrimPrefix(line, dataPrefix)), &e); err != nil {
		return Event{}, fmt.Errorf("解析事件失败: %w", err)
	}
	return e, nil
}

// ==================== 增量读取 ====================

// Reader 逐个读取事件，供 CLI 与测试消费流式响应
type Reader struct {
	scanner *bufio.Scanner
}

func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	// 大段文本放在单行 JSON 中，放宽单行上限
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Reader{scanner: scanner}
}

// Next 返回下一个事件，流结束时返回 io.EOF
func (r *Reader) Next() (Event, error) {
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		return decodeLine(line)
	}
	if err := r.scanner.Err(); err != nil {
		return Event{}, err
	}
	return Event{}, io.EOF
}

// ==================== 响应头 ====================

// SetHeaders 设置 SSE 必要的响应头，确保浏览器或代理以流式方式处理
func SetHeaders(h http.Header) {
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
}

// IsEventStream 判断响应是否为事件流
func IsEventStream(h http.Header) bool {
	return bytes.HasPrefix([]byte(h.Get("Content-Type")), []byte("text/event-stream"))
}
