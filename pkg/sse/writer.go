package sse

import (
	"errors"
	"io"
	"net/http"
	"sync"
)

// ErrClosed 写入已关闭的流
var ErrClosed = errors.New("sse: writer closed")

// Writer 串行写出事件帧
// Close 之后或首次写失败之后，后续写入全部静默忽略，客户端断开不会导致 panic
type Writer struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
	closed  bool
	err     error

	onEvent func(EventType)
}

// NewWriter 包装响应流，w 实现 http.Flusher 时每帧立即刷新
func NewWriter(w io.Writer) *Writer {
	sw := &Writer{w: w}
	if f, ok := w.(http.Flusher); ok {
		sw.flusher = f
	}
	return sw
}

// OnEvent 注册每次成功写出事件后的回调（用于指标统计）
func (sw *Writer) OnEvent(fn func(EventType)) *Writer {
	sw.onEvent = fn
	return sw
}

// Write 编码并写出一个事件
// 返回 ErrClosed 或首次失败的底层错误，调用方可直接忽略
func (sw *Writer) Write(e Event) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.closed {
		return ErrClosed
	}
	if sw.err != nil {
		return sw.err
	}

	frame, err := Encode(e)
	if err != nil {
		return err
	}
	if _, err := sw.w.Write(frame); err != nil {
		sw.err = err
		return err
	}
	if sw.flusher != nil {
		sw.flusher.Flush()
	}
	if sw.onEvent != nil {
		sw.onEvent(e.Type)
	}
	return nil
}

// Close 标记流结束，可重复调用
func (sw *Writer) Close() {
	sw.mu.Lock()
	sw.closed = true
	sw.mu.Unlock()
}

// Err 首次写失败的错误，通常意味着客户端已断开
func (sw *Writer) Err() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.err
}
