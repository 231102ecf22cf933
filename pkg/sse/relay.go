package sse

import (
	"context"
	"errors"
	"fmt"
)

// GenerateFunc 增量生成函数
// emit 每调用一次对应一个 streaming 事件，返回值作为 complete 事件的 result
type GenerateFunc func(ctx context.Context, emit func(text string)) (interface{}, error)

// Relay 把增量生成桥接为事件流
//
// 帧顺序固定：一个 start，零或多个 streaming，恰好一个 complete 或 error
// 生成函数 panic 时同样转换为 error 事件，终止事件写出后关闭流
// 返回的错误仅供调用方记录日志，流中已经包含对应的 error 事件
func Relay(ctx context.Context, w *Writer, subjectID string, gen GenerateFunc) (err error) {
	defer w.Close()

	_ = w.Write(StartEvent(subjectID))

	result, err := runGenerator(ctx, w, gen)
	if err == nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
	}
	if err != nil {
		_ = w.Write(ErrorEvent(errorMessage(err)))
		return err
	}

	complete, err := CompleteEvent(result)
	if err != nil {
		_ = w.Write(ErrorEvent(err.Error()))
		return err
	}
	_ = w.Write(complete)
	return nil
}

func runGenerator(ctx context.Context, w *Writer, gen GenerateFunc) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()

	emit := func(text string) {
		if text == "" {
			return
		}
		_ = w.Write(StreamingEvent(text))
	}
	return gen(ctx, emit)
}

// PanicError 生成函数内部 panic
type PanicError struct {
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("generation panicked: %v", e.Value)
}

func errorMessage(err error) string {
	if errors.Is(err, context.Canceled) {
		return "Generation canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Generation timed out"
	}
	return err.Error()
}
