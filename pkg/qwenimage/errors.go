package qwenimage

import "fmt"

// ==================== 轮询客户端错误 ====================
// 以下错误对当前请求都是终态，客户端内部不做重试

// TaskCreationError 创建任务失败（非 2xx 或未返回 task_id）
type TaskCreationError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TaskCreationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Failed to create image task: %v", e.Err)
	}
	if e.Body == "" {
		return fmt.Sprintf("Failed to create image task: %d", e.StatusCode)
	}
	return fmt.Sprintf("Failed to create image task: %d %s", e.StatusCode, e.Body)
}

func (e *TaskCreationError) Unwrap() error { return e.Err }

// PollingError 查询任务状态时的传输错误或非 2xx
type PollingError struct {
	TaskID     string
	Attempt    int
	StatusCode int
	Err        error
}

func (e *PollingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Failed to get task status: %v", e.Err)
	}
	return fmt.Sprintf("Failed to get task status: %d", e.StatusCode)
}

func (e *PollingError) Unwrap() error { return e.Err }

// TaskFailedError 远端任务进入 FAILED
type TaskFailedError struct {
	TaskID  string
	Attempt int
}

func (e *TaskFailedError) Error() string {
	return "Image generation task failed"
}

// EmptyResultError 任务 SUCCEED 但没有输出图片
type EmptyResultError struct {
	TaskID string
}

func (e *EmptyResultError) Error() string {
	return "Task succeeded but no images returned"
}

// TimeoutError 超过最大轮询次数仍未进入终态
type TimeoutError struct {
	TaskID   string
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Image generation timeout after %d attempts", e.Attempts)
}
