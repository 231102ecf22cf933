package service

import (
	"errors"

	"github.com/Dexter1636/vibe-ec-dashboard/pkg/apperr"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/llm"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/qwenimage"
)

// ErrUsageDisabled 未配置数据库时用量查询不可用
var ErrUsageDisabled = errors.New("AI call logging is disabled, set DATABASE_DSN to enable usage statistics")

// 对外展示时只取这些错误自身的信息，不带内部包装的阶段前缀
var publicErrors = []func(error) (string, bool){
	messageOf[*apperr.ValidationError],
	messageOf[*apperr.ConfigError],
	messageOf[*llm.APIError],
	messageOf[*qwenimage.TaskCreationError],
	messageOf[*qwenimage.PollingError],
	messageOf[*qwenimage.TaskFailedError],
	messageOf[*qwenimage.EmptyResultError],
	messageOf[*qwenimage.TimeoutError],
}

func messageOf[T error](err error) (string, bool) {
	var target T
	if errors.As(err, &target) {
		return target.Error(), true
	}
	return "", false
}

// UserMessage 错误的对外文案
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, match := range publicErrors {
		if msg, ok := match(err); ok {
			return msg
		}
	}
	if err.Error() == "" {
		return defaultFailureMessage
	}
	return err.Error()
}
