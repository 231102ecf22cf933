package apperr

import "fmt"

// ConfigError 缺少必需的环境变量/凭证
// 在请求边界转换为 500，不重试
type ConfigError struct {
	Key string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Key)
}

// MissingConfig 构造 ConfigError
func MissingConfig(key string) error {
	return &ConfigError{Key: key}
}

// ValidationError 请求参数不合法，转换为 400，不调用上游
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid 构造 ValidationError
func Invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
