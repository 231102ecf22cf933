package middleware

import "context"

// ==================== 审计上下文 ====================

type operatorContextKey struct{}

// WithOperator 注入运营人员到 context，AI 调用日志据此记录调用人
func WithOperator(ctx context.Context, operator string) context.Context {
	if operator == "" {
		return ctx
	}
	return context.WithValue(ctx, operatorContextKey{}, operator)
}

// OperatorFromContext 未鉴权时返回空串
func OperatorFromContext(ctx context.Context) string {
	if op, ok := ctx.Value(operatorContextKey{}).(string); ok {
		return op
	}
	return ""
}
