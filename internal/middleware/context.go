// Package middleware 提供 HTTP 中间件：请求 ID、恢复、超时、CORS、访问日志、购物车会话、管理员认证等。
package middleware

import (
	"context"
)

// contextKey 用于在上下文中存取特定键，避免与外部键冲突。
type contextKey string

// 约定的上下文键集合。
const (
	contextKeyRequestID      contextKey = "request_id"
	contextKeySessionID      contextKey = "cart_session"
	contextKeyAdmin          contextKey = "admin"
	contextKeyIdempotencyKey contextKey = "idempotency_key"
)

// withRequestID 将请求 ID 写入上下文。
func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}

// RequestIDFromContext 从上下文中读取请求 ID（可能为空）。
func RequestIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, contextKeyRequestID)
}

// SessionIDFromContext 从上下文中读取购物车会话 ID（可能为空）。
func SessionIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, contextKeySessionID)
}

// WithSessionID 将购物车会话 ID 写入上下文，测试中也会用到。
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeySessionID, id)
}

// IdempotencyKeyFromContext 读取客户端提供的幂等键（可能为空）。
func IdempotencyKeyFromContext(ctx context.Context) string {
	return stringFromContext(ctx, contextKeyIdempotencyKey)
}

func stringFromContext(ctx context.Context, key contextKey) string {
	if v := ctx.Value(key); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
