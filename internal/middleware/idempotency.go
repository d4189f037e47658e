package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/MorseWayne/nursery_shop/internal/resp"
)

// HeaderIdempotencyKey 幂等键请求头
const HeaderIdempotencyKey = "X-Idempotency-Key"

const maxIdempotencyKeyLen = 128

// Idempotency 读取客户端提供的幂等键并写入上下文，
// 实际的去重检查在业务层处理（结账）。未提供时不生成。
func Idempotency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			reqID := RequestIDFromContext(r.Context())
			resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "idempotency key too long", reqID, "")
			return
		}
		ctx := context.WithValue(r.Context(), contextKeyIdempotencyKey, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
