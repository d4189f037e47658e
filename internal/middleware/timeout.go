package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/MorseWayne/nursery_shop/internal/resp"
)

// Timeout 超过 d 后取消请求上下文，并以 503 + 统一超时码写出响应
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	// http.TimeoutHandler 超时时以固定消息体响应
	body := fmt.Sprintf(`{"code":%d,"message":"request timeout"}`, resp.CodeTimeout)
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, body)
	}
}
