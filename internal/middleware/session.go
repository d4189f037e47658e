package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HeaderCartSession 默认购物车会话请求头
const HeaderCartSession = "X-Cart-Session"

// maxTokenLen 会话 ID 与请求 ID 的最大长度，超长视为无效
const maxTokenLen = 64

// CartSessionConfig 购物车会话配置
type CartSessionConfig struct {
	Header     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// CartSession 确保每个请求都有购物车会话 ID：
// 优先读取请求头，其次读取 cookie，都没有时生成 UUID；
// 会话 ID 回写到响应头与 cookie，并注入请求上下文。
func CartSession(cfg CartSessionConfig) func(http.Handler) http.Handler {
	if cfg.Header == "" {
		cfg.Header = HeaderCartSession
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := validToken(r.Header.Get(cfg.Header))
			if sid == "" && cfg.CookieName != "" {
				if c, err := r.Cookie(cfg.CookieName); err == nil {
					sid = validToken(c.Value)
				}
			}
			if sid == "" {
				sid = uuid.NewString()
			}

			w.Header().Set(cfg.Header, sid)
			if cfg.CookieName != "" {
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    sid,
					Path:     "/",
					MaxAge:   int(cfg.TTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sid)))
		})
	}
}

// validToken 只接受可安全用作存储 key 与日志字段的标识
func validToken(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxTokenLen {
		return ""
	}
	for _, r := range s {
		if !(r == '-' || r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return ""
		}
	}
	return s
}
