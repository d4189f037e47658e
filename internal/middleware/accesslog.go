package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HeaderContentLanguage 处理器写回的展示语言
const HeaderContentLanguage = "Content-Language"

// AccessLog 每个请求输出一条 http_access 日志。
// 会话与语言由内层中间件和处理器写入响应头，这里从响应头读取；
// 请求 ID 同样从响应头读取，因为 RequestID 位于访问日志内层
func AccessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &accessRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			h := rw.Header()
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rw.status),
				zap.Int64("bytes", rw.bytes),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", h.Get(HeaderRequestID)),
				zap.String("client_ip", r.RemoteAddr),
			}
			if sid := h.Get(HeaderCartSession); sid != "" {
				fields = append(fields, zap.String("cart_session", sid))
			}
			if lang := h.Get(HeaderContentLanguage); lang != "" {
				fields = append(fields, zap.String("lang", lang))
			}
			switch {
			case rw.status >= http.StatusInternalServerError:
				logger.Error("http_access", fields...)
			case rw.status >= http.StatusBadRequest:
				logger.Warn("http_access", fields...)
			default:
				logger.Info("http_access", fields...)
			}
		})
	}
}

// accessRecorder 记录状态码与响应字节数
type accessRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int64
	wroteHeader bool
}

func (rw *accessRecorder) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *accessRecorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += int64(n)
	return n, err
}

// Flush 透传给底层 ResponseWriter
func (rw *accessRecorder) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
