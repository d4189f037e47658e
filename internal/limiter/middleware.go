package limiter

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/middleware"
	"github.com/MorseWayne/nursery_shop/internal/resp"
)

// MiddlewareConfig 中间件配置
type MiddlewareConfig struct {
	// 限流器
	Limiter Limiter

	// Key生成函数
	KeyGenerator func(*gin.Context) string

	// 是否跳过限流检查
	Skip func(*gin.Context) bool

	// 限流服务异常时是否放行
	FailOpen bool

	// 单次检查超时
	Timeout time.Duration

	Logger *zap.Logger
}

const (
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRetryAfter         = "Retry-After"
)

// ClientPathKey 按客户端 IP 与路由生成限流 key
func ClientPathKey(c *gin.Context) string {
	return "ip:" + c.ClientIP() + ":" + c.Request.Method + ":" + c.FullPath()
}

// RateLimitMiddleware 创建限流中间件
func RateLimitMiddleware(config MiddlewareConfig) gin.HandlerFunc {
	if config.KeyGenerator == nil {
		config.KeyGenerator = ClientPathKey
	}
	if config.Timeout <= 0 {
		config.Timeout = time.Second
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if config.Skip != nil && config.Skip(c) {
			c.Next()
			return
		}

		reqID := middleware.RequestIDFromContext(c.Request.Context())
		key := config.KeyGenerator(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), config.Timeout)
		defer cancel()

		result, err := config.Limiter.Allow(ctx, key)
		if err != nil {
			config.Logger.Error("rate limiter failed",
				zap.String("request_id", reqID),
				zap.String("key", key),
				zap.Error(err))
			if config.FailOpen {
				c.Next()
				return
			}
			resp.Error(c.Writer, http.StatusServiceUnavailable, resp.CodeUnavailable, "rate limiter unavailable", reqID, "")
			c.Abort()
			return
		}

		c.Header(HeaderRateLimitRemaining, strconv.FormatInt(result.Remaining, 10))
		if !result.Allowed {
			retry := int64(math.Ceil(result.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header(HeaderRetryAfter, strconv.FormatInt(retry, 10))
			config.Logger.Warn("rate limit reached",
				zap.String("request_id", reqID),
				zap.String("key", key))
			resp.Error(c.Writer, http.StatusTooManyRequests, resp.CodeTooManyReq, "too many requests, retry later", reqID, "")
			c.Abort()
			return
		}

		c.Next()
	}
}
