// Package api 提供店铺 HTTP API 处理器：目录、购物车、收藏夹、订单与管理端接口。
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/catalog"
	"github.com/MorseWayne/nursery_shop/internal/domain"
	"github.com/MorseWayne/nursery_shop/internal/middleware"
	"github.com/MorseWayne/nursery_shop/internal/resp"
)

// errorMapping 业务错误到 HTTP 状态码与业务码的映射
var errorMapping = []struct {
	err    error
	status int
	code   int
}{
	{domain.ErrProductNotFound, http.StatusNotFound, resp.CodeNotFound},
	{domain.ErrOrderNotFound, http.StatusNotFound, resp.CodeNotFound},
	{domain.ErrCouponNotFound, http.StatusNotFound, resp.CodeNotFound},
	{domain.ErrCartLineNotFound, http.StatusNotFound, resp.CodeNotFound},
	{domain.ErrInvalidProduct, http.StatusBadRequest, resp.CodeInvalidParam},
	{domain.ErrInvalidColor, http.StatusBadRequest, resp.CodeInvalidParam},
	{domain.ErrInvalidAccessory, http.StatusBadRequest, resp.CodeInvalidParam},
	{domain.ErrInvalidQuantity, http.StatusBadRequest, resp.CodeInvalidParam},
	{domain.ErrInvalidSession, http.StatusBadRequest, resp.CodeInvalidParam},
	{domain.ErrInvalidOrderStatus, http.StatusBadRequest, resp.CodeInvalidParam},
	{domain.ErrInvalidCustomer, http.StatusBadRequest, resp.CodeInvalidParam},
	{domain.ErrInvalidReview, http.StatusBadRequest, resp.CodeInvalidParam},
	{domain.ErrEmptyCart, http.StatusBadRequest, resp.CodeInvalidParam},
	{domain.ErrDuplicateSKU, http.StatusConflict, resp.CodeConflict},
	{domain.ErrDuplicateRequest, http.StatusConflict, resp.CodeConflict},
	{domain.ErrOrderFinal, http.StatusConflict, resp.CodeConflict},
	{domain.ErrOutOfStock, http.StatusConflict, resp.CodeConflict},
}

// writeError 将服务层错误写为统一响应；客户端错误记 warn，其他记 error
func writeError(c *gin.Context, logger *zap.Logger, err error, action string) {
	reqID := requestID(c)
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			logger.Warn(action+" rejected", zap.String("request_id", reqID), zap.Error(err))
			resp.Error(c.Writer, m.status, m.code, err.Error(), reqID, "")
			return
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		logger.Warn(action+" timed out", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(c.Writer, http.StatusGatewayTimeout, resp.CodeTimeout, "request timeout", reqID, "")
		return
	}
	logger.Error(action+" failed", zap.String("request_id", reqID), zap.Error(err))
	resp.Error(c.Writer, http.StatusInternalServerError, resp.CodeInternalError, action+" failed", reqID, "")
}

// badRequest 写出参数错误
func badRequest(c *gin.Context, message string) {
	resp.Error(c.Writer, http.StatusBadRequest, resp.CodeInvalidParam, message, requestID(c), "")
}

// bindJSON 解析请求体，失败时写出 400 并返回 false
func bindJSON(c *gin.Context, logger *zap.Logger, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		logger.Warn("invalid request body", zap.String("request_id", requestID(c)), zap.Error(err))
		badRequest(c, "invalid request body")
		return false
	}
	return true
}

func requestID(c *gin.Context) string {
	return middleware.RequestIDFromContext(c.Request.Context())
}

func sessionID(c *gin.Context) string {
	return middleware.SessionIDFromContext(c.Request.Context())
}

// language 协商展示语言：lang 参数 → Accept-Language → 默认语言，并写入 Content-Language 响应头
func language(c *gin.Context, fallback domain.Language) domain.Language {
	lang := catalog.NegotiateLanguage(c.Query("lang"), c.GetHeader("Accept-Language"), fallback)
	c.Header(middleware.HeaderContentLanguage, string(lang))
	return lang
}

var errInvalidVisible = errors.New("visible must be a positive integer")
