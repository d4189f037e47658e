package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/domain"
	"github.com/MorseWayne/nursery_shop/internal/resp"
	"github.com/MorseWayne/nursery_shop/internal/service"
)

// CartHandler 购物车处理器，会话由 CartSession 中间件注入
type CartHandler struct {
	cartService service.CartService
	defaultLang domain.Language
	logger      *zap.Logger
}

// NewCartHandler 创建购物车处理器
func NewCartHandler(cartService service.CartService, defaultLang domain.Language, logger *zap.Logger) *CartHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartHandler{cartService: cartService, defaultLang: defaultLang, logger: logger}
}

// GetCart 购物车及合计
// GET /api/v1/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.cartService.GetCart(c.Request.Context(), sessionID(c), language(c, h.defaultLang))
	if err != nil {
		writeError(c, h.logger, err, "get cart")
		return
	}
	resp.OK(c.Writer, view, requestID(c), "")
}

// ClearCart 清空购物车
// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.Clear(c.Request.Context(), sessionID(c)); err != nil {
		writeError(c, h.logger, err, "clear cart")
		return
	}
	h.GetCart(c)
}

// AddLine 加入购物车，相同商品、颜色与配件组合会合并数量
// POST /api/v1/cart/lines
func (h *CartHandler) AddLine(c *gin.Context) {
	var req domain.AddLineRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	view, err := h.cartService.AddLine(c.Request.Context(), sessionID(c), &req, language(c, h.defaultLang))
	if err != nil {
		writeError(c, h.logger, err, "add cart line")
		return
	}
	resp.OK(c.Writer, view, requestID(c), "")
}

// UpdateLine 修改数量，小于 1 时按 1 处理；行不存在返回 404
// PUT /api/v1/cart/lines/:key
func (h *CartHandler) UpdateLine(c *gin.Context) {
	var req domain.UpdateQuantityRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	view, err := h.cartService.UpdateQuantity(c.Request.Context(), sessionID(c), c.Param("key"), req.Quantity, language(c, h.defaultLang))
	if err != nil {
		writeError(c, h.logger, err, "update cart line")
		return
	}
	resp.OK(c.Writer, view, requestID(c), "")
}

// RemoveLine 移除购物车行
// DELETE /api/v1/cart/lines/:key
func (h *CartHandler) RemoveLine(c *gin.Context) {
	view, err := h.cartService.RemoveLine(c.Request.Context(), sessionID(c), c.Param("key"), language(c, h.defaultLang))
	if err != nil {
		writeError(c, h.logger, err, "remove cart line")
		return
	}
	resp.OK(c.Writer, view, requestID(c), "")
}

// ApplyCoupon 使用优惠券，未知优惠码返回 404 且购物车不变
// POST /api/v1/cart/coupon
func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	var req domain.ApplyCouponRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	view, err := h.cartService.ApplyCoupon(c.Request.Context(), sessionID(c), req.Code, language(c, h.defaultLang))
	if err != nil {
		writeError(c, h.logger, err, "apply coupon")
		return
	}
	resp.OK(c.Writer, view, requestID(c), "")
}

// RemoveCoupon 取消优惠券
// DELETE /api/v1/cart/coupon
func (h *CartHandler) RemoveCoupon(c *gin.Context) {
	view, err := h.cartService.RemoveCoupon(c.Request.Context(), sessionID(c), language(c, h.defaultLang))
	if err != nil {
		writeError(c, h.logger, err, "remove coupon")
		return
	}
	resp.OK(c.Writer, view, requestID(c), "")
}
