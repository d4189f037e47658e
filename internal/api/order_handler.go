package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/domain"
	"github.com/MorseWayne/nursery_shop/internal/middleware"
	"github.com/MorseWayne/nursery_shop/internal/resp"
	"github.com/MorseWayne/nursery_shop/internal/service"
)

// maxOrderListLimit 管理端订单列表单次返回上限
const maxOrderListLimit = 200

// OrderHandler 结账与订单处理器
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderHandler{orderService: orderService, logger: logger}
}

// Checkout 结账下单；携带 X-Idempotency-Key 时重复提交返回同一订单
// POST /api/v1/orders
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req domain.CheckoutRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	ctx := c.Request.Context()
	order, err := h.orderService.Checkout(ctx, sessionID(c), &req,
		middleware.IdempotencyKeyFromContext(ctx), requestID(c))
	if err != nil {
		writeError(c, h.logger, err, "checkout")
		return
	}
	resp.Created(c.Writer, order, requestID(c), "")
}

// GetOrder 订单详情
// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err, "get order")
		return
	}
	resp.OK(c.Writer, order, requestID(c), "")
}

// ListOrders 订单列表（管理端）
// GET /api/v1/admin/orders?status=&email=&limit=
func (h *OrderHandler) ListOrders(c *gin.Context) {
	req := &domain.OrderListRequest{
		CustomerEmail: strings.TrimSpace(c.Query("email")),
		Limit:         50,
	}
	if s := c.Query("status"); s != "" {
		status, ok := domain.ParseOrderStatus(s)
		if !ok {
			badRequest(c, domain.ErrInvalidOrderStatus.Error())
			return
		}
		req.Status = &status
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		req.Limit = min(n, maxOrderListLimit)
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err, "list orders")
		return
	}
	resp.OK(c.Writer, orders, requestID(c), "")
}

// UpdateOrderStatus 修改订单状态（管理端）
// PUT /api/v1/admin/orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req domain.UpdateOrderStatusRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	status, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		badRequest(c, domain.ErrInvalidOrderStatus.Error())
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), status, requestID(c))
	if err != nil {
		writeError(c, h.logger, err, "update order status")
		return
	}
	resp.OK(c.Writer, order, requestID(c), "")
}
