package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/cache"
	"github.com/MorseWayne/nursery_shop/internal/domain"
	"github.com/MorseWayne/nursery_shop/internal/mq"
	"github.com/MorseWayne/nursery_shop/internal/repo"
)

// OrderService 定义结账与订单管理接口
type OrderService interface {
	// Checkout 将会话购物车转为订单；idempotencyKey 非空时重复提交返回同一订单
	Checkout(ctx context.Context, sessionID string, req *domain.CheckoutRequest, idempotencyKey, traceID string) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, req *domain.OrderListRequest) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, traceID string) (*domain.Order, error)
}

const (
	idempotencyKeyPrefix = "idempotency:checkout:"
	// 处理中占位的过期时间，进程崩溃后客户端可重试
	idempotencyPendingTTL = 2 * time.Minute
	idempotencyDoneTTL    = 24 * time.Hour
)

type orderService struct {
	orders   repo.OrderRepository
	products repo.ProductRepository
	carts    repo.CartStore
	events   mq.OrderEventPublisher
	kv       cache.Cache
	locks    *SessionLocks
	logger   *zap.Logger
	now      func() time.Time
}

// NewOrderService 创建订单服务
func NewOrderService(
	orders repo.OrderRepository,
	products repo.ProductRepository,
	carts repo.CartStore,
	events mq.OrderEventPublisher,
	kv cache.Cache,
	locks *SessionLocks,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orders:   orders,
		products: products,
		carts:    carts,
		events:   events,
		kv:       kv,
		locks:    locks,
		logger:   logger,
		now:      time.Now,
	}
}

// Checkout 结账：计算金额 → 生成商品快照 → 保存订单 → 扣减库存 → 发布事件 → 清空购物车
func (s *orderService) Checkout(ctx context.Context, sessionID string, req *domain.CheckoutRequest, idempotencyKey, traceID string) (*domain.Order, error) {
	if sessionID == "" {
		return nil, domain.ErrInvalidSession
	}
	if req == nil || !req.Validate() {
		return nil, domain.ErrInvalidCustomer
	}

	if idempotencyKey != "" {
		key := idempotencyKeyPrefix + sessionID + ":" + idempotencyKey
		if order, err := s.claimIdempotencyKey(ctx, key); err != nil || order != nil {
			return order, err
		}
		order, err := s.checkout(ctx, sessionID, req, traceID)
		if err != nil {
			if delErr := s.kv.Del(ctx, key); delErr != nil {
				s.logger.Warn("failed to release idempotency key", zap.String("request_id", traceID), zap.Error(delErr))
			}
			return nil, err
		}
		if err := s.kv.Set(ctx, key, order.ID, idempotencyDoneTTL); err != nil {
			s.logger.Warn("failed to record idempotency key", zap.String("request_id", traceID), zap.Error(err))
		}
		return order, nil
	}

	return s.checkout(ctx, sessionID, req, traceID)
}

// claimIdempotencyKey 占用幂等键；已完成时返回已有订单，处理中返回 ErrDuplicateRequest
func (s *orderService) claimIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	claimed, err := s.kv.SetNX(ctx, key, "", idempotencyPendingTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	if claimed {
		return nil, nil
	}

	var orderID string
	if err := s.kv.Get(ctx, key, &orderID); err != nil {
		if cache.IsMiss(err) {
			return nil, domain.ErrDuplicateRequest
		}
		return nil, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	if orderID == "" {
		return nil, domain.ErrDuplicateRequest
	}
	return s.GetOrder(ctx, orderID)
}

func (s *orderService) checkout(ctx context.Context, sessionID string, req *domain.CheckoutRequest, traceID string) (*domain.Order, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	c, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	lookup, err := productLookup(ctx, s.products)
	if err != nil {
		return nil, err
	}
	totals := c.Totals(lookup)
	resolved := totals.Resolved()
	if len(resolved) == 0 {
		return nil, domain.ErrEmptyCart
	}

	items := make([]domain.OrderItem, 0, len(resolved))
	for _, lt := range resolved {
		items = append(items, domain.OrderItem{
			ProductID:   lt.Line.ProductID,
			SKU:         lt.Product.SKU,
			Name:        lt.Product.Name,
			Color:       lt.Line.Color,
			Accessories: lt.Line.Accessories,
			Quantity:    lt.Line.Quantity,
			UnitPrice:   lt.UnitPrice,
			LineTotal:   lt.Total,
		})
	}

	// 订单金额按分取整，且 total = subtotal - discount
	subtotal := decimal.NewFromFloat(totals.Subtotal).Round(2)
	discount := decimal.NewFromFloat(totals.DiscountAmount).Round(2)

	now := s.now().UTC()
	order := &domain.Order{
		ID:             uuid.NewString(),
		Items:          items,
		Subtotal:       subtotal.InexactFloat64(),
		DiscountAmount: discount.InexactFloat64(),
		TotalPrice:     subtotal.Sub(discount).InexactFloat64(),
		Status:         domain.OrderStatusPending,
		CustomerName:   strings.TrimSpace(req.CustomerName),
		CustomerEmail:  strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:  strings.TrimSpace(req.CustomerPhone),
		ShippingAddress: domain.ShippingAddress{
			Address: strings.TrimSpace(req.ShippingAddress.Address),
			City:    strings.TrimSpace(req.ShippingAddress.City),
			Zip:     strings.TrimSpace(req.ShippingAddress.Zip),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if totals.Coupon != nil {
		code := totals.Coupon.Code
		order.CouponCode = &code
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	s.logger.Info("order created",
		zap.String("request_id", traceID),
		zap.String("order_id", order.ID),
		zap.Int("items", len(order.Items)),
		zap.Float64("total_price", order.TotalPrice))

	// 订单已保存，后续步骤失败只记录日志
	for _, item := range order.Items {
		if err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("failed to decrement stock",
				zap.String("request_id", traceID),
				zap.String("order_id", order.ID),
				zap.String("product_id", item.ProductID),
				zap.Error(err))
			continue
		}
		s.logger.Info("stock decremented",
			zap.String("product_id", item.ProductID),
			zap.Int("quantity", item.Quantity))
	}

	if err := s.events.PublishOrderPlaced(ctx, order, traceID); err != nil {
		s.logger.Error("failed to publish order placed event",
			zap.String("request_id", traceID),
			zap.String("order_id", order.ID),
			zap.Error(err))
	}

	if err := s.carts.Delete(ctx, sessionID); err != nil {
		s.logger.Error("failed to clear cart after checkout",
			zap.String("request_id", traceID),
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
	return order, nil
}

// GetOrder 获取订单
func (s *orderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// ListOrders 按条件列出订单，新订单在前
func (s *orderService) ListOrders(ctx context.Context, req *domain.OrderListRequest) ([]*domain.Order, error) {
	if req == nil {
		req = &domain.OrderListRequest{}
	}
	orders, err := s.orders.List(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus 修改订单状态；已送达或已取消的订单不可再变更
func (s *orderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, traceID string) (*domain.Order, error) {
	if _, ok := domain.ParseOrderStatus(string(status)); !ok {
		return nil, domain.ErrInvalidOrderStatus
	}
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == status {
		return order, nil
	}
	if order.Status.IsFinal() {
		return nil, domain.ErrOrderFinal
	}

	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	from := order.Status
	order.Status = status
	order.UpdatedAt = s.now().UTC()
	s.logger.Info("order status changed",
		zap.String("request_id", traceID),
		zap.String("order_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(status)))

	if err := s.events.PublishOrderStatusChanged(ctx, order, from, traceID); err != nil {
		s.logger.Error("failed to publish order status event",
			zap.String("request_id", traceID),
			zap.String("order_id", id),
			zap.Error(err))
	}
	return order, nil
}
