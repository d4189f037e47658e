package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// checkoutValidator 校验结账请求的结构体标签
var checkoutValidator = validator.New()

// OrderStatus 定义订单状态类型
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"    // 待处理
	OrderStatusProcessing OrderStatus = "processing" // 处理中
	OrderStatusShipped    OrderStatus = "shipped"    // 已发货
	OrderStatusDelivered  OrderStatus = "delivered"  // 已送达
	OrderStatusCancelled  OrderStatus = "cancelled"  // 已取消
)

// ParseOrderStatus 解析订单状态
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return st, true
	default:
		return "", false
	}
}

// IsFinal 已送达和已取消的订单不再变更状态
func (s OrderStatus) IsFinal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// ShippingAddress 收货地址
type ShippingAddress struct {
	Address string `json:"address" validate:"required,max=300"`
	City    string `json:"city" validate:"required,max=100"`
	Zip     string `json:"zip" validate:"required,max=20"`
}

// OrderItem 下单时的商品快照
type OrderItem struct {
	ProductID   string          `json:"product_id"`
	SKU         string          `json:"sku"`
	Name        LocalizedString `json:"name"`
	Color       Color           `json:"color"`
	Accessories []Accessory     `json:"accessories"`
	Quantity    int             `json:"quantity"`
	UnitPrice   float64         `json:"unit_price"`
	LineTotal   float64         `json:"line_total"`
}

// Order 表示订单领域模型，金额均为 ILS
type Order struct {
	ID              string          `json:"id"`
	Items           []OrderItem     `json:"items"`
	Subtotal        float64         `json:"subtotal"`
	DiscountAmount  float64         `json:"discount_amount"`
	TotalPrice      float64         `json:"total_price"`
	CouponCode      *string         `json:"coupon_code"`
	Status          OrderStatus     `json:"status"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerPhone   string          `json:"customer_phone"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CheckoutRequest 表示结账请求
type CheckoutRequest struct {
	CustomerName    string          `json:"customer_name" validate:"required,max=200"`
	CustomerEmail   string          `json:"customer_email" validate:"required,email,max=254"`
	CustomerPhone   string          `json:"customer_phone" validate:"required,max=40"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
}

// Validate 所有字段均为必填，邮箱需格式正确
func (r *CheckoutRequest) Validate() bool {
	for _, v := range []string{
		r.CustomerName, r.CustomerEmail, r.CustomerPhone,
		r.ShippingAddress.Address, r.ShippingAddress.City, r.ShippingAddress.Zip,
	} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return checkoutValidator.Struct(r) == nil
}

// UpdateOrderStatusRequest 表示修改订单状态请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// OrderListRequest 订单列表过滤条件
type OrderListRequest struct {
	Status        *OrderStatus
	CustomerEmail string
	Limit         int
}
