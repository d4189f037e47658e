package mq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MorseWayne/nursery_shop/internal/domain"
)

// MessageType 消息类型，同时作为 topic 路由键
type MessageType string

const (
	MessageTypeOrderPlaced        MessageType = "order.placed"         // 订单已创建
	MessageTypeOrderStatusChanged MessageType = "order.status_changed" // 订单状态变更
)

// messageVersion 消息结构版本
const messageVersion = "1.0"

// Message 订单事件消息
type Message struct {
	ID        string      `json:"id"`        // 消息唯一ID
	Type      MessageType `json:"type"`      // 消息类型
	Version   string      `json:"version"`   // 消息版本
	Timestamp time.Time   `json:"timestamp"` // 消息时间戳
	Source    string      `json:"source"`    // 消息源
	TraceID   string      `json:"trace_id"`  // 链路追踪ID（即请求ID）

	Data json.RawMessage `json:"data"`
}

// OrderPlacedData 订单创建消息数据
type OrderPlacedData struct {
	OrderID        string             `json:"order_id"`
	CustomerEmail  string             `json:"customer_email"`
	CustomerName   string             `json:"customer_name"`
	Items          []domain.OrderItem `json:"items"`
	Subtotal       float64            `json:"subtotal"`
	DiscountAmount float64            `json:"discount_amount"`
	TotalPrice     float64            `json:"total_price"`
	CouponCode     *string            `json:"coupon_code"`
	CreatedAt      time.Time          `json:"created_at"`
}

// OrderStatusChangedData 订单状态变更消息数据
type OrderStatusChangedData struct {
	OrderID       string             `json:"order_id"`
	CustomerEmail string             `json:"customer_email"`
	From          domain.OrderStatus `json:"from"`
	To            domain.OrderStatus `json:"to"`
	ChangedAt     time.Time          `json:"changed_at"`
}

// NewMessage 构建消息
func NewMessage(msgType MessageType, source, traceID string, data interface{}) (*Message, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message data: %w", err)
	}
	return &Message{
		ID:        uuid.NewString(),
		Type:      msgType,
		Version:   messageVersion,
		Timestamp: time.Now().UTC(),
		Source:    source,
		TraceID:   traceID,
		Data:      body,
	}, nil
}

// RoutingKey 获取路由键
func (m *Message) RoutingKey() string {
	return string(m.Type)
}

// DataAs 将消息数据解码到 target
func (m *Message) DataAs(target interface{}) error {
	if err := json.Unmarshal(m.Data, target); err != nil {
		return fmt.Errorf("failed to unmarshal message data: %w", err)
	}
	return nil
}

// NewOrderPlacedData 从订单构建消息数据
func NewOrderPlacedData(order *domain.Order) *OrderPlacedData {
	return &OrderPlacedData{
		OrderID:        order.ID,
		CustomerEmail:  order.CustomerEmail,
		CustomerName:   order.CustomerName,
		Items:          order.Items,
		Subtotal:       order.Subtotal,
		DiscountAmount: order.DiscountAmount,
		TotalPrice:     order.TotalPrice,
		CouponCode:     order.CouponCode,
		CreatedAt:      order.CreatedAt,
	}
}
