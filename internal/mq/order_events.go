package mq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/domain"
)

// OrderEventPublisher 发布订单领域事件
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *domain.Order, traceID string) error
	PublishOrderStatusChanged(ctx context.Context, order *domain.Order, from domain.OrderStatus, traceID string) error
}

// OrderProducer 基于 RabbitMQ topic 交换机的订单事件发布者
type OrderProducer struct {
	cm       *ConnectionManager
	producer *Producer
	exchange string
	source   string
	logger   *zap.Logger
}

// NewOrderProducer 创建订单事件发布者
func NewOrderProducer(cm *ConnectionManager, config *Config, source string, logger *zap.Logger) *OrderProducer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderProducer{
		cm:       cm,
		producer: NewProducer(cm, config.Producer, logger),
		exchange: config.Exchange,
		source:   source,
		logger:   logger,
	}
}

// SetupInfrastructure 声明持久化 topic 交换机，队列由消费方自行绑定
func (op *OrderProducer) SetupInfrastructure(ctx context.Context) error {
	return op.cm.WithChannel(func(ch *amqp.Channel) error {
		if err := ch.ExchangeDeclare(op.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", op.exchange, err)
		}
		op.logger.Info("order exchange declared", zap.String("exchange", op.exchange))
		return nil
	})
}

// PublishOrderPlaced 发布订单创建消息
func (op *OrderProducer) PublishOrderPlaced(ctx context.Context, order *domain.Order, traceID string) error {
	msg, err := NewMessage(MessageTypeOrderPlaced, op.source, traceID, NewOrderPlacedData(order))
	if err != nil {
		return err
	}
	return op.publish(ctx, msg)
}

// PublishOrderStatusChanged 发布订单状态变更消息
func (op *OrderProducer) PublishOrderStatusChanged(ctx context.Context, order *domain.Order, from domain.OrderStatus, traceID string) error {
	msg, err := NewMessage(MessageTypeOrderStatusChanged, op.source, traceID, &OrderStatusChangedData{
		OrderID:       order.ID,
		CustomerEmail: order.CustomerEmail,
		From:          from,
		To:            order.Status,
		ChangedAt:     order.UpdatedAt,
	})
	if err != nil {
		return err
	}
	return op.publish(ctx, msg)
}

func (op *OrderProducer) publish(ctx context.Context, msg *Message) error {
	op.logger.Info("publishing order event",
		zap.String("message_id", msg.ID),
		zap.String("message_type", string(msg.Type)),
		zap.String("exchange", op.exchange),
		zap.String("trace_id", msg.TraceID))

	return op.producer.PublishJSON(ctx, op.exchange, msg.RoutingKey(), msg, &PublishOptions{
		MessageID: msg.ID,
		Type:      string(msg.Type),
		Timestamp: msg.Timestamp,
		AppID:     op.source,
		Headers: amqp.Table{
			"trace-id":        msg.TraceID,
			"message-version": msg.Version,
		},
	})
}

// Close 关闭发布者，并记录发布与通道池统计
func (op *OrderProducer) Close() error {
	stats := op.producer.GetStats()
	pool := op.cm.ChannelStats()
	op.logger.Info("order producer closing",
		zap.Int64("published", stats.PublishedCount),
		zap.Int64("confirmed", stats.ConfirmedCount),
		zap.Int64("failed", stats.FailedCount),
		zap.Int64("channels_created", pool.Created),
		zap.Int64("channels_reused", pool.Reused),
		zap.Int64("channels_discarded", pool.Discarded))
	return op.producer.Close()
}

// LogPublisher 未启用消息队列时使用，仅记录事件日志
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher 创建日志发布者
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

// PublishOrderPlaced 记录订单创建事件
func (lp *LogPublisher) PublishOrderPlaced(_ context.Context, order *domain.Order, traceID string) error {
	lp.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.Float64("total_price", order.TotalPrice),
		zap.Int("items", len(order.Items)),
		zap.String("trace_id", traceID))
	return nil
}

// PublishOrderStatusChanged 记录订单状态变更事件
func (lp *LogPublisher) PublishOrderStatusChanged(_ context.Context, order *domain.Order, from domain.OrderStatus, traceID string) error {
	lp.logger.Info("order status changed",
		zap.String("order_id", order.ID),
		zap.String("from", string(from)),
		zap.String("to", string(order.Status)),
		zap.Time("changed_at", order.UpdatedAt.In(time.UTC)),
		zap.String("trace_id", traceID))
	return nil
}
