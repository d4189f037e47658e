package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ErrProducerClosed 生产者已关闭
var ErrProducerClosed = errors.New("producer is closed")

// Producer RabbitMQ生产者
type Producer struct {
	cm     *ConnectionManager
	config *ProducerConfig
	logger *zap.Logger

	// 统计信息
	publishedCount int64
	confirmedCount int64
	failedCount    int64

	closed bool
	mutex  sync.RWMutex
}

// PublishOptions 发布选项
type PublishOptions struct {
	Mandatory bool
	Headers   amqp.Table
	MessageID string
	Timestamp time.Time
	Type      string
	AppID     string
}

// NewProducer 创建生产者
func NewProducer(cm *ConnectionManager, config *ProducerConfig, logger *zap.Logger) *Producer {
	if config == nil {
		config = DefaultProducerConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Producer{
		cm:     cm,
		config: config,
		logger: logger,
	}
}

// PublishJSON 发布JSON消息
func (p *Producer) PublishJSON(ctx context.Context, exchange, routingKey string, data interface{}, options *PublishOptions) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return p.Publish(ctx, exchange, routingKey, "application/json", body, options)
}

// Publish 发布消息，失败时按配置重试
func (p *Producer) Publish(ctx context.Context, exchange, routingKey, contentType string, body []byte, options *PublishOptions) error {
	if p.isClosed() {
		return ErrProducerClosed
	}

	publishing := buildPublishing(contentType, body, options)
	mandatory := options != nil && options.Mandatory

	maxAttempts := 1
	if p.config.EnableRetry {
		maxAttempts = p.config.MaxRetryAttempts + 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := p.publishOnce(ctx, exchange, routingKey, mandatory, publishing)
		if err == nil {
			return nil
		}

		lastErr = err
		p.logger.Warn("publish failed",
			zap.String("exchange", exchange),
			zap.String("routing_key", routingKey),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Error(err))

		if attempt == maxAttempts {
			break
		}

		select {
		case <-time.After(p.config.RetryInterval):
		case <-ctx.Done():
			atomic.AddInt64(&p.failedCount, 1)
			return ctx.Err()
		}
	}

	atomic.AddInt64(&p.failedCount, 1)
	return fmt.Errorf("failed to publish message after %d attempts: %w", maxAttempts, lastErr)
}

// publishOnce 单次发布消息
func (p *Producer) publishOnce(ctx context.Context, exchange, routingKey string, mandatory bool, publishing amqp.Publishing) error {
	ch, err := p.cm.GetChannel()
	if err != nil {
		return fmt.Errorf("failed to get channel: %w", err)
	}
	defer p.cm.ReturnChannel(ch)

	publishCtx, cancel := context.WithTimeout(ctx, p.config.PublishTimeout)
	defer cancel()

	if !p.config.EnableConfirm {
		if err := ch.PublishWithContext(publishCtx, exchange, routingKey, mandatory, false, publishing); err != nil {
			return fmt.Errorf("failed to publish message: %w", err)
		}
		atomic.AddInt64(&p.publishedCount, 1)
		return nil
	}

	// 确认模式对通道是幂等的，池中复用的通道可以重复设置
	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("failed to set confirm mode: %w", err)
	}
	confirmation, err := ch.PublishWithDeferredConfirmWithContext(publishCtx, exchange, routingKey, mandatory, false, publishing)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	atomic.AddInt64(&p.publishedCount, 1)

	confirmCtx, cancelConfirm := context.WithTimeout(ctx, p.config.ConfirmTimeout)
	defer cancelConfirm()
	acked, err := confirmation.WaitContext(confirmCtx)
	if err != nil {
		return fmt.Errorf("publish confirmation: %w", err)
	}
	if !acked {
		return errors.New("message was nacked by broker")
	}
	atomic.AddInt64(&p.confirmedCount, 1)
	return nil
}

// buildPublishing 构建发布消息
func buildPublishing(contentType string, body []byte, options *PublishOptions) amqp.Publishing {
	publishing := amqp.Publishing{
		Body:         body,
		ContentType:  contentType,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}

	if options != nil {
		publishing.Headers = options.Headers
		publishing.MessageId = options.MessageID
		publishing.Type = options.Type
		publishing.AppId = options.AppID
		if !options.Timestamp.IsZero() {
			publishing.Timestamp = options.Timestamp
		}
	}
	return publishing
}

// Close 关闭生产者
func (p *Producer) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.closed = true
	return nil
}

func (p *Producer) isClosed() bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.closed
}

// GetStats 获取统计信息
func (p *Producer) GetStats() ProducerStats {
	return ProducerStats{
		PublishedCount: atomic.LoadInt64(&p.publishedCount),
		ConfirmedCount: atomic.LoadInt64(&p.confirmedCount),
		FailedCount:    atomic.LoadInt64(&p.failedCount),
		ConfirmMode:    p.config.EnableConfirm,
	}
}

// ProducerStats 生产者统计信息
type ProducerStats struct {
	PublishedCount int64 `json:"published_count"`
	ConfirmedCount int64 `json:"confirmed_count"`
	FailedCount    int64 `json:"failed_count"`
	ConfirmMode    bool  `json:"confirm_mode"`
}
