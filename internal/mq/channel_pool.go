package mq

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ChannelPool 通道池
type ChannelPool struct {
	maxSize  int
	channels chan *amqp.Channel
	cm       *ConnectionManager

	mu     sync.RWMutex
	closed bool

	// 统计信息
	created   int64
	reused    int64
	discarded int64
}

// NewChannelPool 创建通道池
func NewChannelPool(maxSize int, cm *ConnectionManager) *ChannelPool {
	return &ChannelPool{
		maxSize:  maxSize,
		channels: make(chan *amqp.Channel, maxSize),
		cm:       cm,
	}
}

// Get 获取通道，池中没有可用通道时新建
func (cp *ChannelPool) Get() (*amqp.Channel, error) {
	cp.mu.RLock()
	closed := cp.closed
	cp.mu.RUnlock()
	if closed {
		return nil, errors.New("channel pool is closed")
	}

	for {
		select {
		case ch := <-cp.channels:
			if ch != nil && !ch.IsClosed() {
				atomic.AddInt64(&cp.reused, 1)
				return ch, nil
			}
			atomic.AddInt64(&cp.discarded, 1)
			continue
		default:
		}
		break
	}

	conn := cp.cm.GetConnection()
	if conn == nil || conn.IsClosed() {
		return nil, errors.New("connection is not available")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}
	atomic.AddInt64(&cp.created, 1)
	return ch, nil
}

// Return 归还通道，池已满或已关闭时直接关闭通道
func (cp *ChannelPool) Return(ch *amqp.Channel) {
	if ch == nil || ch.IsClosed() {
		atomic.AddInt64(&cp.discarded, 1)
		return
	}

	cp.mu.RLock()
	defer cp.mu.RUnlock()
	if cp.closed {
		_ = ch.Close()
		return
	}

	select {
	case cp.channels <- ch:
	default:
		_ = ch.Close()
		atomic.AddInt64(&cp.discarded, 1)
	}
}

// Close 关闭通道池
func (cp *ChannelPool) Close() {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	if cp.closed {
		return
	}
	cp.closed = true

	close(cp.channels)
	for ch := range cp.channels {
		if ch != nil && !ch.IsClosed() {
			_ = ch.Close()
		}
	}
}

// WithChannel 使用通道执行操作（自动处理获取和归还）
func (cp *ChannelPool) WithChannel(fn func(*amqp.Channel) error) error {
	ch, err := cp.Get()
	if err != nil {
		return err
	}
	defer cp.Return(ch)

	return fn(ch)
}

// GetStats 获取通道池统计信息
func (cp *ChannelPool) GetStats() ChannelPoolStats {
	cp.mu.RLock()
	closed := cp.closed
	cp.mu.RUnlock()
	return ChannelPoolStats{
		MaxSize:   cp.maxSize,
		Available: len(cp.channels),
		Created:   atomic.LoadInt64(&cp.created),
		Reused:    atomic.LoadInt64(&cp.reused),
		Discarded: atomic.LoadInt64(&cp.discarded),
		Closed:    closed,
	}
}

// ChannelPoolStats 通道池统计信息
type ChannelPoolStats struct {
	MaxSize   int   `json:"max_size"`
	Available int   `json:"available"`
	Created   int64 `json:"created"`
	Reused    int64 `json:"reused"`
	Discarded int64 `json:"discarded"`
	Closed    bool  `json:"closed"`
}
