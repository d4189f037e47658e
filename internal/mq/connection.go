package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ConnectionState 连接状态
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ConnectionManager RabbitMQ连接管理器，断线后自动重连
type ConnectionManager struct {
	config *Config
	logger *zap.Logger

	conn      *amqp.Connection
	connMutex sync.RWMutex
	state     int32 // 使用atomic操作

	channelPool *ChannelPool

	stopCh         chan struct{}
	reconnectCount int32

	// 重连成功后回调（重新声明交换机等）
	onReconnected func()
}

// NewConnectionManager 创建连接管理器
func NewConnectionManager(config *Config, logger *zap.Logger) *ConnectionManager {
	if logger == nil {
		logger = zap.NewNop()
	}

	cm := &ConnectionManager{
		config: config,
		logger: logger,
		state:  int32(StateDisconnected),
		stopCh: make(chan struct{}),
	}
	cm.channelPool = NewChannelPool(config.MaxChannels, cm)
	return cm
}

// Connect 建立连接
func (cm *ConnectionManager) Connect(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&cm.state, int32(StateDisconnected), int32(StateConnecting)) {
		return errors.New("connection is already in progress or connected")
	}

	cm.logger.Info("connecting to RabbitMQ", zap.String("url", cm.config.RedactedURL()))

	if err := cm.dial(ctx); err != nil {
		atomic.StoreInt32(&cm.state, int32(StateDisconnected))
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	cm.logger.Info("RabbitMQ connected")
	go cm.monitorConnection()
	return nil
}

// dial 建立底层连接并切换到已连接状态
func (cm *ConnectionManager) dial(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, cm.config.ConnectionTimeout)
	defer cancel()

	type result struct {
		conn *amqp.Connection
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conn, err := amqp.DialConfig(cm.config.URL, amqp.Config{
			Heartbeat: cm.config.HeartbeatInterval,
			Locale:    "en_US",
		})
		done <- result{conn, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-dialCtx.Done():
		// 超时后拨号协程仍可能成功，需要关闭其连接
		go func() {
			if late := <-done; late.conn != nil {
				_ = late.conn.Close()
			}
		}()
		return dialCtx.Err()
	}
	if res.err != nil {
		return res.err
	}

	cm.connMutex.Lock()
	cm.conn = res.conn
	cm.connMutex.Unlock()

	atomic.StoreInt32(&cm.state, int32(StateConnected))
	return nil
}

// GetConnection 获取连接
func (cm *ConnectionManager) GetConnection() *amqp.Connection {
	cm.connMutex.RLock()
	defer cm.connMutex.RUnlock()
	return cm.conn
}

// GetChannel 获取通道
func (cm *ConnectionManager) GetChannel() (*amqp.Channel, error) {
	return cm.channelPool.Get()
}

// ReturnChannel 归还通道
func (cm *ConnectionManager) ReturnChannel(ch *amqp.Channel) {
	cm.channelPool.Return(ch)
}

// WithChannel 使用池中的通道执行操作
func (cm *ConnectionManager) WithChannel(fn func(*amqp.Channel) error) error {
	return cm.channelPool.WithChannel(fn)
}

// ChannelStats 通道池统计
func (cm *ConnectionManager) ChannelStats() ChannelPoolStats {
	return cm.channelPool.GetStats()
}

// IsConnected 检查是否已连接
func (cm *ConnectionManager) IsConnected() bool {
	return cm.GetState() == StateConnected
}

// GetState 获取连接状态
func (cm *ConnectionManager) GetState() ConnectionState {
	return ConnectionState(atomic.LoadInt32(&cm.state))
}

// OnReconnected 设置重连成功回调
func (cm *ConnectionManager) OnReconnected(fn func()) {
	cm.onReconnected = fn
}

// Close 关闭连接
func (cm *ConnectionManager) Close() error {
	for {
		state := atomic.LoadInt32(&cm.state)
		if state == int32(StateClosed) {
			return nil
		}
		if atomic.CompareAndSwapInt32(&cm.state, state, int32(StateClosed)) {
			break
		}
	}

	cm.logger.Info("closing RabbitMQ connection")
	close(cm.stopCh)
	cm.channelPool.Close()

	cm.connMutex.Lock()
	defer cm.connMutex.Unlock()
	if cm.conn != nil {
		err := cm.conn.Close()
		cm.conn = nil
		if err != nil && !errors.Is(err, amqp.ErrClosed) {
			return err
		}
	}
	return nil
}

// monitorConnection 监听连接关闭事件
func (cm *ConnectionManager) monitorConnection() {
	conn := cm.GetConnection()
	if conn == nil {
		return
	}

	closeCh := conn.NotifyClose(make(chan *amqp.Error, 1))
	select {
	case err := <-closeCh:
		if err != nil {
			cm.logger.Error("RabbitMQ connection closed unexpectedly", zap.Error(err))
			cm.handleDisconnection(err)
		}
	case <-cm.stopCh:
	}
}

// handleDisconnection 处理连接断开
func (cm *ConnectionManager) handleDisconnection(err error) {
	if !atomic.CompareAndSwapInt32(&cm.state, int32(StateConnected), int32(StateReconnecting)) {
		return // 已经在重连或已关闭
	}

	cm.logger.Warn("RabbitMQ disconnected, reconnecting", zap.Error(err))
	if cm.config.EnableReconnect {
		go cm.reconnect()
	} else {
		atomic.StoreInt32(&cm.state, int32(StateDisconnected))
	}
}

// reconnect 重连逻辑
func (cm *ConnectionManager) reconnect() {
	defer func() {
		if r := recover(); r != nil {
			cm.logger.Error("panic during RabbitMQ reconnect", zap.Any("panic", r))
		}
	}()

	maxAttempts := cm.config.MaxReconnectAttempts
	for attempt := 1; ; attempt++ {
		select {
		case <-cm.stopCh:
			return
		default:
		}

		atomic.AddInt32(&cm.reconnectCount, 1)
		cm.logger.Info("reconnecting to RabbitMQ",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts))

		cm.connMutex.Lock()
		if cm.conn != nil {
			_ = cm.conn.Close()
			cm.conn = nil
		}
		cm.connMutex.Unlock()

		err := cm.dial(context.Background())
		if err == nil {
			cm.logger.Info("RabbitMQ reconnected", zap.Int("attempts", attempt))
			if cm.onReconnected != nil {
				cm.onReconnected()
			}
			go cm.monitorConnection()
			return
		}

		cm.logger.Error("RabbitMQ reconnect failed", zap.Error(err), zap.Int("attempt", attempt))
		if maxAttempts > 0 && attempt >= maxAttempts {
			cm.logger.Error("giving up RabbitMQ reconnect", zap.Int("max_attempts", maxAttempts))
			atomic.StoreInt32(&cm.state, int32(StateDisconnected))
			return
		}

		select {
		case <-time.After(cm.config.ReconnectInterval):
		case <-cm.stopCh:
			return
		}
	}
}
