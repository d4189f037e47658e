// Package mq 提供RabbitMQ连接管理、消息发布以及订单事件定义
package mq

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config RabbitMQ配置
type Config struct {
	// 连接配置
	URL               string        `json:"url"`
	ConnectionTimeout time.Duration `json:"connection_timeout"`
	HeartbeatInterval time.Duration `json:"heartbeat_interval"`

	// 通道池大小
	MaxChannels int `json:"max_channels"`

	// 重连配置
	EnableReconnect      bool          `json:"enable_reconnect"`
	ReconnectInterval    time.Duration `json:"reconnect_interval"`
	MaxReconnectAttempts int           `json:"max_reconnect_attempts"`

	// 订单事件交换机（topic）
	Exchange string `json:"exchange"`

	// 生产者配置
	Producer *ProducerConfig `json:"producer"`
}

// ProducerConfig 生产者配置
type ProducerConfig struct {
	// 发布确认
	EnableConfirm  bool          `json:"enable_confirm"`
	ConfirmTimeout time.Duration `json:"confirm_timeout"`

	// 重试配置
	EnableRetry      bool          `json:"enable_retry"`
	MaxRetryAttempts int           `json:"max_retry_attempts"`
	RetryInterval    time.Duration `json:"retry_interval"`

	// 发送超时
	PublishTimeout time.Duration `json:"publish_timeout"`
}

// DefaultProducerConfig 返回默认生产者配置
func DefaultProducerConfig() *ProducerConfig {
	return &ProducerConfig{
		EnableConfirm:    true,
		ConfirmTimeout:   5 * time.Second,
		EnableRetry:      true,
		MaxRetryAttempts: 3,
		RetryInterval:    1 * time.Second,
		PublishTimeout:   10 * time.Second,
	}
}

// DefaultConfig 返回默认配置
func DefaultConfig(amqpURL, exchange string, maxChannels int) *Config {
	return &Config{
		URL:               amqpURL,
		ConnectionTimeout: 30 * time.Second,
		HeartbeatInterval: 10 * time.Second,

		MaxChannels: maxChannels,

		EnableReconnect:      true,
		ReconnectInterval:    5 * time.Second,
		MaxReconnectAttempts: 10,

		Exchange: exchange,
		Producer: DefaultProducerConfig(),
	}
}

// RedactedURL 返回隐藏密码后的连接URL，用于日志
func (c *Config) RedactedURL() string {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "invalid-url"
	}
	return u.Redacted()
}

// Validate 验证配置
func (c *Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return fmt.Errorf("url scheme must be amqp or amqps, got %q", u.Scheme)
	}

	if c.Exchange == "" {
		return errors.New("exchange is required")
	}

	if c.MaxChannels <= 0 {
		return errors.New("max_channels must be greater than 0")
	}

	if c.ConnectionTimeout <= 0 {
		return errors.New("connection_timeout must be greater than 0")
	}

	if c.HeartbeatInterval <= 0 {
		return errors.New("heartbeat_interval must be greater than 0")
	}

	if c.Producer != nil {
		if err := c.Producer.Validate(); err != nil {
			return fmt.Errorf("producer config validation failed: %w", err)
		}
	}

	return nil
}

// Validate 验证生产者配置
func (c *ProducerConfig) Validate() error {
	if c.EnableConfirm && c.ConfirmTimeout <= 0 {
		return errors.New("confirm_timeout must be greater than 0")
	}

	if c.MaxRetryAttempts < 0 {
		return errors.New("max_retry_attempts must be >= 0")
	}

	if c.EnableRetry && c.RetryInterval <= 0 {
		return errors.New("retry_interval must be greater than 0")
	}

	if c.PublishTimeout <= 0 {
		return errors.New("publish_timeout must be greater than 0")
	}

	return nil
}
