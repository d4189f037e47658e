package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/cache"
	"github.com/MorseWayne/nursery_shop/internal/cart"
)

const (
	cartKeyPrefix     = "cart:"
	wishlistKeyPrefix = "wishlist:"
)

// CartStore 按会话持久化购物车
type CartStore interface {
	Load(ctx context.Context, sessionID string) (*cart.Cart, error)
	Save(ctx context.Context, sessionID string, c *cart.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// kvCartStore 基于 KV 存储的购物车实现
type kvCartStore struct {
	kv     cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCartStore 创建购物车存储，ttl 为会话过期时间
func NewCartStore(kv cache.Cache, ttl time.Duration, logger *zap.Logger) CartStore {
	return &kvCartStore{kv: kv, ttl: ttl, logger: logger}
}

// Load 读取购物车
// 不存在时返回空购物车；数据损坏时记录警告并返回空购物车
func (s *kvCartStore) Load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	var raw json.RawMessage
	if err := s.kv.Get(ctx, cartKeyPrefix+sessionID, &raw); err != nil {
		if cache.IsMiss(err) {
			return cart.New(), nil
		}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			s.logger.Warn("discarding unreadable cart", zap.String("session_id", sessionID), zap.Error(err))
			return cart.New(), nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	c, err := cart.Decode(raw)
	if err != nil {
		s.logger.Warn("discarding unreadable cart", zap.String("session_id", sessionID), zap.Error(err))
	}
	return c, nil
}

// Save 保存购物车，每次写入都会刷新过期时间
func (s *kvCartStore) Save(ctx context.Context, sessionID string, c *cart.Cart) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, cartKeyPrefix+sessionID, json.RawMessage(data), s.ttl); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete 删除购物车
func (s *kvCartStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.kv.Del(ctx, cartKeyPrefix+sessionID); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
