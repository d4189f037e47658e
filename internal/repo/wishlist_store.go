package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/MorseWayne/nursery_shop/internal/cache"
)

// WishlistStore 按会话持久化收藏的商品ID，保持加入顺序
type WishlistStore interface {
	Get(ctx context.Context, sessionID string) ([]string, error)
	Add(ctx context.Context, sessionID, productID string) ([]string, error)
	Remove(ctx context.Context, sessionID, productID string) ([]string, error)
}

// kvWishlistStore 基于 KV 存储的收藏夹实现
// 调用方需保证同一会话的写操作串行执行
type kvWishlistStore struct {
	kv  cache.Cache
	ttl time.Duration
}

// NewWishlistStore 创建收藏夹存储
func NewWishlistStore(kv cache.Cache, ttl time.Duration) WishlistStore {
	return &kvWishlistStore{kv: kv, ttl: ttl}
}

// Get 读取收藏夹，不存在时返回空列表
func (s *kvWishlistStore) Get(ctx context.Context, sessionID string) ([]string, error) {
	ids := make([]string, 0)
	if err := s.kv.Get(ctx, wishlistKeyPrefix+sessionID, &ids); err != nil {
		if cache.IsMiss(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to load wishlist: %w", err)
	}
	return ids, nil
}

// Add 加入商品，已存在时保持不变
func (s *kvWishlistStore) Add(ctx context.Context, sessionID, productID string) ([]string, error) {
	ids, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if id == productID {
			return ids, nil
		}
	}
	ids = append(ids, productID)
	return ids, s.save(ctx, sessionID, ids)
}

// Remove 移除商品，不存在时保持不变
func (s *kvWishlistStore) Remove(ctx context.Context, sessionID, productID string) ([]string, error) {
	ids, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	kept := ids[:0]
	for _, id := range ids {
		if id != productID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(ids) {
		return kept, nil
	}
	return kept, s.save(ctx, sessionID, kept)
}

func (s *kvWishlistStore) save(ctx context.Context, sessionID string, ids []string) error {
	if err := s.kv.Set(ctx, wishlistKeyPrefix+sessionID, ids, s.ttl); err != nil {
		return fmt.Errorf("failed to save wishlist: %w", err)
	}
	return nil
}
