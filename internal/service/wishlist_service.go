package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/MorseWayne/nursery_shop/internal/domain"
	"github.com/MorseWayne/nursery_shop/internal/repo"
)

// WishlistService 定义会话收藏夹接口
type WishlistService interface {
	List(ctx context.Context, sessionID string) ([]string, error)
	Add(ctx context.Context, sessionID, productID string) ([]string, error)
	Remove(ctx context.Context, sessionID, productID string) ([]string, error)
	Toggle(ctx context.Context, sessionID, productID string) (bool, []string, error)
	Contains(ctx context.Context, sessionID, productID string) (bool, error)
}

type wishlistService struct {
	store    repo.WishlistStore
	products repo.ProductRepository
	locks    *SessionLocks
}

// NewWishlistService 创建收藏夹服务
func NewWishlistService(store repo.WishlistStore, products repo.ProductRepository, locks *SessionLocks) WishlistService {
	return &wishlistService{store: store, products: products, locks: locks}
}

// List 按加入顺序返回收藏的商品ID
func (s *wishlistService) List(ctx context.Context, sessionID string) ([]string, error) {
	if sessionID == "" {
		return nil, domain.ErrInvalidSession
	}
	return s.store.Get(ctx, sessionID)
}

// Add 收藏商品，已收藏时不变
func (s *wishlistService) Add(ctx context.Context, sessionID, productID string) ([]string, error) {
	if sessionID == "" {
		return nil, domain.ErrInvalidSession
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(wishlistLockKey(sessionID))
	defer unlock()
	return s.store.Add(ctx, sessionID, productID)
}

// Remove 取消收藏，未收藏时不变
func (s *wishlistService) Remove(ctx context.Context, sessionID, productID string) ([]string, error) {
	if sessionID == "" {
		return nil, domain.ErrInvalidSession
	}
	unlock := s.locks.Lock(wishlistLockKey(sessionID))
	defer unlock()
	return s.store.Remove(ctx, sessionID, productID)
}

// Toggle 切换收藏状态，返回切换后是否已收藏
func (s *wishlistService) Toggle(ctx context.Context, sessionID, productID string) (bool, []string, error) {
	if sessionID == "" {
		return false, nil, domain.ErrInvalidSession
	}
	unlock := s.locks.Lock(wishlistLockKey(sessionID))
	defer unlock()

	ids, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return false, nil, err
	}
	if slices.Contains(ids, productID) {
		ids, err = s.store.Remove(ctx, sessionID, productID)
		return false, ids, err
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return false, nil, err
	}
	ids, err = s.store.Add(ctx, sessionID, productID)
	return true, ids, err
}

// Contains 是否已收藏
func (s *wishlistService) Contains(ctx context.Context, sessionID, productID string) (bool, error) {
	ids, err := s.List(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, productID), nil
}

func (s *wishlistService) ensureProduct(ctx context.Context, productID string) error {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil {
		return domain.ErrProductNotFound
	}
	return nil
}

// wishlistLockKey 收藏夹与购物车使用不同的锁，互不阻塞
func wishlistLockKey(sessionID string) string {
	return "wishlist:" + sessionID
}
