package repo

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/cache"
	"github.com/MorseWayne/nursery_shop/internal/domain"
)

// 商品缓存键
const (
	productCacheKeyPrefix = "product:id:"
	productListCacheKey   = "product:all"
)

// CachedProductRepository 带缓存的商品仓储
// 缓存失败只记录日志，读写始终以数据库为准
type CachedProductRepository struct {
	repo   ProductRepository
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedProductRepository 创建带缓存的商品仓储
func NewCachedProductRepository(repo ProductRepository, cache cache.Cache, ttl time.Duration, logger *zap.Logger) ProductRepository {
	return &CachedProductRepository{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Create 创建商品（清除列表缓存）
func (r *CachedProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := r.repo.Create(ctx, product); err != nil {
		return err
	}
	r.invalidate(ctx, product.ID)
	return nil
}

// GetByID 根据ID获取商品（带缓存）
func (r *CachedProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	cacheKey := productCacheKey(id)

	var product domain.Product
	err := r.cache.Get(ctx, cacheKey, &product)
	if err == nil {
		return &product, nil
	}
	if !cache.IsMiss(err) {
		r.logger.Warn("product cache read failed", zap.String("key", cacheKey), zap.Error(err))
	}

	// 缓存未命中，从数据库获取
	result, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	r.store(ctx, cacheKey, result)
	return result, nil
}

// Update 更新商品（清除相关缓存）
func (r *CachedProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if err := r.repo.Update(ctx, product); err != nil {
		return err
	}
	r.invalidate(ctx, product.ID)
	return nil
}

// Delete 删除商品（清除相关缓存）
func (r *CachedProductRepository) Delete(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// GetAll 获取全部商品（整表缓存）
func (r *CachedProductRepository) GetAll(ctx context.Context) ([]*domain.Product, error) {
	var products []*domain.Product
	err := r.cache.Get(ctx, productListCacheKey, &products)
	if err == nil {
		return products, nil
	}
	if !cache.IsMiss(err) {
		r.logger.Warn("product list cache read failed", zap.Error(err))
	}

	products, err = r.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, productListCacheKey, products)
	return products, nil
}

// DecrementStock 扣减库存（清除相关缓存）
func (r *CachedProductRepository) DecrementStock(ctx context.Context, id string, quantity int) error {
	if err := r.repo.DecrementStock(ctx, id, quantity); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedProductRepository) store(ctx context.Context, key string, value any) {
	if err := r.cache.Set(ctx, key, value, r.ttl); err != nil {
		r.logger.Warn("product cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *CachedProductRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Del(ctx, productCacheKey(id), productListCacheKey); err != nil {
		r.logger.Warn("product cache invalidation failed", zap.String("product_id", id), zap.Error(err))
	}
}

func productCacheKey(id string) string {
	return productCacheKeyPrefix + id
}
