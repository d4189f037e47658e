package limiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// memoryBucketEvictThreshold 桶数量超过该值时清理已补满的桶
const memoryBucketEvictThreshold = 4096

// MemoryBucketLimiter 进程内令牌桶，未使用 Redis 时的降级实现
// 每个 key 对应一个 rate.Limiter
type MemoryBucketLimiter struct {
	config Config
	limit  rate.Limit
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewMemoryBucketLimiter 创建进程内令牌桶限流器
func NewMemoryBucketLimiter(config Config) (*MemoryBucketLimiter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &MemoryBucketLimiter{
		config:  config,
		limit:   rate.Limit(float64(config.Rate) / config.Window.Seconds()),
		now:     time.Now,
		buckets: make(map[string]*rate.Limiter),
	}, nil
}

// Allow 检查是否允许请求通过
func (m *MemoryBucketLimiter) Allow(ctx context.Context, key string) (*LimitResult, error) {
	return m.AllowN(ctx, key, 1)
}

// AllowN 检查是否允许N个请求通过；拒绝时不消耗令牌
func (m *MemoryBucketLimiter) AllowN(_ context.Context, key string, n int64) (*LimitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	lim, ok := m.buckets[key]
	if !ok {
		m.evictFull(now)
		lim = rate.NewLimiter(m.limit, int(m.config.Burst))
		m.buckets[key] = lim
	}

	// 超过桶容量的请求永远无法满足
	r := lim.ReserveN(now, int(n))
	if !r.OK() {
		return &LimitResult{Allowed: false, Remaining: int64(lim.TokensAt(now))}, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return &LimitResult{
			Allowed:    false,
			Remaining:  int64(lim.TokensAt(now)),
			RetryAfter: delay,
		}, nil
	}
	return &LimitResult{Allowed: true, Remaining: int64(lim.TokensAt(now))}, nil
}

// evictFull 清理已经补满的桶，避免 key 无限增长
func (m *MemoryBucketLimiter) evictFull(now time.Time) {
	if len(m.buckets) < memoryBucketEvictThreshold {
		return
	}
	for k, lim := range m.buckets {
		if lim.TokensAt(now) >= float64(m.config.Burst) {
			delete(m.buckets, k)
		}
	}
}

// Reset 重置令牌桶
func (m *MemoryBucketLimiter) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.buckets, key)
	return nil
}
