package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/api"
	"github.com/MorseWayne/nursery_shop/internal/cache"
	"github.com/MorseWayne/nursery_shop/internal/config"
	"github.com/MorseWayne/nursery_shop/internal/database"
	"github.com/MorseWayne/nursery_shop/internal/domain"
	"github.com/MorseWayne/nursery_shop/internal/limiter"
	"github.com/MorseWayne/nursery_shop/internal/logger"
	mw "github.com/MorseWayne/nursery_shop/internal/middleware"
	"github.com/MorseWayne/nursery_shop/internal/mq"
	"github.com/MorseWayne/nursery_shop/internal/repo"
	"github.com/MorseWayne/nursery_shop/internal/router"
	"github.com/MorseWayne/nursery_shop/internal/service"
)

// closer 关闭时按注册的逆序执行
type closer struct {
	name string
	fn   func() error
}

// app 持有需要在退出时释放的资源
type app struct {
	closers []closer
}

func (a *app) onClose(name string, fn func() error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// close 释放全部资源并汇总错误
func (a *app) close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if cerr := c.fn(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("close %s: %w", c.name, cerr))
		}
	}
	return err
}

// initConfigAndLogger 初始化配置和日志器
func initConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	lg, err := logger.New(cfg.App.Env, cfg.Log.Level, cfg.Log.Encoding, cfg.App.Name, cfg.App.Version)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, lg, nil
}

// initDatabase 初始化数据库连接并执行迁移
func initDatabase(cfg *config.Config, lg *zap.Logger) (*database.DB, error) {
	db, err := database.New(cfg, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	lg.Info("using migrations directory", zap.String("path", cfg.Migrations.Dir))
	if err := db.RunMigrations(cfg.Migrations.Dir); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	return db, nil
}

// initKV 初始化购物车、收藏夹与幂等键使用的 KV 存储
// Redis 不可用时回退到进程内存储
func initKV(cfg *config.Config, lg *zap.Logger) cache.Cache {
	if cfg.Cache.Type != "redis" {
		lg.Info("kv store ready", zap.String("type", "memory"))
		return cache.NewMemoryCache()
	}

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	redisCache, err := cache.NewRedisCache(redisAddr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		lg.Warn("failed to connect to Redis, falling back to memory store", zap.String("addr", redisAddr), zap.Error(err))
		return cache.NewMemoryCache()
	}
	lg.Info("kv store ready", zap.String("type", "redis"), zap.String("addr", redisAddr))
	return redisCache
}

// initProductCache 商品缓存与 KV 共用后端；关闭缓存时使用空实现
func initProductCache(cfg *config.Config, kv cache.Cache, lg *zap.Logger) cache.Cache {
	if !cfg.Cache.Enabled {
		lg.Info("product cache disabled")
		return cache.NewNullCache()
	}
	lg.Info("product cache enabled", zap.Duration("ttl", cfg.Cache.TTL))
	return kv
}

// initEventPublisher 启用消息队列时发布到 RabbitMQ，否则只记录日志
func initEventPublisher(ctx context.Context, cfg *config.Config, a *app, lg *zap.Logger) mq.OrderEventPublisher {
	if !cfg.MQ.Enabled {
		lg.Info("message queue disabled, order events are logged only")
		return mq.NewLogPublisher(lg)
	}

	mqCfg := mq.DefaultConfig(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ChannelPoolSize)
	if err := mqCfg.Validate(); err != nil {
		lg.Warn("invalid message queue config, order events are logged only", zap.Error(err))
		return mq.NewLogPublisher(lg)
	}

	cm := mq.NewConnectionManager(mqCfg, lg)
	if err := cm.Connect(ctx); err != nil {
		lg.Warn("failed to connect to RabbitMQ, order events are logged only",
			zap.String("url", mqCfg.RedactedURL()), zap.Error(err))
		_ = cm.Close()
		return mq.NewLogPublisher(lg)
	}

	producer := mq.NewOrderProducer(cm, mqCfg, cfg.App.Name, lg)
	if err := producer.SetupInfrastructure(ctx); err != nil {
		lg.Warn("failed to declare order exchange", zap.Error(err))
	}
	cm.OnReconnected(func() {
		if err := producer.SetupInfrastructure(context.Background()); err != nil {
			lg.Warn("failed to redeclare order exchange after reconnect", zap.Error(err))
		}
	})

	a.onClose("rabbitmq connection", cm.Close)
	a.onClose("order producer", producer.Close)
	lg.Info("order events published to RabbitMQ",
		zap.String("url", mqCfg.RedactedURL()),
		zap.String("exchange", mqCfg.Exchange))
	return producer
}

// initLimiter 使用 Redis 时为令牌桶，否则为进程内令牌桶；未启用时返回 nil
func initLimiter(cfg *config.Config, kv cache.Cache, lg *zap.Logger) (limiter.Limiter, error) {
	if !cfg.Limiter.Enabled {
		lg.Info("rate limiter disabled")
		return nil, nil
	}
	limCfg := limiter.Config{
		Rate:      cfg.Limiter.Rate,
		Window:    cfg.Limiter.Window,
		Burst:     cfg.Limiter.Burst,
		KeyPrefix: cfg.App.Name + ":limiter",
	}

	if rc, ok := kv.(*cache.RedisCache); ok {
		lim, err := limiter.NewTokenBucketLimiter(rc.Client(), limCfg)
		if err != nil {
			return nil, err
		}
		lg.Info("rate limiter enabled", zap.String("type", "redis"), zap.Int64("rate", limCfg.Rate), zap.Int64("burst", limCfg.Burst))
		return lim, nil
	}

	lim, err := limiter.NewMemoryBucketLimiter(limCfg)
	if err != nil {
		return nil, err
	}
	lg.Info("rate limiter enabled", zap.String("type", "memory"), zap.Int64("rate", limCfg.Rate), zap.Int64("burst", limCfg.Burst))
	return lim, nil
}

// initDependencies 初始化依赖注入链：仓储 -> 服务 -> API处理器
func initDependencies(
	cfg *config.Config,
	db *database.DB,
	kv, productCache cache.Cache,
	events mq.OrderEventPublisher,
	lim limiter.Limiter,
	lg *zap.Logger,
) *router.Dependencies {
	var productRepo repo.ProductRepository = repo.NewProductRepository(db.DB)
	if cfg.Cache.Enabled {
		productRepo = repo.NewCachedProductRepository(productRepo, productCache, cfg.Cache.TTL, lg)
	}
	reviewRepo := repo.NewReviewRepository(db.DB)
	orderRepo := repo.NewOrderRepository(db.DB)

	var couponRepo repo.CouponRepository
	if cfg.Promotions.Source == "database" {
		couponRepo = repo.NewCouponRepository(db.DB)
	} else {
		couponRepo = repo.NewStaticCouponRepository(domain.DefaultCoupons())
	}

	cartStore := repo.NewCartStore(kv, cfg.Cart.TTL, lg)
	wishlistStore := repo.NewWishlistStore(kv, cfg.Cart.TTL)
	locks := service.NewSessionLocks()

	catalogService := service.NewCatalogService(productRepo, reviewRepo, lg)
	reviewService := service.NewReviewService(reviewRepo, productRepo, lg)
	cartService := service.NewCartService(cartStore, productRepo, couponRepo, locks, lg)
	wishlistService := service.NewWishlistService(wishlistStore, productRepo, locks)
	orderService := service.NewOrderService(orderRepo, productRepo, cartStore, events, kv, locks, lg)
	productService := service.NewProductService(productRepo, lg)
	jwtService := service.NewJWTService(cfg, lg)

	lang := domain.Language(cfg.App.DefaultLanguage)
	return &router.Dependencies{
		CatalogHandler:  api.NewCatalogHandler(catalogService, reviewService, lang, lg),
		CartHandler:     api.NewCartHandler(cartService, lang, lg),
		WishlistHandler: api.NewWishlistHandler(wishlistService, lg),
		OrderHandler:    api.NewOrderHandler(orderService, lg),
		ProductHandler:  api.NewProductHandler(productService, lg),
		JWTService:      jwtService,
		Limiter:         lim,
	}
}

// buildHandler 构建中间件链：请求进入时执行顺序为 access log → CORS → timeout → recovery → request ID
func buildHandler(cfg *config.Config, deps *router.Dependencies, lg *zap.Logger) http.Handler {
	handler := router.New().Setup(cfg, deps, lg)
	handler = mw.RequestID(handler)
	handler = mw.Recovery(lg)(handler)
	handler = mw.Timeout(cfg.App.RequestTimeout)(handler)
	handler = mw.CORS(mw.CORSConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
	})(handler)
	handler = mw.AccessLog(lg)(handler)
	return handler
}

// startServer 启动服务器并处理优雅关闭
func startServer(cfg *config.Config, handler http.Handler, lg *zap.Logger) {
	addr := fmt.Sprintf(":%d", cfg.App.Port)
	lg.Info("server starting", zap.String("addr", addr))
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server error", zap.Error(err))
		}
	case <-quit:
		lg.Info("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Error("server shutdown error", zap.Error(err))
	}
	lg.Info("server exited")
}

func main() {
	cfg, lg, err := initConfigAndLogger()
	if err != nil {
		log.Fatalf("failed to initialize config and logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	a := &app{}
	defer func() {
		if err := a.close(); err != nil {
			lg.Error("failed to release resources", zap.Error(err))
		}
	}()

	db, err := initDatabase(cfg, lg)
	if err != nil {
		lg.Fatal("failed to initialize database", zap.Error(err))
	}
	a.onClose("database", db.Close)

	kv := initKV(cfg, lg)
	a.onClose("kv store", kv.Close)
	productCache := initProductCache(cfg, kv, lg)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	events := initEventPublisher(startCtx, cfg, a, lg)
	cancel()

	lim, err := initLimiter(cfg, kv, lg)
	if err != nil {
		lg.Warn("failed to initialize rate limiter, continuing without it", zap.Error(err))
	}

	deps := initDependencies(cfg, db, kv, productCache, events, lim, lg)
	startServer(cfg, buildHandler(cfg, deps, lg), lg)
}
