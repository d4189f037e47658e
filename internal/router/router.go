// Package router 提供 HTTP 路由设置和中间件配置功能
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/api"
	"github.com/MorseWayne/nursery_shop/internal/config"
	"github.com/MorseWayne/nursery_shop/internal/limiter"
	"github.com/MorseWayne/nursery_shop/internal/middleware"
	"github.com/MorseWayne/nursery_shop/internal/resp"
	"github.com/MorseWayne/nursery_shop/internal/service"
)

// Dependencies 包含路由设置所需的所有依赖
type Dependencies struct {
	CatalogHandler  *api.CatalogHandler
	CartHandler     *api.CartHandler
	WishlistHandler *api.WishlistHandler
	OrderHandler    *api.OrderHandler
	ProductHandler  *api.ProductHandler
	JWTService      service.JWTService
	// Limiter 为空时不限流
	Limiter limiter.Limiter
}

// Router 路由器接口
type Router interface {
	Setup(cfg *config.Config, deps *Dependencies, lg *zap.Logger) http.Handler
}

// GinRouter Gin路由器实现
type GinRouter struct {
	engine *gin.Engine
	cfg    *config.Config
	deps   *Dependencies
	logger *zap.Logger
}

// New 创建新的路由器实例
func New() Router {
	return &GinRouter{}
}

// Setup 设置路由；请求 ID、恢复、超时、CORS 与访问日志由外层 net/http 中间件链负责
func (r *GinRouter) Setup(cfg *config.Config, deps *Dependencies, lg *zap.Logger) http.Handler {
	// 根据环境设置 Gin 模式
	switch cfg.App.Env {
	case "prod":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r.engine = gin.New()
	r.cfg = cfg
	r.deps = deps
	r.logger = lg

	r.setupRoutes()
	return r.engine
}

// setupRoutes 设置所有路由
func (r *GinRouter) setupRoutes() {
	// 健康检查
	r.engine.GET("/healthz", r.healthCheck)

	session := adaptMiddleware(middleware.CartSession(middleware.CartSessionConfig{
		Header:     r.cfg.Cart.SessionHeader,
		CookieName: r.cfg.Cart.CookieName,
		TTL:        r.cfg.Cart.TTL,
		Secure:     r.cfg.App.Env == "prod",
	}))
	rateLimit := r.rateLimitMiddleware()

	// API v1 路由组
	v1 := r.engine.Group("/api/v1")
	{
		// 商品目录（公开）
		catalog := v1.Group("/catalog")
		{
			catalog.GET("", r.deps.CatalogHandler.ListCatalog)
			catalog.GET("/facets", r.deps.CatalogHandler.Facets)
		}

		products := v1.Group("/products")
		{
			products.GET("/:id", r.deps.CatalogHandler.GetProduct)
			products.GET("/:id/reviews", r.deps.CatalogHandler.ListReviews)
			products.POST("/:id/reviews", r.deps.CatalogHandler.CreateReview)
		}

		// 购物车（按会话）
		cart := v1.Group("/cart")
		cart.Use(session)
		{
			cart.GET("", r.deps.CartHandler.GetCart)
			cart.DELETE("", r.deps.CartHandler.ClearCart)
			cart.POST("/lines", r.deps.CartHandler.AddLine)
			cart.PUT("/lines/:key", r.deps.CartHandler.UpdateLine)
			cart.DELETE("/lines/:key", r.deps.CartHandler.RemoveLine)
			cart.POST("/coupon", rateLimit, r.deps.CartHandler.ApplyCoupon)
			cart.DELETE("/coupon", r.deps.CartHandler.RemoveCoupon)
		}

		// 收藏夹（按会话）
		wishlist := v1.Group("/wishlist")
		wishlist.Use(session)
		{
			wishlist.GET("", r.deps.WishlistHandler.List)
			wishlist.GET("/:productId", r.deps.WishlistHandler.Contains)
			wishlist.POST("/:productId", r.deps.WishlistHandler.Add)
			wishlist.POST("/:productId/toggle", r.deps.WishlistHandler.Toggle)
			wishlist.DELETE("/:productId", r.deps.WishlistHandler.Remove)
		}

		// 订单
		orders := v1.Group("/orders")
		{
			orders.POST("", session, rateLimit, adaptMiddleware(middleware.Idempotency), r.deps.OrderHandler.Checkout)
			orders.GET("/:id", r.deps.OrderHandler.GetOrder)
		}

		// 管理员路由（需要管理员令牌）
		admin := v1.Group("/admin")
		admin.Use(adaptMiddleware(middleware.AdminAuth(r.deps.JWTService, r.logger)))
		{
			adminProducts := admin.Group("/products")
			{
				adminProducts.POST("", r.deps.ProductHandler.CreateProduct)
				adminProducts.POST("/import", r.deps.ProductHandler.ImportProducts)
				adminProducts.PUT("/:id", r.deps.ProductHandler.UpdateProduct)
				adminProducts.DELETE("/:id", r.deps.ProductHandler.DeleteProduct)
			}

			adminOrders := admin.Group("/orders")
			{
				adminOrders.GET("", r.deps.OrderHandler.ListOrders)
				adminOrders.PUT("/:id/status", r.deps.OrderHandler.UpdateOrderStatus)
			}
		}
	}
}

// healthCheck 健康检查处理器
func (r *GinRouter) healthCheck(c *gin.Context) {
	data := map[string]any{
		"status":  "ok",
		"version": r.cfg.App.Version,
	}
	resp.OK(c.Writer, data, middleware.RequestIDFromContext(c.Request.Context()), "")
}

// rateLimitMiddleware 未配置限流器时返回空中间件
func (r *GinRouter) rateLimitMiddleware() gin.HandlerFunc {
	if r.deps.Limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return limiter.RateLimitMiddleware(limiter.MiddlewareConfig{
		Limiter:  r.deps.Limiter,
		FailOpen: true,
		Logger:   r.logger,
	})
}

// adaptMiddleware 将 net/http 中间件适配为 gin 中间件；
// 中间件未调用 next（已写出响应）时终止后续处理
func adaptMiddleware(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		called := false
		mw(http.HandlerFunc(func(_ http.ResponseWriter, req *http.Request) {
			called = true
			c.Request = req
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)
		if !called {
			c.Abort()
		}
	}
}
