package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/api"
	"github.com/MorseWayne/nursery_shop/internal/cache"
	"github.com/MorseWayne/nursery_shop/internal/config"
	"github.com/MorseWayne/nursery_shop/internal/domain"
	"github.com/MorseWayne/nursery_shop/internal/limiter"
	"github.com/MorseWayne/nursery_shop/internal/router"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:            "nursery-shop",
			Env:             "test",
			Version:         "test",
			Port:            8080,
			RequestTimeout:  time.Second,
			ShutdownTimeout: time.Second,
			DefaultLanguage: "he",
		},
		Cache:   config.CacheConfig{Enabled: true, Type: "memory", TTL: time.Minute},
		Cart:    config.CartConfig{TTL: time.Hour, SessionHeader: "X-Cart-Session", CookieName: "cart_session"},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"*"}, AllowedMethods: []string{"GET"}, AllowedHeaders: []string{"Content-Type"}},
		Limiter: config.LimiterConfig{Enabled: true, Rate: 10, Burst: 20, Window: time.Minute},
	}
}

func TestHealthz_OK(t *testing.T) {
	cfg := testConfig()
	lg := zap.NewNop()
	deps := &router.Dependencies{
		CatalogHandler:  api.NewCatalogHandler(nil, nil, domain.LanguageHE, lg),
		CartHandler:     api.NewCartHandler(nil, domain.LanguageHE, lg),
		WishlistHandler: api.NewWishlistHandler(nil, lg),
		OrderHandler:    api.NewOrderHandler(nil, lg),
		ProductHandler:  api.NewProductHandler(nil, lg),
	}
	handler := buildHandler(cfg, deps, lg)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rw := httptest.NewRecorder()
	handler.ServeHTTP(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	if rw.Header().Get("X-Request-ID") == "" {
		t.Errorf("expected X-Request-ID header")
	}
	var body struct {
		Code      int               `json:"code"`
		Data      map[string]string `json:"data"`
		RequestID string            `json:"request_id"`
	}
	if err := json.Unmarshal(rw.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Code != 0 || body.Data["status"] != "ok" || body.RequestID == "" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestInitStores_Memory(t *testing.T) {
	cfg := testConfig()
	lg := zap.NewNop()

	kv := initKV(cfg, lg)
	if _, ok := kv.(*cache.MemoryCache); !ok {
		t.Fatalf("expected memory kv, got %T", kv)
	}
	if pc := initProductCache(cfg, kv, lg); pc != kv {
		t.Errorf("expected product cache to share the kv store")
	}

	cfg.Cache.Enabled = false
	if _, ok := initProductCache(cfg, kv, lg).(*cache.NullCache); !ok {
		t.Errorf("expected null product cache when caching is disabled")
	}
}

func TestInitLimiter(t *testing.T) {
	cfg := testConfig()
	lg := zap.NewNop()

	lim, err := initLimiter(cfg, cache.NewMemoryCache(), lg)
	if err != nil {
		t.Fatalf("initLimiter failed: %v", err)
	}
	if _, ok := lim.(*limiter.MemoryBucketLimiter); !ok {
		t.Errorf("expected memory limiter without Redis, got %T", lim)
	}

	cfg.Limiter.Enabled = false
	lim, err = initLimiter(cfg, cache.NewMemoryCache(), lg)
	if err != nil || lim != nil {
		t.Errorf("expected no limiter when disabled, got %v, %v", lim, err)
	}
}

func TestApp_CloseAggregatesErrors(t *testing.T) {
	var order []string
	a := &app{}
	a.onClose("first", func() error { order = append(order, "first"); return errors.New("boom") })
	a.onClose("second", func() error { order = append(order, "second"); return nil })
	a.onClose("third", func() error { order = append(order, "third"); return errors.New("bang") })

	err := a.close()
	if got := len(multierr.Errors(err)); got != 2 {
		t.Errorf("expected 2 aggregated errors, got %d: %v", got, err)
	}
	if len(order) != 3 || order[0] != "third" || order[2] != "first" {
		t.Errorf("expected reverse close order, got %v", order)
	}
}
