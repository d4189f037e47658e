package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/moby/locker"
	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/cache"
	"github.com/MorseWayne/nursery_shop/internal/domain"
	"github.com/MorseWayne/nursery_shop/internal/repo"
)

type cartFixture struct {
	svc      CartService
	products *mockProductRepository
	kv       *cache.MemoryCache
	locks    *SessionLocks
}

func newCartFixture() *cartFixture {
	products := newMockProductRepository(testCrib(), testWardrobe(), testSoldOut())
	kv := cache.NewMemoryCache()
	locks := NewSessionLocks()
	svc := NewCartService(
		repo.NewCartStore(kv, time.Hour, zap.NewNop()),
		products,
		repo.NewStaticCouponRepository(domain.DefaultCoupons()),
		locks,
		zap.NewNop(),
	)
	return &cartFixture{svc: svc, products: products, kv: kv, locks: locks}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestCartService_AddLine_MergesPermutedAccessories(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	_, err := f.svc.AddLine(ctx, "s1", &domain.AddLineRequest{
		ProductID: "crib-1", Quantity: 1, ColorHex: "#FFFFFF", AccessoryIDs: []string{"mattress", "canopy"},
	}, domain.LanguageEN)
	if err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}
	view, err := f.svc.AddLine(ctx, "s1", &domain.AddLineRequest{
		ProductID: "crib-1", Quantity: 2, ColorHex: "#FFFFFF", AccessoryIDs: []string{"canopy", "mattress"},
	}, domain.LanguageEN)
	if err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}

	if len(view.Lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(view.Lines))
	}
	line := view.Lines[0]
	if line.Quantity != 3 {
		t.Errorf("Expected quantity 3, got %d", line.Quantity)
	}
	if line.Key != "crib-1|#FFFFFF|canopy|mattress" {
		t.Errorf("Unexpected line key %q", line.Key)
	}
	if !almostEqual(line.UnitPrice, 1300) || !almostEqual(line.LineTotal, 3900) {
		t.Errorf("Unexpected prices: unit=%v total=%v", line.UnitPrice, line.LineTotal)
	}
	if line.Name != "Cloud Crib" || line.Color.Name != "White" || line.Image != "/images/crib-1.jpg" {
		t.Errorf("Unexpected localized line: %+v", line)
	}
	if view.LineCount != 3 {
		t.Errorf("Expected line count 3, got %d", view.LineCount)
	}
}

func TestCartService_AddLine_Validation(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	tests := []struct {
		name    string
		req     *domain.AddLineRequest
		session string
		wantErr error
	}{
		{"zero quantity", &domain.AddLineRequest{ProductID: "crib-1", Quantity: 0, ColorHex: "#FFFFFF"}, "s1", domain.ErrInvalidQuantity},
		{"unknown product", &domain.AddLineRequest{ProductID: "nope", Quantity: 1, ColorHex: "#FFFFFF"}, "s1", domain.ErrProductNotFound},
		{"color not offered", &domain.AddLineRequest{ProductID: "crib-1", Quantity: 1, ColorHex: "#000000"}, "s1", domain.ErrInvalidColor},
		{"hex is case sensitive", &domain.AddLineRequest{ProductID: "crib-1", Quantity: 1, ColorHex: "#ffffff"}, "s1", domain.ErrInvalidColor},
		{"unknown accessory", &domain.AddLineRequest{ProductID: "crib-1", Quantity: 1, ColorHex: "#FFFFFF", AccessoryIDs: []string{"lamp"}}, "s1", domain.ErrInvalidAccessory},
		{"sold out", &domain.AddLineRequest{ProductID: "dresser-1", Quantity: 1, ColorHex: "#FFFFFF"}, "s1", domain.ErrOutOfStock},
		{"missing session", &domain.AddLineRequest{ProductID: "crib-1", Quantity: 1, ColorHex: "#FFFFFF"}, "", domain.ErrInvalidSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AddLine(ctx, tt.session, tt.req, domain.LanguageEN)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddLine() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	view, err := f.svc.GetCart(ctx, "s1", domain.LanguageEN)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if len(view.Lines) != 0 {
		t.Errorf("Expected failed adds to leave the cart empty, got %d lines", len(view.Lines))
	}
}

func TestCartService_UpdateQuantityAndRemove(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	view, err := f.svc.AddLine(ctx, "s1", &domain.AddLineRequest{ProductID: "crib-1", Quantity: 2, ColorHex: "#808080"}, domain.LanguageHE)
	if err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}
	key := view.Lines[0].Key
	if view.Lines[0].Name != "עריסה" {
		t.Errorf("Expected Hebrew name, got %q", view.Lines[0].Name)
	}

	view, err = f.svc.UpdateQuantity(ctx, "s1", key, -4, domain.LanguageHE)
	if err != nil {
		t.Fatalf("UpdateQuantity failed: %v", err)
	}
	if view.Lines[0].Quantity != 1 {
		t.Errorf("Expected quantity floor of 1, got %d", view.Lines[0].Quantity)
	}

	if _, err := f.svc.UpdateQuantity(ctx, "s1", "missing", 3, domain.LanguageHE); !errors.Is(err, domain.ErrCartLineNotFound) {
		t.Errorf("Expected ErrCartLineNotFound, got %v", err)
	}

	// 删除不存在的行不是错误
	if _, err := f.svc.RemoveLine(ctx, "s1", "missing", domain.LanguageHE); err != nil {
		t.Errorf("RemoveLine of absent key failed: %v", err)
	}
	view, err = f.svc.RemoveLine(ctx, "s1", key, domain.LanguageHE)
	if err != nil {
		t.Fatalf("RemoveLine failed: %v", err)
	}
	if len(view.Lines) != 0 {
		t.Errorf("Expected empty cart, got %d lines", len(view.Lines))
	}
}

func TestCartService_CouponLifecycle(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	// 单价改为 100，构造小计 300 的场景
	f.products.products["crib-1"].Price.ILS = 100
	if _, err := f.svc.AddLine(ctx, "s1", &domain.AddLineRequest{ProductID: "crib-1", Quantity: 2, ColorHex: "#FFFFFF"}, domain.LanguageEN); err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}
	view, err := f.svc.AddLine(ctx, "s1", &domain.AddLineRequest{ProductID: "crib-1", Quantity: 1, ColorHex: "#FFFFFF"}, domain.LanguageEN)
	if err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}
	if len(view.Lines) != 1 || view.Lines[0].Quantity != 3 || !almostEqual(view.Subtotal, 300) {
		t.Fatalf("Unexpected cart: %+v", view)
	}

	view, err = f.svc.ApplyCoupon(ctx, "s1", " welcome10 ", domain.LanguageEN)
	if err != nil {
		t.Fatalf("ApplyCoupon failed: %v", err)
	}
	if !almostEqual(view.DiscountAmount, 30) || !almostEqual(view.Total, 270) {
		t.Errorf("Expected discount 30 and total 270, got %v / %v", view.DiscountAmount, view.Total)
	}

	// 新券替换旧券，不叠加
	view, err = f.svc.ApplyCoupon(ctx, "s1", "SUMMER24", domain.LanguageEN)
	if err != nil {
		t.Fatalf("ApplyCoupon failed: %v", err)
	}
	if view.Coupon == nil || view.Coupon.Code != "SUMMER24" || !almostEqual(view.DiscountAmount, 45) {
		t.Errorf("Expected SUMMER24 only, got %+v", view.Coupon)
	}

	// 未知优惠码：返回错误且购物车不变
	if _, err := f.svc.ApplyCoupon(ctx, "s1", "BOGUS", domain.LanguageEN); !errors.Is(err, domain.ErrCouponNotFound) {
		t.Errorf("Expected ErrCouponNotFound, got %v", err)
	}
	view, _ = f.svc.GetCart(ctx, "s1", domain.LanguageEN)
	if view.Coupon == nil || view.Coupon.Code != "SUMMER24" {
		t.Errorf("Failed coupon application must not change the cart")
	}

	view, err = f.svc.RemoveCoupon(ctx, "s1", domain.LanguageEN)
	if err != nil {
		t.Fatalf("RemoveCoupon failed: %v", err)
	}
	if view.Coupon != nil || !almostEqual(view.Total, 300) {
		t.Errorf("Expected total to revert to 300, got %v", view.Total)
	}
}

func TestCartService_OrphanedLines(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	for _, req := range []*domain.AddLineRequest{
		{ProductID: "crib-1", Quantity: 1, ColorHex: "#FFFFFF"},
		{ProductID: "wardrobe-1", Quantity: 1, ColorHex: "#FFFFFF"},
	} {
		if _, err := f.svc.AddLine(ctx, "s1", req, domain.LanguageEN); err != nil {
			t.Fatalf("AddLine failed: %v", err)
		}
	}
	_ = f.products.Delete(ctx, "crib-1")

	view, err := f.svc.GetCart(ctx, "s1", domain.LanguageEN)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if view.OrphanedCount != 1 || !view.Lines[0].Orphaned {
		t.Errorf("Expected crib line to be orphaned: %+v", view.Lines)
	}
	if !almostEqual(view.Subtotal, 2000) {
		t.Errorf("Expected orphaned line excluded from subtotal, got %v", view.Subtotal)
	}
}

func TestCartService_SessionsAreIsolated(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	if _, err := f.svc.AddLine(ctx, "s1", &domain.AddLineRequest{ProductID: "crib-1", Quantity: 1, ColorHex: "#FFFFFF"}, domain.LanguageEN); err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}
	view, err := f.svc.GetCart(ctx, "s2", domain.LanguageEN)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if len(view.Lines) != 0 {
		t.Errorf("Expected other session to be empty")
	}

	if err := f.svc.Clear(ctx, "s1"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	view, _ = f.svc.GetCart(ctx, "s1", domain.LanguageEN)
	if len(view.Lines) != 0 {
		t.Errorf("Expected cleared cart")
	}
}

func TestCartService_ConcurrentAddsAreSerialized(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.AddLine(ctx, "s1", &domain.AddLineRequest{ProductID: "crib-1", Quantity: 1, ColorHex: "#FFFFFF"}, domain.LanguageEN)
		}()
	}
	wg.Wait()

	view, err := f.svc.GetCart(ctx, "s1", domain.LanguageEN)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if len(view.Lines) != 1 || view.Lines[0].Quantity != n {
		t.Errorf("Expected one line with quantity %d, got %+v", n, view.Lines)
	}
	if err := f.locks.locks.Unlock("s1"); !errors.Is(err, locker.ErrNoSuchLock) {
		t.Errorf("Expected session lock to be released, got %v", err)
	}
}
