package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/cart"
	"github.com/MorseWayne/nursery_shop/internal/domain"
	"github.com/MorseWayne/nursery_shop/internal/repo"
)

// CartService 定义会话购物车的业务接口
// 每次修改都是 加载 → 修改 → 保存，同一会话的修改串行执行
type CartService interface {
	GetCart(ctx context.Context, sessionID string, lang domain.Language) (*CartView, error)
	AddLine(ctx context.Context, sessionID string, req *domain.AddLineRequest, lang domain.Language) (*CartView, error)
	UpdateQuantity(ctx context.Context, sessionID, key string, quantity int, lang domain.Language) (*CartView, error)
	RemoveLine(ctx context.Context, sessionID, key string, lang domain.Language) (*CartView, error)
	ApplyCoupon(ctx context.Context, sessionID, code string, lang domain.Language) (*CartView, error)
	RemoveCoupon(ctx context.Context, sessionID string, lang domain.Language) (*CartView, error)
	Clear(ctx context.Context, sessionID string) error
}

// ColorView 颜色展示信息
type ColorView struct {
	Hex  string `json:"hex"`
	Name string `json:"name"`
}

// AccessoryView 配件展示信息
type AccessoryView struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// CartLineView 购物车行展示信息，孤立行只保留标识与数量
type CartLineView struct {
	Key         string          `json:"key"`
	ProductID   string          `json:"product_id"`
	SKU         string          `json:"sku,omitempty"`
	Name        string          `json:"name,omitempty"`
	Image       string          `json:"image,omitempty"`
	Color       ColorView       `json:"color"`
	Accessories []AccessoryView `json:"accessories"`
	Quantity    int             `json:"quantity"`
	UnitPrice   float64         `json:"unit_price"`
	LineTotal   float64         `json:"line_total"`
	Orphaned    bool            `json:"orphaned"`
}

// CartView 购物车及其派生金额（ILS）
type CartView struct {
	SessionID      string          `json:"session_id"`
	Language       domain.Language `json:"language"`
	Lines          []CartLineView  `json:"lines"`
	Subtotal       float64         `json:"subtotal"`
	DiscountAmount float64         `json:"discount_amount"`
	Total          float64         `json:"total"`
	LineCount      int             `json:"line_count"`
	OrphanedCount  int             `json:"orphaned_count"`
	Coupon         *domain.Coupon  `json:"applied_coupon"`
}

type cartService struct {
	carts    repo.CartStore
	products repo.ProductRepository
	coupons  repo.CouponRepository
	locks    *SessionLocks
	logger   *zap.Logger
}

// NewCartService 创建购物车服务
func NewCartService(carts repo.CartStore, products repo.ProductRepository, coupons repo.CouponRepository, locks *SessionLocks, logger *zap.Logger) CartService {
	return &cartService{
		carts:    carts,
		products: products,
		coupons:  coupons,
		locks:    locks,
		logger:   logger,
	}
}

// GetCart 读取购物车
func (s *cartService) GetCart(ctx context.Context, sessionID string, lang domain.Language) (*CartView, error) {
	if sessionID == "" {
		return nil, domain.ErrInvalidSession
	}
	c, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, sessionID, c, lang)
}

// AddLine 加入购物车；颜色与配件由商品目录解析，价格不接受客户端输入
func (s *cartService) AddLine(ctx context.Context, sessionID string, req *domain.AddLineRequest, lang domain.Language) (*CartView, error) {
	if req.Quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	product, err := s.products.GetByID(ctx, strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	if !product.InStock {
		return nil, domain.ErrOutOfStock
	}
	color, ok := product.FindColor(req.ColorHex)
	if !ok {
		return nil, domain.ErrInvalidColor
	}
	accessories := make([]domain.Accessory, 0, len(req.AccessoryIDs))
	for _, id := range req.AccessoryIDs {
		a, ok := product.FindAccessory(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidAccessory, id)
		}
		accessories = append(accessories, a)
	}

	return s.mutate(ctx, sessionID, lang, func(c *cart.Cart) error {
		key, err := c.AddLine(product.ID, req.Quantity, color, accessories)
		if err != nil {
			return err
		}
		s.logger.Info("cart line added",
			zap.String("session_id", sessionID),
			zap.String("line_key", key),
			zap.Int("quantity", req.Quantity))
		return nil
	})
}

// UpdateQuantity 修改数量，最小为 1
func (s *cartService) UpdateQuantity(ctx context.Context, sessionID, key string, quantity int, lang domain.Language) (*CartView, error) {
	return s.mutate(ctx, sessionID, lang, func(c *cart.Cart) error {
		if !c.UpdateQuantity(key, quantity) {
			return domain.ErrCartLineNotFound
		}
		return nil
	})
}

// RemoveLine 删除购物车行，行不存在时不做任何改变
func (s *cartService) RemoveLine(ctx context.Context, sessionID, key string, lang domain.Language) (*CartView, error) {
	return s.mutate(ctx, sessionID, lang, func(c *cart.Cart) error {
		c.RemoveLine(key)
		return nil
	})
}

// ApplyCoupon 使用优惠券；优惠码不存在时返回 ErrCouponNotFound 且购物车不变
func (s *cartService) ApplyCoupon(ctx context.Context, sessionID, code string, lang domain.Language) (*CartView, error) {
	normalized := domain.NormalizeCouponCode(code)
	var coupon *domain.Coupon
	if normalized != "" {
		found, err := s.coupons.GetByCode(ctx, normalized)
		if err != nil {
			return nil, fmt.Errorf("failed to get coupon: %w", err)
		}
		coupon = found
	}

	return s.mutate(ctx, sessionID, lang, func(c *cart.Cart) error {
		applied, err := c.ApplyCoupon(normalized, func(string) (*domain.Coupon, bool) {
			return coupon, coupon != nil
		})
		if err != nil {
			return err
		}
		s.logger.Info("coupon applied",
			zap.String("session_id", sessionID),
			zap.String("coupon", applied.Code),
			zap.Float64("discount_percent", applied.DiscountPercent))
		return nil
	})
}

// RemoveCoupon 移除优惠券
func (s *cartService) RemoveCoupon(ctx context.Context, sessionID string, lang domain.Language) (*CartView, error) {
	return s.mutate(ctx, sessionID, lang, func(c *cart.Cart) error {
		c.RemoveCoupon()
		return nil
	})
}

// Clear 清空购物车
func (s *cartService) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrInvalidSession
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()
	return s.carts.Delete(ctx, sessionID)
}

// mutate 在会话锁内执行 加载 → 修改 → 保存；修改失败时不写回
func (s *cartService) mutate(ctx context.Context, sessionID string, lang domain.Language, fn func(*cart.Cart) error) (*CartView, error) {
	if sessionID == "" {
		return nil, domain.ErrInvalidSession
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	c, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return s.view(ctx, sessionID, c, lang)
}

func (s *cartService) view(ctx context.Context, sessionID string, c *cart.Cart, lang domain.Language) (*CartView, error) {
	lookup, err := productLookup(ctx, s.products)
	if err != nil {
		return nil, err
	}
	return buildCartView(sessionID, c.Totals(lookup), lang), nil
}

// productLookup 一次读取全部商品，供金额计算按ID解析
func productLookup(ctx context.Context, products repo.ProductRepository) (cart.ProductLookup, error) {
	all, err := products.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	byID := make(map[string]*domain.Product, len(all))
	for _, p := range all {
		byID[p.ID] = p
	}
	return func(id string) (*domain.Product, bool) {
		p, ok := byID[id]
		return p, ok
	}, nil
}

func buildCartView(sessionID string, totals cart.Totals, lang domain.Language) *CartView {
	v := &CartView{
		SessionID:      sessionID,
		Language:       lang,
		Lines:          make([]CartLineView, 0, len(totals.Lines)),
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.DiscountAmount,
		Total:          totals.Total,
		LineCount:      totals.LineCount,
		OrphanedCount:  totals.OrphanedCount,
		Coupon:         totals.Coupon,
	}
	for _, lt := range totals.Lines {
		line := CartLineView{
			Key:         lt.Key,
			ProductID:   lt.Line.ProductID,
			Color:       ColorView{Hex: lt.Line.Color.Hex, Name: lt.Line.Color.Name.In(lang)},
			Accessories: make([]AccessoryView, 0, len(lt.Line.Accessories)),
			Quantity:    lt.Line.Quantity,
			UnitPrice:   lt.UnitPrice,
			LineTotal:   lt.Total,
			Orphaned:    lt.Orphaned,
		}
		for _, a := range lt.Line.Accessories {
			line.Accessories = append(line.Accessories, AccessoryView{ID: a.ID, Name: a.Name.In(lang), Price: a.Price.ILS})
		}
		if p := lt.Product; p != nil {
			line.SKU = p.SKU
			line.Name = p.Name.In(lang)
			if len(p.Images) > 0 {
				line.Image = p.Images[0]
			}
		}
		v.Lines = append(v.Lines, line)
	}
	return v
}
