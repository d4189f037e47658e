// Package cart 实现购物车聚合：行去重、数量约束、优惠券与金额计算。
//
// Cart 是纯内存状态，不做任何 I/O，也不是并发安全的；
// 持久化和串行化由调用方（service 层）负责。
package cart

import (
	"slices"
	"sort"
	"strings"

	"github.com/MorseWayne/nursery_shop/internal/domain"
)

// ErrCouponNotFound 优惠码不存在，购物车保持不变
var ErrCouponNotFound = domain.ErrCouponNotFound

// CouponLookup 按优惠码查找优惠券（不区分大小写）
type CouponLookup func(code string) (*domain.Coupon, bool)

// Cart 购物车
type Cart struct {
	lines  []domain.CartLine
	coupon *domain.Coupon
}

// New 创建空购物车
func New() *Cart {
	return &Cart{}
}

// LineKey 计算购物车行身份键：商品ID + 颜色hex + 排序后的配件ID，以 | 分隔；
// 商品校验保证各部分不含分隔符
func LineKey(productID string, color domain.Color, accessories []domain.Accessory) string {
	ids := make([]string, 0, len(accessories))
	for _, a := range accessories {
		ids = append(ids, a.ID)
	}
	sort.Strings(ids)
	parts := append([]string{productID, color.Hex}, ids...)
	return strings.Join(parts, domain.LineKeySeparator)
}

// KeyOf 返回购物车行的身份键
func KeyOf(line domain.CartLine) string {
	return LineKey(line.ProductID, line.Color, line.Accessories)
}

// AddLine 加入购物车；键相同的行累加数量，否则追加到末尾
func (c *Cart) AddLine(productID string, quantity int, color domain.Color, accessories []domain.Accessory) (string, error) {
	if quantity < 1 {
		return "", domain.ErrInvalidQuantity
	}
	accessories = uniqueAccessories(accessories)
	key := LineKey(productID, color, accessories)
	if i := c.indexOf(key); i >= 0 {
		c.lines[i].Quantity += quantity
		return key, nil
	}
	c.lines = append(c.lines, domain.CartLine{
		ProductID:   productID,
		Quantity:    quantity,
		Color:       color,
		Accessories: accessories,
	})
	return key, nil
}

// RemoveLine 删除指定行，不存在时返回 false
func (c *Cart) RemoveLine(key string) bool {
	i := c.indexOf(key)
	if i < 0 {
		return false
	}
	c.lines = slices.Delete(c.lines, i, i+1)
	return true
}

// UpdateQuantity 设置数量为 max(1, quantity)，不存在时返回 false
func (c *Cart) UpdateQuantity(key string, quantity int) bool {
	i := c.indexOf(key)
	if i < 0 {
		return false
	}
	c.lines[i].Quantity = max(1, quantity)
	return true
}

// ApplyCoupon 使用优惠券，新券替换旧券
func (c *Cart) ApplyCoupon(code string, lookup CouponLookup) (*domain.Coupon, error) {
	normalized := domain.NormalizeCouponCode(code)
	if normalized == "" || lookup == nil {
		return nil, ErrCouponNotFound
	}
	coupon, ok := lookup(normalized)
	if !ok || coupon == nil || !coupon.Valid() {
		return nil, ErrCouponNotFound
	}
	cp := *coupon
	c.coupon = &cp
	return &cp, nil
}

// RemoveCoupon 移除已使用的优惠券
func (c *Cart) RemoveCoupon() {
	c.coupon = nil
}

// Clear 清空购物车（包括优惠券）
func (c *Cart) Clear() {
	c.lines = nil
	c.coupon = nil
}

// Lines 返回购物车行的副本，按加入顺序
func (c *Cart) Lines() []domain.CartLine {
	out := make([]domain.CartLine, len(c.lines))
	for i, l := range c.lines {
		out[i] = cloneLine(l)
	}
	return out
}

// Coupon 当前使用的优惠券
func (c *Cart) Coupon() *domain.Coupon {
	if c.coupon == nil {
		return nil
	}
	cp := *c.coupon
	return &cp
}

// Count 商品总件数
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// IsEmpty 是否没有任何行
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) indexOf(key string) int {
	for i, l := range c.lines {
		if KeyOf(l) == key {
			return i
		}
	}
	return -1
}

func uniqueAccessories(in []domain.Accessory) []domain.Accessory {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Accessory, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, a := range in {
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}
	return out
}

func cloneLine(l domain.CartLine) domain.CartLine {
	l.Accessories = slices.Clone(l.Accessories)
	return l
}
