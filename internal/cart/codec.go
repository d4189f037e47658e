package cart

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MorseWayne/nursery_shop/internal/domain"
)

// State 导出完整可持久化状态
func (c *Cart) State() domain.CartState {
	return domain.CartState{Lines: c.Lines(), Coupon: c.Coupon()}
}

// FromState 从持久化状态恢复购物车
// 无效行被丢弃，数量下限为 1，重复键合并，越界优惠券被移除
func FromState(s domain.CartState) *Cart {
	c := New()
	for _, l := range s.Lines {
		if strings.TrimSpace(l.ProductID) == "" {
			continue
		}
		_, _ = c.AddLine(l.ProductID, max(1, l.Quantity), l.Color, l.Accessories)
	}
	if s.Coupon != nil && s.Coupon.Valid() {
		cp := *s.Coupon
		c.coupon = &cp
	}
	return c
}

// Encode 序列化购物车
func (c *Cart) Encode() ([]byte, error) {
	data, err := json.Marshal(c.State())
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	return data, nil
}

// Decode 反序列化购物车
// 数据缺失或损坏时返回空购物车，error 仅用于记录日志
func Decode(data []byte) (*Cart, error) {
	if len(data) == 0 {
		return New(), nil
	}
	var s domain.CartState
	if err := json.Unmarshal(data, &s); err != nil {
		return New(), fmt.Errorf("decode cart: %w", err)
	}
	return FromState(s), nil
}
