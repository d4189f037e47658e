package domain

import "strings"

// Coupon 百分比优惠券，Code 不区分大小写
type Coupon struct {
	Code            string  `json:"code"`
	DiscountPercent float64 `json:"discount"`
	Description     string  `json:"description"`
}

// NormalizeCouponCode 规范化优惠码用于比较
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid 折扣百分比必须位于 [0, 100]
func (c *Coupon) Valid() bool {
	return c.Code != "" && c.DiscountPercent >= 0 && c.DiscountPercent <= 100
}

// DefaultCoupons 内置的优惠券登记表
func DefaultCoupons() []Coupon {
	return []Coupon{
		{Code: "WELCOME10", DiscountPercent: 10, Description: "10% off your first order"},
		{Code: "SUMMER24", DiscountPercent: 15, Description: "15% off for summer sale"},
	}
}
