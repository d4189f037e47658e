package domain

import (
	"errors"
	"fmt"
)

// 业务错误定义，调用方通过 errors.Is 判断
var (
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidProduct     = errors.New("invalid product")
	ErrDuplicateSKU       = errors.New("sku already exists")
	ErrCouponNotFound     = errors.New("coupon not found")
	ErrInvalidColor       = errors.New("color not offered for product")
	ErrInvalidAccessory   = errors.New("accessory not offered for product")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrEmptyCart          = errors.New("cart has no purchasable lines")
	ErrCartLineNotFound   = errors.New("cart line not found")
	ErrInvalidSession     = errors.New("cart session id is required")
	ErrOutOfStock         = errors.New("product is out of stock")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidOrderStatus = errors.New("invalid order status")
	ErrInvalidCustomer    = errors.New("invalid customer details")
	ErrInvalidReview      = errors.New("invalid review")
	ErrDuplicateRequest   = errors.New("request with this idempotency key is in progress")
	ErrOrderFinal         = errors.New("order status can no longer change")
)

func invalidProduct(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidProduct, msg)
}
