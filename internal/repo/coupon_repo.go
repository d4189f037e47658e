package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MorseWayne/nursery_shop/internal/domain"
)

// CouponRepository 定义优惠券查询接口
// code 不区分大小写；未找到或未启用时返回 nil, nil
type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	List(ctx context.Context) ([]domain.Coupon, error)
}

// staticCouponRepo 基于内置登记表的实现
type staticCouponRepo struct {
	coupons map[string]domain.Coupon
	ordered []domain.Coupon
}

// NewStaticCouponRepository 创建内置优惠券仓储
func NewStaticCouponRepository(coupons []domain.Coupon) CouponRepository {
	r := &staticCouponRepo{coupons: make(map[string]domain.Coupon, len(coupons))}
	for _, c := range coupons {
		c.Code = domain.NormalizeCouponCode(c.Code)
		if !c.Valid() {
			continue
		}
		if _, dup := r.coupons[c.Code]; dup {
			continue
		}
		r.coupons[c.Code] = c
		r.ordered = append(r.ordered, c)
	}
	return r
}

// GetByCode 根据优惠码查找
func (r *staticCouponRepo) GetByCode(_ context.Context, code string) (*domain.Coupon, error) {
	c, ok := r.coupons[domain.NormalizeCouponCode(code)]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// List 返回全部优惠券
func (r *staticCouponRepo) List(_ context.Context) ([]domain.Coupon, error) {
	return append([]domain.Coupon(nil), r.ordered...), nil
}

// couponRepo 基于 coupons 表的实现
type couponRepo struct {
	db *sql.DB
}

// NewCouponRepository 创建数据库优惠券仓储
func NewCouponRepository(db *sql.DB) CouponRepository {
	return &couponRepo{db: db}
}

// GetByCode 根据优惠码查找启用中的优惠券
func (r *couponRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	query := `
		SELECT code, discount_percent, description
		FROM coupons
		WHERE code = ? AND active = TRUE
	`

	c := &domain.Coupon{}
	err := r.db.QueryRowContext(ctx, query, domain.NormalizeCouponCode(code)).Scan(
		&c.Code,
		&c.DiscountPercent,
		&c.Description,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon by code: %w", err)
	}
	if !c.Valid() {
		return nil, nil
	}
	return c, nil
}

// List 返回全部启用中的优惠券
func (r *couponRepo) List(ctx context.Context) ([]domain.Coupon, error) {
	query := `SELECT code, discount_percent, description FROM coupons WHERE active = TRUE ORDER BY code`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query coupons: %w", err)
	}
	defer rows.Close()

	var coupons []domain.Coupon
	for rows.Next() {
		var c domain.Coupon
		if err := rows.Scan(&c.Code, &c.DiscountPercent, &c.Description); err != nil {
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate coupons: %w", err)
	}
	return coupons, nil
}
