package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/MorseWayne/nursery_shop/internal/domain"
)

// OrderRepository 定义订单数据访问接口
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, req *domain.OrderListRequest) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
}

// orderRepo 实现OrderRepository接口
type orderRepo struct {
	db *sql.DB
}

// NewOrderRepository 创建订单仓储实例
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepo{db: db}
}

const orderColumns = `id, items, subtotal, discount_amount, total_price, coupon_code, status,
	customer_name, customer_email, customer_phone, shipping_address, created_at, updated_at`

// defaultOrderListLimit 未指定数量时的列表上限
const defaultOrderListLimit = 100

// Create 创建订单
func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	args, err := jsonArgs(nonNil(order.Items), order.ShippingAddress)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO orders (id, items, shipping_address, subtotal, discount_amount, total_price, coupon_code,
			status, customer_name, customer_email, customer_phone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		order.ID,
		args[0],
		args[1],
		order.Subtotal,
		order.DiscountAmount,
		order.TotalPrice,
		order.CouponCode,
		order.Status,
		order.CustomerName,
		order.CustomerEmail,
		order.CustomerPhone,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID 根据ID获取订单
func (r *orderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order by id: %w", err)
	}
	return order, nil
}

// List 获取订单列表，最新的在前
func (r *orderRepo) List(ctx context.Context, req *domain.OrderListRequest) ([]*domain.Order, error) {
	var conditions []string
	var args []any

	if req.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *req.Status)
	}
	if req.CustomerEmail != "" {
		conditions = append(conditions, "customer_email = ?")
		args = append(args, req.CustomerEmail)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultOrderListLimit
	}
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY created_at DESC LIMIT ?`, orderColumns, where)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus 更新订单状态
func (r *orderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	o := &domain.Order{}
	var coupon sql.NullString
	err := row.Scan(
		&o.ID,
		jsonColumn{&o.Items},
		&o.Subtotal,
		&o.DiscountAmount,
		&o.TotalPrice,
		&coupon,
		&o.Status,
		&o.CustomerName,
		&o.CustomerEmail,
		&o.CustomerPhone,
		jsonColumn{&o.ShippingAddress},
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if coupon.Valid {
		o.CouponCode = &coupon.String
	}
	return o, nil
}
