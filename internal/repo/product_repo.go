// Package repo 实现数据访问层，负责与数据库及 KV 存储的交互。
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/MorseWayne/nursery_shop/internal/domain"
)

// ProductRepository 定义商品数据访问接口
// 未找到时返回 nil, nil
type ProductRepository interface {
	// 基本CRUD操作
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error

	// 查询操作，按创建时间倒序（即目录默认顺序）
	GetAll(ctx context.Context) ([]*domain.Product, error)

	// 业务特定操作
	DecrementStock(ctx context.Context, id string, quantity int) error
}

// productRepo 实现ProductRepository接口
type productRepo struct {
	db *sql.DB
}

// NewProductRepository 创建商品仓储实例
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `id, sku, name, subtitle, description, category, collection, brand, dimensions,
	images, colors, price_ils, price_usd, price_eur, accessories, similar_product_ids,
	in_stock, stock, features, safety_info, warranty_info, certificates, created_at, updated_at`

// mysqlDuplicateEntry MySQL 唯一键冲突错误码
const mysqlDuplicateEntry = 1062

// Create 创建商品
func (r *productRepo) Create(ctx context.Context, product *domain.Product) error {
	args, err := productJSONArgs(product)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO products (id, sku, category_key, name, subtitle, description, category, collection, brand,
			dimensions, images, colors, accessories, similar_product_ids, features, safety_info, warranty_info,
			certificates, price_ils, price_usd, price_eur, in_stock, stock)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	values := append([]any{product.ID, product.SKU, product.CategoryKey()}, args...)
	values = append(values, product.Price.ILS, product.Price.USD, product.Price.EUR, product.InStock, product.Stock)

	if _, err := r.db.ExecContext(ctx, query, values...); err != nil {
		if isDuplicateEntry(err) {
			return domain.ErrDuplicateSKU
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID 根据ID获取商品
func (r *productRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product by id: %w", err)
	}
	return product, nil
}

// Update 更新商品
func (r *productRepo) Update(ctx context.Context, product *domain.Product) error {
	args, err := productJSONArgs(product)
	if err != nil {
		return err
	}
	query := `
		UPDATE products
		SET sku = ?, category_key = ?, name = ?, subtitle = ?, description = ?, category = ?, collection = ?,
			brand = ?, dimensions = ?, images = ?, colors = ?, accessories = ?, similar_product_ids = ?,
			features = ?, safety_info = ?, warranty_info = ?, certificates = ?,
			price_ils = ?, price_usd = ?, price_eur = ?, in_stock = ?, stock = ?
		WHERE id = ?
	`
	values := append([]any{product.SKU, product.CategoryKey()}, args...)
	values = append(values, product.Price.ILS, product.Price.USD, product.Price.EUR, product.InStock, product.Stock, product.ID)

	if _, err := r.db.ExecContext(ctx, query, values...); err != nil {
		if isDuplicateEntry(err) {
			return domain.ErrDuplicateSKU
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// Delete 删除商品，评价随外键级联删除
func (r *productRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// GetAll 获取全部商品
func (r *productRepo) GetAll(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

// DecrementStock 扣减库存，不低于 0；未跟踪库存的商品不受影响
// MySQL 按从左到右的顺序计算 SET，in_stock 使用扣减后的 stock
func (r *productRepo) DecrementStock(ctx context.Context, id string, quantity int) error {
	query := `
		UPDATE products
		SET stock = GREATEST(stock - ?, 0), in_stock = stock > 0
		WHERE id = ? AND stock IS NOT NULL
	`
	if _, err := r.db.ExecContext(ctx, query, quantity, id); err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	return nil
}

// rowScanner 同时适配 *sql.Row 与 *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	p := &domain.Product{}
	var stock sql.NullInt64
	err := row.Scan(
		&p.ID,
		&p.SKU,
		jsonColumn{&p.Name},
		jsonColumn{&p.Subtitle},
		jsonColumn{&p.Description},
		jsonColumn{&p.Category},
		jsonColumn{&p.Collection},
		jsonColumn{&p.Brand},
		jsonColumn{&p.Dimensions},
		jsonColumn{&p.Images},
		jsonColumn{&p.Colors},
		&p.Price.ILS,
		&p.Price.USD,
		&p.Price.EUR,
		jsonColumn{&p.Accessories},
		jsonColumn{&p.SimilarProductIDs},
		&p.InStock,
		&stock,
		jsonColumn{&p.Features},
		jsonColumn{&p.SafetyInfo},
		jsonColumn{&p.WarrantyInfo},
		jsonColumn{&p.Certificates},
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if stock.Valid {
		n := int(stock.Int64)
		p.Stock = &n
	}
	return p, nil
}

// productJSONArgs 按 INSERT/UPDATE 中 JSON 列的顺序编码
func productJSONArgs(p *domain.Product) ([]any, error) {
	return jsonArgs(
		p.Name, p.Subtitle, p.Description, p.Category, p.Collection, p.Brand,
		p.Dimensions, nonNil(p.Images), nonNil(p.Colors), nonNil(p.Accessories), nonNil(p.SimilarProductIDs),
		p.Features, p.SafetyInfo, p.WarrantyInfo, p.Certificates,
	)
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
