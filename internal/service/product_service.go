package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/domain"
	"github.com/MorseWayne/nursery_shop/internal/repo"
)

// ProductService 定义商品管理接口（管理端与导入工具使用）
type ProductService interface {
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, product *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ImportProducts(ctx context.Context, products []*domain.Product) (*ImportResult, error)
}

// ImportResult 批量导入结果
type ImportResult struct {
	Created int           `json:"created"`
	Updated int           `json:"updated"`
	Failed  []ImportError `json:"failed,omitempty"`
}

// ImportError 单个商品导入失败原因
type ImportError struct {
	Index int    `json:"index"`
	SKU   string `json:"sku"`
	Error string `json:"error"`
}

type productService struct {
	products repo.ProductRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewProductService 创建商品服务实例
func NewProductService(products repo.ProductRepository, logger *zap.Logger) ProductService {
	return &productService{products: products, logger: logger, now: time.Now}
}

// CreateProduct 创建商品，未指定ID时生成 UUID
func (s *productService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, domain.ErrInvalidProduct
	}
	product.ID = strings.TrimSpace(product.ID)
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	normalizeStock(product)
	if err := product.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID),
		zap.String("sku", product.SKU))
	return product, nil
}

// UpdateProduct 全量替换商品，创建时间保持不变
func (s *productService) UpdateProduct(ctx context.Context, id string, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, domain.ErrInvalidProduct
	}
	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if existing == nil {
		return nil, domain.ErrProductNotFound
	}

	product.ID = existing.ID
	normalizeStock(product)
	if err := product.Validate(); err != nil {
		return nil, err
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = s.now().UTC()
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product updated",
		zap.String("product_id", product.ID),
		zap.String("sku", product.SKU))
	return product, nil
}

// DeleteProduct 删除商品；引用它的购物车行会变为孤立行
func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if existing == nil {
		return domain.ErrProductNotFound
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product deleted", zap.String("product_id", id))
	return nil
}

// ImportProducts 按ID导入商品：已存在则更新，否则创建；单个失败不影响其他商品
func (s *productService) ImportProducts(ctx context.Context, products []*domain.Product) (*ImportResult, error) {
	result := &ImportResult{}
	for i, p := range products {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if p == nil {
			result.Failed = append(result.Failed, ImportError{Index: i, Error: domain.ErrInvalidProduct.Error()})
			continue
		}

		var err error
		existing := (*domain.Product)(nil)
		if id := strings.TrimSpace(p.ID); id != "" {
			existing, err = s.products.GetByID(ctx, id)
			if err != nil {
				return result, fmt.Errorf("failed to get product: %w", err)
			}
		}

		if existing != nil {
			_, err = s.UpdateProduct(ctx, existing.ID, p)
		} else {
			_, err = s.CreateProduct(ctx, p)
		}
		switch {
		case err == nil && existing != nil:
			result.Updated++
		case err == nil:
			result.Created++
		case errors.Is(err, domain.ErrInvalidProduct), errors.Is(err, domain.ErrDuplicateSKU):
			result.Failed = append(result.Failed, ImportError{Index: i, SKU: p.SKU, Error: err.Error()})
		default:
			return result, err
		}
	}
	return result, nil
}

// normalizeStock 跟踪库存数量的商品以数量决定是否有货
func normalizeStock(p *domain.Product) {
	if p.Stock != nil {
		p.InStock = *p.Stock > 0
	}
}
