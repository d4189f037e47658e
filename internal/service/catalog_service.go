package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/catalog"
	"github.com/MorseWayne/nursery_shop/internal/domain"
	"github.com/MorseWayne/nursery_shop/internal/repo"
)

// CatalogService 定义商品目录查询接口
type CatalogService interface {
	// Products 返回全部商品（新品在前），已合并评分
	Products(ctx context.Context) ([]*domain.Product, error)
	// Query 按筛选条件执行目录查询
	Query(ctx context.Context, f domain.FilterState, lang domain.Language) (*catalog.Result, error)
	// Facets 返回分类、系列与颜色筛选项
	Facets(ctx context.Context, lang domain.Language) (*catalog.Facets, error)
	// GetProduct 获取商品详情
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

type catalogService struct {
	products repo.ProductRepository
	reviews  repo.ReviewRepository
	logger   *zap.Logger
}

// NewCatalogService 创建目录服务
func NewCatalogService(products repo.ProductRepository, reviews repo.ReviewRepository, logger *zap.Logger) CatalogService {
	return &catalogService{products: products, reviews: reviews, logger: logger}
}

// Products 获取全部商品并合并评分
func (s *catalogService) Products(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.products.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	summaries := s.ratingSummaries(ctx)

	out := make([]*domain.Product, len(products))
	for i, p := range products {
		out[i] = withRating(p, summaries)
	}
	return out, nil
}

// Query 执行目录查询管道
func (s *catalogService) Query(ctx context.Context, f domain.FilterState, lang domain.Language) (*catalog.Result, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	result := catalog.Run(products, f, lang)
	return &result, nil
}

// Facets 计算筛选项
func (s *catalogService) Facets(ctx context.Context, lang domain.Language) (*catalog.Facets, error) {
	products, err := s.products.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	facets := catalog.BuildFacets(products, lang)
	return &facets, nil
}

// GetProduct 获取商品详情
func (s *catalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrProductNotFound
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	return withRating(p, s.ratingSummaries(ctx)), nil
}

// ratingSummaries 评分读取失败不影响商品展示
func (s *catalogService) ratingSummaries(ctx context.Context) map[string]domain.RatingSummary {
	if s.reviews == nil {
		return nil
	}
	summaries, err := s.reviews.RatingSummaries(ctx)
	if err != nil {
		s.logger.Warn("failed to load rating summaries", zap.Error(err))
		return nil
	}
	return summaries
}

// withRating 返回合并了评分的副本，不修改仓储返回的对象
func withRating(p *domain.Product, summaries map[string]domain.RatingSummary) *domain.Product {
	cp := *p
	if sum, ok := summaries[p.ID]; ok && sum.ReviewCount > 0 {
		avg := sum.AverageRating
		cp.AverageRating = &avg
		cp.ReviewCount = sum.ReviewCount
	}
	return &cp
}
