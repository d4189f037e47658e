package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/domain"
	"github.com/MorseWayne/nursery_shop/internal/repo"
)

// ReviewService 定义商品评价接口
type ReviewService interface {
	ListReviews(ctx context.Context, productID string) ([]*domain.Review, error)
	CreateReview(ctx context.Context, productID string, req *domain.CreateReviewRequest) (*domain.Review, error)
}

type reviewService struct {
	reviews  repo.ReviewRepository
	products repo.ProductRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewReviewService 创建评价服务
func NewReviewService(reviews repo.ReviewRepository, products repo.ProductRepository, logger *zap.Logger) ReviewService {
	return &reviewService{reviews: reviews, products: products, logger: logger, now: time.Now}
}

// ListReviews 按时间倒序列出商品评价
func (s *reviewService) ListReviews(ctx context.Context, productID string) ([]*domain.Review, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// CreateReview 创建评价；评分在读取商品时实时汇总
func (s *reviewService) CreateReview(ctx context.Context, productID string, req *domain.CreateReviewRequest) (*domain.Review, error) {
	if req == nil || !req.Validate() {
		return nil, domain.ErrInvalidReview
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}

	review := &domain.Review{
		ID:        uuid.NewString(),
		ProductID: productID,
		Author:    strings.TrimSpace(req.Author),
		Rating:    req.Rating,
		Title:     strings.TrimSpace(req.Title),
		Comment:   strings.TrimSpace(req.Comment),
		Date:      s.now().UTC(),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.logger.Info("review created",
		zap.String("review_id", review.ID),
		zap.String("product_id", productID),
		zap.Int("rating", review.Rating))
	return review, nil
}

func (s *reviewService) ensureProduct(ctx context.Context, productID string) error {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil {
		return domain.ErrProductNotFound
	}
	return nil
}
