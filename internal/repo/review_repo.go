package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MorseWayne/nursery_shop/internal/domain"
)

// ReviewRepository 定义评价数据访问接口
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	ListByProduct(ctx context.Context, productID string) ([]*domain.Review, error)
	// RatingSummaries 返回所有有评价商品的评分汇总，按商品ID索引
	RatingSummaries(ctx context.Context) (map[string]domain.RatingSummary, error)
}

// reviewRepo 实现ReviewRepository接口
type reviewRepo struct {
	db *sql.DB
}

// NewReviewRepository 创建评价仓储实例
func NewReviewRepository(db *sql.DB) ReviewRepository {
	return &reviewRepo{db: db}
}

// Create 创建评价
func (r *reviewRepo) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, product_id, author, rating, title, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		review.ID,
		review.ProductID,
		review.Author,
		review.Rating,
		review.Title,
		review.Comment,
		review.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// ListByProduct 获取商品评价，最新的在前
func (r *reviewRepo) ListByProduct(ctx context.Context, productID string) ([]*domain.Review, error) {
	query := `
		SELECT id, product_id, author, rating, title, comment, created_at
		FROM reviews
		WHERE product_id = ?
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]*domain.Review, 0)
	for rows.Next() {
		review := &domain.Review{}
		err := rows.Scan(
			&review.ID,
			&review.ProductID,
			&review.Author,
			&review.Rating,
			&review.Title,
			&review.Comment,
			&review.Date,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}
	return reviews, nil
}

// RatingSummaries 按商品聚合评分
func (r *reviewRepo) RatingSummaries(ctx context.Context) (map[string]domain.RatingSummary, error) {
	query := `
		SELECT product_id, ROUND(AVG(rating), 1), COUNT(*)
		FROM reviews
		GROUP BY product_id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating summaries: %w", err)
	}
	defer rows.Close()

	summaries := make(map[string]domain.RatingSummary)
	for rows.Next() {
		var s domain.RatingSummary
		if err := rows.Scan(&s.ProductID, &s.AverageRating, &s.ReviewCount); err != nil {
			return nil, fmt.Errorf("failed to scan rating summary: %w", err)
		}
		summaries[s.ProductID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rating summaries: %w", err)
	}
	return summaries, nil
}
