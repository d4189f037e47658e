package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/domain"
)

func TestReviewService_CreateAndList(t *testing.T) {
	reviews := newMockReviewRepository()
	svc := NewReviewService(reviews, newMockProductRepository(testCrib()), zap.NewNop()).(*reviewService)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, rating := range []int{5, 3} {
		at := base.Add(time.Duration(i) * time.Hour)
		svc.now = func() time.Time { return at }
		review, err := svc.CreateReview(ctx, "crib-1", &domain.CreateReviewRequest{
			Author: "  Noa ", Rating: rating, Title: "Great", Comment: " Solid wood ",
		})
		if err != nil {
			t.Fatalf("CreateReview failed: %v", err)
		}
		if review.ID == "" || review.Author != "Noa" || review.Comment != "Solid wood" {
			t.Errorf("Unexpected review: %+v", review)
		}
	}

	list, err := svc.ListReviews(ctx, "crib-1")
	if err != nil {
		t.Fatalf("ListReviews failed: %v", err)
	}
	if len(list) != 2 || list[0].Rating != 3 {
		t.Errorf("Expected newest review first, got %+v", list)
	}
}

func TestReviewService_Rejections(t *testing.T) {
	svc := NewReviewService(newMockReviewRepository(), newMockProductRepository(testCrib()), zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		name      string
		productID string
		req       *domain.CreateReviewRequest
		want      error
	}{
		{"nil request", "crib-1", nil, domain.ErrInvalidReview},
		{"rating too low", "crib-1", &domain.CreateReviewRequest{Author: "a", Rating: 0, Comment: "c"}, domain.ErrInvalidReview},
		{"rating too high", "crib-1", &domain.CreateReviewRequest{Author: "a", Rating: 6, Comment: "c"}, domain.ErrInvalidReview},
		{"missing author", "crib-1", &domain.CreateReviewRequest{Author: " ", Rating: 4, Comment: "c"}, domain.ErrInvalidReview},
		{"missing comment", "crib-1", &domain.CreateReviewRequest{Author: "a", Rating: 4}, domain.ErrInvalidReview},
		{"unknown product", "missing", &domain.CreateReviewRequest{Author: "a", Rating: 4, Comment: "c"}, domain.ErrProductNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateReview(ctx, tt.productID, tt.req); !errors.Is(err, tt.want) {
				t.Errorf("CreateReview() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := svc.ListReviews(ctx, "missing"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound, got %v", err)
	}
}
