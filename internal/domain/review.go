package domain

import (
	"strings"
	"time"
)

// Review 商品评价
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Author    string    `json:"author"`
	Rating    int       `json:"rating"`
	Title     string    `json:"title"`
	Comment   string    `json:"comment"`
	Date      time.Time `json:"date"`
}

// RatingSummary 单个商品的评分汇总
type RatingSummary struct {
	ProductID     string  `json:"product_id"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// CreateReviewRequest 表示创建评价请求
type CreateReviewRequest struct {
	Author  string `json:"author"`
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
}

// Validate 评分范围 1-5，作者与内容必填
func (r *CreateReviewRequest) Validate() bool {
	return r.Rating >= 1 && r.Rating <= 5 &&
		strings.TrimSpace(r.Author) != "" &&
		strings.TrimSpace(r.Comment) != ""
}
