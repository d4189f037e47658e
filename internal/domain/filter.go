package domain

import (
	"slices"
	"strings"
)

// SortKey 商品列表排序方式
type SortKey string

const (
	SortDefault    SortKey = "default"
	SortPriceAsc   SortKey = "price_asc"
	SortPriceDesc  SortKey = "price_desc"
	SortNameAsc    SortKey = "name_asc"
	SortNameDesc   SortKey = "name_desc"
	SortRatingDesc SortKey = "rating_desc"
	SortRatingAsc  SortKey = "rating_asc"
	SortModelAsc   SortKey = "model_asc"
	SortModelDesc  SortKey = "model_desc"
)

// ParseSortKey 解析排序键，未知值回退到 default
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc,
		SortRatingDesc, SortRatingAsc, SortModelAsc, SortModelDesc:
		return k
	default:
		return SortDefault
	}
}

// DefaultPageSize 每页商品数
const DefaultPageSize = 8

// FilterState 目录查询参数
// 任何筛选或排序参数的变更都会把 VisibleCount 重置为一页
type FilterState struct {
	Category     string   `json:"category,omitempty"`
	Search       string   `json:"search,omitempty"`
	Collections  []string `json:"collections,omitempty"`
	ColorHexes   []string `json:"colors,omitempty"`
	Sort         SortKey  `json:"sort"`
	PageSize     int      `json:"page_size"`
	VisibleCount int      `json:"visible_count"`
}

// NewFilterState 创建默认查询参数
func NewFilterState() FilterState {
	return FilterState{
		Sort:         SortDefault,
		PageSize:     DefaultPageSize,
		VisibleCount: DefaultPageSize,
	}
}

func (f *FilterState) pageSize() int {
	if f.PageSize <= 0 {
		return DefaultPageSize
	}
	return f.PageSize
}

func (f *FilterState) resetVisible() {
	f.VisibleCount = f.pageSize()
}

// SetCategory 设置分类筛选（空字符串表示全部）
func (f *FilterState) SetCategory(key string) {
	f.Category = strings.TrimSpace(key)
	f.resetVisible()
}

// SetSearch 设置搜索文本
func (f *FilterState) SetSearch(text string) {
	f.Search = strings.TrimSpace(text)
	f.resetVisible()
}

// ToggleCollection 切换系列筛选项
func (f *FilterState) ToggleCollection(name string) {
	f.Collections = toggle(f.Collections, name)
	f.resetVisible()
}

// ToggleColor 切换颜色筛选项
func (f *FilterState) ToggleColor(hex string) {
	f.ColorHexes = toggle(f.ColorHexes, hex)
	f.resetVisible()
}

// SetSort 设置排序方式
func (f *FilterState) SetSort(key SortKey) {
	f.Sort = key
	f.resetVisible()
}

// ClearFilters 清除全部筛选条件，保留排序方式
func (f *FilterState) ClearFilters() {
	f.Category = ""
	f.Search = ""
	f.Collections = nil
	f.ColorHexes = nil
	f.resetVisible()
}

// LoadMore 再展示一页
func (f *FilterState) LoadMore() {
	if f.VisibleCount <= 0 {
		f.resetVisible()
	}
	f.VisibleCount += f.pageSize()
}

// HasMore 是否还有未展示的结果；未设置展示数量时按一页计算
func (f *FilterState) HasMore(total int) bool {
	visible := f.VisibleCount
	if visible <= 0 {
		visible = f.pageSize()
	}
	return visible < total
}

func toggle(set []string, v string) []string {
	if v == "" {
		return set
	}
	if i := slices.Index(set, v); i >= 0 {
		return slices.Delete(slices.Clone(set), i, i+1)
	}
	return append(slices.Clone(set), v)
}
