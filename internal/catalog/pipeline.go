// Package catalog 实现商品目录查询流水线：筛选、排序和分页。
// 所有函数都是纯函数，展示语言作为显式参数传入。
package catalog

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/MorseWayne/nursery_shop/internal/domain"
)

// Result 一次查询的结果
type Result struct {
	Products []*domain.Product `json:"products"`
	Total    int               `json:"total"`
	Visible  int               `json:"visible"`
	PageSize int               `json:"page_size"`
	HasMore  bool              `json:"has_more"`
}

// Run 依次执行筛选、排序和分页
func Run(products []*domain.Product, f domain.FilterState, lang domain.Language) Result {
	matched := Sort(Filter(products, f, lang), f.Sort, lang)

	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	visible := f.VisibleCount
	if visible <= 0 {
		visible = pageSize
	}
	hasMore := visible < len(matched)
	visible = min(visible, len(matched))

	return Result{
		Products: matched[:visible],
		Total:    len(matched),
		Visible:  visible,
		PageSize: pageSize,
		HasMore:  hasMore,
	}
}

// Filter 按分类、搜索、系列、颜色筛选，各条件之间为 AND 关系
func Filter(products []*domain.Product, f domain.FilterState, lang domain.Language) []*domain.Product {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if f.Category != "" && p.CategoryKey() != f.Category {
			continue
		}
		if search != "" && !matchesSearch(p, search, lang) {
			continue
		}
		if len(f.Collections) > 0 && !matchesCollection(p, f.Collections, lang) {
			continue
		}
		if len(f.ColorHexes) > 0 && !matchesColor(p, f.ColorHexes) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesSearch(p *domain.Product, needle string, lang domain.Language) bool {
	for _, field := range []string{
		p.Name.In(lang), p.Subtitle.In(lang), p.Description.In(lang), p.SKU,
	} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// 选中值与当前语言的系列名比较；同时接受英文规范名，
// 这样切换语言后通过规范键选中的筛选仍然有效
func matchesCollection(p *domain.Product, selected []string, lang domain.Language) bool {
	return slices.Contains(selected, p.Collection.In(lang)) ||
		slices.Contains(selected, p.Collection[domain.LanguageEN])
}

func matchesColor(p *domain.Product, hexes []string) bool {
	for _, c := range p.Colors {
		if slices.Contains(hexes, c.Hex) {
			return true
		}
	}
	return false
}

// Sort 返回按 key 稳定排序后的新切片，输入不会被修改
func Sort(products []*domain.Product, key domain.SortKey, lang domain.Language) []*domain.Product {
	out := slices.Clone(products)
	if out == nil {
		out = []*domain.Product{}
	}

	var less func(a, b *domain.Product) int
	switch key {
	case domain.SortPriceAsc:
		less = func(a, b *domain.Product) int { return cmp.Compare(a.Price.ILS, b.Price.ILS) }
	case domain.SortPriceDesc:
		less = func(a, b *domain.Product) int { return cmp.Compare(b.Price.ILS, a.Price.ILS) }
	case domain.SortRatingAsc:
		less = func(a, b *domain.Product) int { return cmp.Compare(a.Rating(), b.Rating()) }
	case domain.SortRatingDesc:
		less = func(a, b *domain.Product) int { return cmp.Compare(b.Rating(), a.Rating()) }
	case domain.SortNameAsc, domain.SortNameDesc:
		col := collatorFor(lang)
		less = func(a, b *domain.Product) int { return col.CompareString(a.Name.In(lang), b.Name.In(lang)) }
		if key == domain.SortNameDesc {
			less = reverse(less)
		}
	case domain.SortModelAsc, domain.SortModelDesc:
		col := collatorFor(lang)
		less = func(a, b *domain.Product) int {
			return col.CompareString(a.Collection.In(lang), b.Collection.In(lang))
		}
		if key == domain.SortModelDesc {
			less = reverse(less)
		}
	default:
		return out
	}

	slices.SortStableFunc(out, less)
	return out
}

func reverse(f func(a, b *domain.Product) int) func(a, b *domain.Product) int {
	return func(a, b *domain.Product) int { return f(b, a) }
}

// collate.Collator 不是并发安全的，每次排序单独创建
func collatorFor(lang domain.Language) *collate.Collator {
	return collate.New(language.Make(string(lang)))
}
