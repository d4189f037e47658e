package catalog

import (
	"github.com/MorseWayne/nursery_shop/internal/domain"
)

// Facets 筛选面板可选项
type Facets struct {
	Categories  []domain.CategoryInfo `json:"categories"`
	Collections []string              `json:"collections"`
	Colors      []domain.Color        `json:"colors"`
}

// BuildFacets 汇总分类、系列和颜色
func BuildFacets(products []*domain.Product, lang domain.Language) Facets {
	return Facets{
		Categories:  Categories(products),
		Collections: Collections(products, lang),
		Colors:      Colors(products),
	}
}

// Categories 返回至少有一个商品的预定义分类及数量
func Categories(products []*domain.Product) []domain.CategoryInfo {
	counts := make(map[string]int)
	for _, p := range products {
		counts[p.CategoryKey()]++
	}
	out := make([]domain.CategoryInfo, 0)
	for _, c := range domain.DefinedCategories() {
		if n := counts[c.Key]; n > 0 {
			out = append(out, domain.CategoryInfo{Category: c, ProductCount: n})
		}
	}
	return out
}

// Collections 当前语言下的系列名，按首次出现顺序去重
func Collections(products []*domain.Product, lang domain.Language) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range products {
		name := p.Collection.In(lang)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Colors 按 hex 去重的全部颜色
func Colors(products []*domain.Product) []domain.Color {
	seen := make(map[string]struct{})
	out := make([]domain.Color, 0)
	for _, p := range products {
		for _, c := range p.Colors {
			if _, ok := seen[c.Hex]; ok {
				continue
			}
			seen[c.Hex] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
