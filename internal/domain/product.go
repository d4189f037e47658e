// Package domain 定义商品、购物车、订单等业务领域模型和核心业务规则。
package domain

import (
	"strings"
	"time"
)

// Language 表示展示语言代码
type Language string

const (
	LanguageHE Language = "he" // 希伯来语（默认）
	LanguageEN Language = "en" // 英语，同时作为规范键语言
	LanguageRU Language = "ru" // 俄语
)

// SupportedLanguages 按优先级排列的受支持语言
var SupportedLanguages = []Language{LanguageHE, LanguageEN, LanguageRU}

// ParseLanguage 解析语言代码，不区分大小写
func ParseLanguage(s string) (Language, bool) {
	lang := Language(strings.ToLower(strings.TrimSpace(s)))
	for _, l := range SupportedLanguages {
		if l == lang {
			return l, true
		}
	}
	return "", false
}

// LocalizedString 语言代码到文本的映射
type LocalizedString map[Language]string

// In 返回指定语言的文本，缺失时回退到英语
func (s LocalizedString) In(lang Language) string {
	if v, ok := s[lang]; ok && v != "" {
		return v
	}
	return s[LanguageEN]
}

// Complete 判断三种语言是否都已提供
func (s LocalizedString) Complete() bool {
	for _, l := range SupportedLanguages {
		if strings.TrimSpace(s[l]) == "" {
			return false
		}
	}
	return true
}

// Price 三种货币的价格，ILS 为计价基准货币
type Price struct {
	ILS float64 `json:"ils"`
	USD float64 `json:"usd"`
	EUR float64 `json:"eur"`
}

// Valid 价格不能为负
func (p Price) Valid() bool {
	return p.ILS >= 0 && p.USD >= 0 && p.EUR >= 0
}

// Color 商品颜色，身份由 Hex 决定（区分大小写）
type Color struct {
	Name LocalizedString `json:"name"`
	Hex  string          `json:"hex"`
}

// Accessory 商品配件，身份由 ID 决定
type Accessory struct {
	ID    string          `json:"id"`
	Name  LocalizedString `json:"name"`
	Price Price           `json:"price"`
	Image string          `json:"image"`
}

// Product 表示商品领域模型
type Product struct {
	ID                string            `json:"id"`
	SKU               string            `json:"sku"`
	Name              LocalizedString   `json:"name"`
	Subtitle          LocalizedString   `json:"subtitle"`
	Description       LocalizedString   `json:"description"`
	Category          LocalizedString   `json:"category"`
	Collection        LocalizedString   `json:"collection"`
	Brand             LocalizedString   `json:"brand"`
	Dimensions        LocalizedString   `json:"dimensions"`
	Images            []string          `json:"images"`
	Colors            []Color           `json:"colors"`
	Price             Price             `json:"price"`
	Accessories       []Accessory       `json:"accessories"`
	SimilarProductIDs []string          `json:"similar_product_ids"`
	InStock           bool              `json:"in_stock"`
	Stock             *int              `json:"stock,omitempty"`
	AverageRating     *float64          `json:"average_rating,omitempty"`
	ReviewCount       int               `json:"review_count"`
	Features          []LocalizedString `json:"features,omitempty"`
	SafetyInfo        LocalizedString   `json:"safety_info,omitempty"`
	WarrantyInfo      LocalizedString   `json:"warranty_info,omitempty"`
	Certificates      []LocalizedString `json:"certificates,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// CategoryKey 返回分类的规范键（英文名称）
func (p *Product) CategoryKey() string {
	return p.Category[LanguageEN]
}

// Rating 返回平均评分，缺失时按 0 处理
func (p *Product) Rating() float64 {
	if p.AverageRating == nil {
		return 0
	}
	return *p.AverageRating
}

// FindColor 按 hex 查找商品提供的颜色
func (p *Product) FindColor(hex string) (Color, bool) {
	for _, c := range p.Colors {
		if c.Hex == hex {
			return c, true
		}
	}
	return Color{}, false
}

// FindAccessory 按 ID 查找商品的配件
func (p *Product) FindAccessory(id string) (Accessory, bool) {
	for _, a := range p.Accessories {
		if a.ID == id {
			return a, true
		}
	}
	return Accessory{}, false
}

// DecrementStock 扣减库存，库存不会低于 0
// 未跟踪库存数量的商品不做任何改变
func (p *Product) DecrementStock(qty int) {
	if p.Stock == nil {
		return
	}
	left := *p.Stock - qty
	if left < 0 {
		left = 0
	}
	p.Stock = &left
	p.InStock = left > 0
}

// Validate 校验商品是否满足业务不变量
func (p *Product) Validate() error {
	switch {
	case strings.TrimSpace(p.SKU) == "":
		return invalidProduct("sku is required")
	case !p.Name.Complete():
		return invalidProduct("name must be provided in he, en and ru")
	case !p.Category.Complete():
		return invalidProduct("category must be provided in he, en and ru")
	case len(p.Colors) == 0:
		return invalidProduct("at least one color is required")
	case !p.Price.Valid():
		return invalidProduct("price must not be negative")
	case p.Stock != nil && *p.Stock < 0:
		return invalidProduct("stock must not be negative")
	}
	if strings.Contains(p.ID, LineKeySeparator) {
		return invalidProduct("id must not contain " + LineKeySeparator)
	}
	for _, c := range p.Colors {
		if strings.TrimSpace(c.Hex) == "" {
			return invalidProduct("color hex is required")
		}
		if strings.Contains(c.Hex, LineKeySeparator) {
			return invalidProduct("color hex must not contain " + LineKeySeparator)
		}
	}
	seen := make(map[string]struct{}, len(p.Accessories))
	for _, a := range p.Accessories {
		if strings.TrimSpace(a.ID) == "" {
			return invalidProduct("accessory id is required")
		}
		if strings.Contains(a.ID, LineKeySeparator) {
			return invalidProduct("accessory id must not contain " + LineKeySeparator)
		}
		if _, dup := seen[a.ID]; dup {
			return invalidProduct("duplicate accessory id " + a.ID)
		}
		seen[a.ID] = struct{}{}
		if !a.Price.Valid() {
			return invalidProduct("accessory price must not be negative")
		}
	}
	return nil
}
