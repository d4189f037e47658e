package domain

// Category 预定义商品分类，Key 为英文规范名
type Category struct {
	Key   string          `json:"key"`
	Name  LocalizedString `json:"name"`
	Image string          `json:"image"`
}

// CategoryInfo 分类及其商品数量
type CategoryInfo struct {
	Category
	ProductCount int `json:"product_count"`
}

// DefinedCategories 店铺展示的分类列表（按展示顺序）
func DefinedCategories() []Category {
	return []Category{
		{
			Key:   "Baby Cribs",
			Name:  LocalizedString{LanguageHE: "מיטות תינוקות", LanguageEN: "Baby Cribs", LanguageRU: "Детские кроватки"},
			Image: "/images/categories/baby-cribs.jpg",
		},
		{
			Key:   "Wardrobes",
			Name:  LocalizedString{LanguageHE: "ארונות", LanguageEN: "Wardrobes", LanguageRU: "Шкафы"},
			Image: "/images/categories/wardrobes.jpg",
		},
		{
			Key:   "Kids Beds",
			Name:  LocalizedString{LanguageHE: "מיטות ילדים", LanguageEN: "Kids Beds", LanguageRU: "Детские кровати"},
			Image: "/images/categories/kids-beds.jpg",
		},
		{
			Key:   "Dressers",
			Name:  LocalizedString{LanguageHE: "שידות", LanguageEN: "Dressers", LanguageRU: "Комоды"},
			Image: "/images/categories/dressers.jpg",
		},
		{
			Key:   "Accessories",
			Name:  LocalizedString{LanguageHE: "אביזרים", LanguageEN: "Accessories", LanguageRU: "Аксессуары"},
			Image: "/images/categories/accessories.jpg",
		},
	}
}
