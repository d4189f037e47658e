package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MorseWayne/nursery_shop/internal/domain"
)

func TestCategories_CountsOnlyDefinedNonEmpty(t *testing.T) {
	products := sampleCatalog()
	products = append(products, product("x", "Sofas", 10, white))

	cats := Categories(products)
	require.Len(t, cats, 5)
	got := map[string]int{}
	for _, c := range cats {
		got[c.Key] = c.ProductCount
	}
	assert.Equal(t, map[string]int{
		"Baby Cribs": 3, "Wardrobes": 3, "Kids Beds": 1, "Dressers": 2, "Accessories": 1,
	}, got)
	assert.Equal(t, "Baby Cribs", cats[0].Key)

	assert.Empty(t, Categories(nil))
}

func TestCollectionsAndColors(t *testing.T) {
	products := sampleCatalog()
	products[1].Collection = loc("אמלי", "Amelie", "Амели")

	assert.Equal(t, []string{"Монако", "Амели"}, Collections(products, domain.LanguageRU))
	assert.Equal(t, []string{"Monaco", "Amelie"}, Collections(products, domain.LanguageEN))

	colors := Colors(products)
	hexes := make([]string, len(colors))
	for i, c := range colors {
		hexes[i] = c.Hex
	}
	assert.Equal(t, []string{"#FFFFFF", "#C6A786", "#D1D5DB"}, hexes)
}

func TestNegotiateLanguage(t *testing.T) {
	tests := []struct {
		name     string
		param    string
		accept   string
		fallback domain.Language
		want     domain.Language
	}{
		{"explicit param wins", "RU", "en-US", domain.LanguageHE, domain.LanguageRU},
		{"accept language", "", "ru-RU,ru;q=0.9,en;q=0.8", domain.LanguageHE, domain.LanguageRU},
		{"accept language english", "", "en-GB", domain.LanguageHE, domain.LanguageEN},
		{"hebrew region", "", "he-IL", domain.LanguageEN, domain.LanguageHE},
		{"unknown param falls through", "fr", "", domain.LanguageEN, domain.LanguageEN},
		{"nothing given", "", "", domain.LanguageHE, domain.LanguageHE},
		{"bad fallback", "", "", domain.Language("xx"), domain.LanguageHE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NegotiateLanguage(tt.param, tt.accept, tt.fallback))
		})
	}
}
