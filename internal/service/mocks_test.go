package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/MorseWayne/nursery_shop/internal/domain"
)

var errMockFailure = errors.New("mock failure")

// Mock ProductRepository for testing
type mockProductRepository struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	order    []string
	failAll  bool

	decremented map[string]int
}

func newMockProductRepository(products ...*domain.Product) *mockProductRepository {
	m := &mockProductRepository{
		products:    make(map[string]*domain.Product),
		decremented: make(map[string]int),
	}
	for _, p := range products {
		m.products[p.ID] = p
		m.order = append(m.order, p.ID)
	}
	return m
}

func (m *mockProductRepository) Create(_ context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.SKU == product.SKU {
			return domain.ErrDuplicateSKU
		}
	}
	cp := *product
	m.products[product.ID] = &cp
	m.order = append([]string{product.ID}, m.order...)
	return nil
}

func (m *mockProductRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errMockFailure
	}
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepository) Update(_ context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; !ok {
		return domain.ErrProductNotFound
	}
	for _, p := range m.products {
		if p.SKU == product.SKU && p.ID != product.ID {
			return domain.ErrDuplicateSKU
		}
	}
	cp := *product
	m.products[product.ID] = &cp
	return nil
}

func (m *mockProductRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	for i, pid := range m.order {
		if pid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockProductRepository) GetAll(_ context.Context) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errMockFailure
	}
	out := make([]*domain.Product, 0, len(m.order))
	for _, id := range m.order {
		cp := *m.products[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockProductRepository) DecrementStock(_ context.Context, id string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil
	}
	p.DecrementStock(quantity)
	m.decremented[id] += quantity
	return nil
}

// Mock ReviewRepository for testing
type mockReviewRepository struct {
	reviews []*domain.Review
	failSum bool
}

func newMockReviewRepository() *mockReviewRepository {
	return &mockReviewRepository{}
}

func (m *mockReviewRepository) Create(_ context.Context, review *domain.Review) error {
	m.reviews = append(m.reviews, review)
	return nil
}

func (m *mockReviewRepository) ListByProduct(_ context.Context, productID string) ([]*domain.Review, error) {
	out := make([]*domain.Review, 0)
	for _, r := range m.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *mockReviewRepository) RatingSummaries(_ context.Context) (map[string]domain.RatingSummary, error) {
	if m.failSum {
		return nil, errMockFailure
	}
	sums := make(map[string]domain.RatingSummary)
	for _, r := range m.reviews {
		s := sums[r.ProductID]
		s.ProductID = r.ProductID
		s.AverageRating = (s.AverageRating*float64(s.ReviewCount) + float64(r.Rating)) / float64(s.ReviewCount+1)
		s.ReviewCount++
		sums[r.ProductID] = s
	}
	return sums, nil
}

// Mock OrderRepository for testing
type mockOrderRepository struct {
	mu         sync.Mutex
	orders     map[string]*domain.Order
	created    int
	failCreate bool
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[string]*domain.Order)}
}

func (m *mockOrderRepository) Create(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate {
		return errMockFailure
	}
	cp := *order
	m.orders[order.ID] = &cp
	m.created++
	return nil
}

func (m *mockOrderRepository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepository) List(_ context.Context, req *domain.OrderListRequest) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Order, 0)
	for _, o := range m.orders {
		if req.Status != nil && o.Status != *req.Status {
			continue
		}
		if req.CustomerEmail != "" && o.CustomerEmail != req.CustomerEmail {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockOrderRepository) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.Status == status {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

// mockOrderEvents 记录发布的订单事件
type mockOrderEvents struct {
	mu      sync.Mutex
	placed  []string
	changed []string
	fail    bool
}

func (m *mockOrderEvents) PublishOrderPlaced(_ context.Context, order *domain.Order, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errMockFailure
	}
	m.placed = append(m.placed, order.ID)
	return nil
}

func (m *mockOrderEvents) PublishOrderStatusChanged(_ context.Context, order *domain.Order, from domain.OrderStatus, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errMockFailure
	}
	m.changed = append(m.changed, string(from)+"->"+string(order.Status))
	return nil
}

// 测试商品数据
var (
	white = domain.Color{Hex: "#FFFFFF", Name: domain.LocalizedString{domain.LanguageHE: "לבן", domain.LanguageEN: "White", domain.LanguageRU: "Белый"}}
	gray  = domain.Color{Hex: "#808080", Name: domain.LocalizedString{domain.LanguageHE: "אפור", domain.LanguageEN: "Gray", domain.LanguageRU: "Серый"}}

	mattress = domain.Accessory{ID: "mattress", Name: domain.LocalizedString{domain.LanguageEN: "Mattress"}, Price: domain.Price{ILS: 200}}
	canopy   = domain.Accessory{ID: "canopy", Name: domain.LocalizedString{domain.LanguageEN: "Canopy"}, Price: domain.Price{ILS: 100}}
)

func localized(he, en, ru string) domain.LocalizedString {
	return domain.LocalizedString{domain.LanguageHE: he, domain.LanguageEN: en, domain.LanguageRU: ru}
}

func intPtr(v int) *int { return &v }

func testCrib() *domain.Product {
	return &domain.Product{
		ID:          "crib-1",
		SKU:         "CRB-001",
		Name:        localized("עריסה", "Cloud Crib", "Кроватка Облако"),
		Category:    localized("מיטות תינוקות", "Baby Cribs", "Детские кроватки"),
		Collection:  localized("ענן", "Cloud", "Облако"),
		Images:      []string{"/images/crib-1.jpg"},
		Colors:      []domain.Color{white, gray},
		Price:       domain.Price{ILS: 1000, USD: 270, EUR: 250},
		Accessories: []domain.Accessory{mattress, canopy},
		InStock:     true,
	}
}

func testWardrobe() *domain.Product {
	return &domain.Product{
		ID:         "wardrobe-1",
		SKU:        "WRD-001",
		Name:       localized("ארון", "Forest Wardrobe", "Шкаф Лес"),
		Category:   localized("ארונות", "Wardrobes", "Шкафы"),
		Collection: localized("יער", "Forest", "Лес"),
		Colors:     []domain.Color{white},
		Price:      domain.Price{ILS: 2000, USD: 540, EUR: 500},
		InStock:    true,
		Stock:      intPtr(3),
	}
}

func testSoldOut() *domain.Product {
	return &domain.Product{
		ID:       "dresser-1",
		SKU:      "DRS-001",
		Name:     localized("שידה", "Moon Dresser", "Комод Луна"),
		Category: localized("שידות", "Dressers", "Комоды"),
		Colors:   []domain.Color{white},
		Price:    domain.Price{ILS: 1500},
		InStock:  false,
		Stock:    intPtr(0),
	}
}
