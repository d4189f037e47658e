package api

import (
	"context"

	"github.com/MorseWayne/nursery_shop/internal/catalog"
	"github.com/MorseWayne/nursery_shop/internal/domain"
	"github.com/MorseWayne/nursery_shop/internal/service"
)

// MockCatalogService for testing
type MockCatalogService struct {
	queryFunc  func(ctx context.Context, f domain.FilterState, lang domain.Language) (*catalog.Result, error)
	facetsFunc func(ctx context.Context, lang domain.Language) (*catalog.Facets, error)
	getFunc    func(ctx context.Context, id string) (*domain.Product, error)
}

func (m *MockCatalogService) Products(_ context.Context) ([]*domain.Product, error) {
	return []*domain.Product{}, nil
}

func (m *MockCatalogService) Query(ctx context.Context, f domain.FilterState, lang domain.Language) (*catalog.Result, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, f, lang)
	}
	return &catalog.Result{Products: []*domain.Product{}, PageSize: domain.DefaultPageSize}, nil
}

func (m *MockCatalogService) Facets(ctx context.Context, lang domain.Language) (*catalog.Facets, error) {
	if m.facetsFunc != nil {
		return m.facetsFunc(ctx, lang)
	}
	return &catalog.Facets{}, nil
}

func (m *MockCatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return &domain.Product{ID: id}, nil
}

// MockReviewService for testing
type MockReviewService struct {
	createFunc func(ctx context.Context, productID string, req *domain.CreateReviewRequest) (*domain.Review, error)
}

func (m *MockReviewService) ListReviews(_ context.Context, productID string) ([]*domain.Review, error) {
	return []*domain.Review{{ID: "r1", ProductID: productID, Rating: 5}}, nil
}

func (m *MockReviewService) CreateReview(ctx context.Context, productID string, req *domain.CreateReviewRequest) (*domain.Review, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, productID, req)
	}
	return &domain.Review{ID: "r2", ProductID: productID, Rating: req.Rating}, nil
}

// MockCartService for testing
type MockCartService struct {
	lastSession string
	lastLang    domain.Language
	addFunc     func(req *domain.AddLineRequest) error
	couponErr   error
	cleared     bool
	updatedQty  *int
	removedKey  string
}

func (m *MockCartService) view(sessionID string, lang domain.Language) *service.CartView {
	m.lastSession = sessionID
	m.lastLang = lang
	return &service.CartView{SessionID: sessionID, Language: lang, Lines: []service.CartLineView{}}
}

func (m *MockCartService) GetCart(_ context.Context, sessionID string, lang domain.Language) (*service.CartView, error) {
	return m.view(sessionID, lang), nil
}

func (m *MockCartService) AddLine(_ context.Context, sessionID string, req *domain.AddLineRequest, lang domain.Language) (*service.CartView, error) {
	if m.addFunc != nil {
		if err := m.addFunc(req); err != nil {
			return nil, err
		}
	}
	return m.view(sessionID, lang), nil
}

func (m *MockCartService) UpdateQuantity(_ context.Context, sessionID, key string, quantity int, lang domain.Language) (*service.CartView, error) {
	if key == "missing" {
		return nil, domain.ErrCartLineNotFound
	}
	m.updatedQty = &quantity
	return m.view(sessionID, lang), nil
}

func (m *MockCartService) RemoveLine(_ context.Context, sessionID, key string, lang domain.Language) (*service.CartView, error) {
	m.removedKey = key
	return m.view(sessionID, lang), nil
}

func (m *MockCartService) ApplyCoupon(_ context.Context, sessionID, _ string, lang domain.Language) (*service.CartView, error) {
	if m.couponErr != nil {
		return nil, m.couponErr
	}
	return m.view(sessionID, lang), nil
}

func (m *MockCartService) RemoveCoupon(_ context.Context, sessionID string, lang domain.Language) (*service.CartView, error) {
	return m.view(sessionID, lang), nil
}

func (m *MockCartService) Clear(_ context.Context, _ string) error {
	m.cleared = true
	return nil
}

// MockOrderService for testing
type MockOrderService struct {
	lastIdempotencyKey string
	lastListRequest    *domain.OrderListRequest
	checkoutErr        error
	updateErr          error
}

func (m *MockOrderService) Checkout(_ context.Context, _ string, req *domain.CheckoutRequest, idempotencyKey, _ string) (*domain.Order, error) {
	m.lastIdempotencyKey = idempotencyKey
	if m.checkoutErr != nil {
		return nil, m.checkoutErr
	}
	return &domain.Order{ID: "order-1", Status: domain.OrderStatusPending, CustomerName: req.CustomerName}, nil
}

func (m *MockOrderService) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	if id != "order-1" {
		return nil, domain.ErrOrderNotFound
	}
	return &domain.Order{ID: id, Status: domain.OrderStatusPending}, nil
}

func (m *MockOrderService) ListOrders(_ context.Context, req *domain.OrderListRequest) ([]*domain.Order, error) {
	m.lastListRequest = req
	return []*domain.Order{}, nil
}

func (m *MockOrderService) UpdateStatus(_ context.Context, id string, status domain.OrderStatus, _ string) (*domain.Order, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &domain.Order{ID: id, Status: status}, nil
}

// MockWishlistService for testing
type MockWishlistService struct {
	ids []string
}

func (m *MockWishlistService) List(_ context.Context, sessionID string) ([]string, error) {
	if sessionID == "" {
		return nil, domain.ErrInvalidSession
	}
	return m.ids, nil
}

func (m *MockWishlistService) Add(_ context.Context, _, productID string) ([]string, error) {
	if productID == "missing" {
		return nil, domain.ErrProductNotFound
	}
	m.ids = append(m.ids, productID)
	return m.ids, nil
}

func (m *MockWishlistService) Remove(_ context.Context, _, _ string) ([]string, error) {
	m.ids = []string{}
	return m.ids, nil
}

func (m *MockWishlistService) Toggle(_ context.Context, _, productID string) (bool, []string, error) {
	m.ids = append(m.ids, productID)
	return true, m.ids, nil
}

func (m *MockWishlistService) Contains(_ context.Context, _, productID string) (bool, error) {
	for _, id := range m.ids {
		if id == productID {
			return true, nil
		}
	}
	return false, nil
}

// MockProductService for testing
type MockProductService struct {
	createErr error
}

func (m *MockProductService) CreateProduct(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	product.ID = "generated"
	return product, nil
}

func (m *MockProductService) UpdateProduct(_ context.Context, id string, product *domain.Product) (*domain.Product, error) {
	product.ID = id
	return product, nil
}

func (m *MockProductService) DeleteProduct(_ context.Context, id string) error {
	if id == "missing" {
		return domain.ErrProductNotFound
	}
	return nil
}

func (m *MockProductService) ImportProducts(_ context.Context, products []*domain.Product) (*service.ImportResult, error) {
	return &service.ImportResult{Created: len(products)}, nil
}
