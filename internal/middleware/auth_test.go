package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/service"
)

// MockJWTService 是用于测试的JWT服务模拟实现
type MockJWTService struct {
	validTokens   map[string]*service.Claims
	expiredTokens map[string]bool
}

func NewMockJWTService() *MockJWTService {
	return &MockJWTService{
		validTokens:   make(map[string]*service.Claims),
		expiredTokens: make(map[string]bool),
	}
}

func (m *MockJWTService) GenerateAdminToken(subject string) (*service.IssuedToken, error) {
	token := "mock_admin_token_" + subject
	claims := &service.Claims{Role: service.RoleAdmin, Type: "access"}
	claims.Subject = subject
	m.validTokens[token] = claims
	return &service.IssuedToken{AccessToken: token}, nil
}

func (m *MockJWTService) ValidateAccessToken(tokenString string) (*service.Claims, error) {
	if m.expiredTokens[tokenString] {
		return nil, service.ErrTokenExpired
	}
	claims, exists := m.validTokens[tokenString]
	if !exists {
		return nil, service.ErrInvalidToken
	}
	return claims, nil
}

// addToken 注册一个指定角色的令牌
func (m *MockJWTService) addToken(token, role string) {
	claims := &service.Claims{Role: role, Type: "access"}
	claims.Subject = "someone"
	m.validTokens[token] = claims
}

func createTestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if admin := AdminFromContext(r.Context()); admin != nil {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("admin:" + admin.Subject))
			return
		}
		w.WriteHeader(http.StatusTeapot)
	}
}

func serveWithAuth(mockJWT *MockJWTService, header string) *httptest.ResponseRecorder {
	handler := AdminAuth(mockJWT, zap.NewNop())(createTestHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	req = req.WithContext(withRequestID(req.Context(), "test-id"))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestAdminAuth_Success(t *testing.T) {
	mockJWT := NewMockJWTService()
	token, err := mockJWT.GenerateAdminToken("ops")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	rr := serveWithAuth(mockJWT, "Bearer "+token.AccessToken)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	if rr.Body.String() != "admin:ops" {
		t.Errorf("Expected 'admin:ops', got %s", rr.Body.String())
	}
}

func TestAdminAuth_Rejections(t *testing.T) {
	mockJWT := NewMockJWTService()
	mockJWT.addToken("customer_token", "customer")
	mockJWT.addToken("expired_token", service.RoleAdmin)
	mockJWT.expiredTokens["expired_token"] = true

	testCases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"missing Bearer prefix", "invalid_token", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"only Bearer", "Bearer", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"expired token", "Bearer expired_token", http.StatusUnauthorized},
		{"non-admin role", "Bearer customer_token", http.StatusForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := serveWithAuth(mockJWT, tc.header)
			if rr.Code != tc.status {
				t.Errorf("Expected status %d, got %d", tc.status, rr.Code)
			}
			if got := rr.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
				t.Errorf("Expected JSON error body, got content type %q", got)
			}
		})
	}
}
