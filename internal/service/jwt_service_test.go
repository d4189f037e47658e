package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/config"
)

func createTestJWTService(ttl time.Duration) JWTService {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-key"
	cfg.JWT.AccessTokenTTL = ttl
	cfg.JWT.Issuer = "nursery-shop-test"
	cfg.App.Name = "nursery-shop"

	return NewJWTService(cfg, zap.NewNop())
}

func TestJWTService_GenerateAdminToken(t *testing.T) {
	jwtService := createTestJWTService(15 * time.Minute)

	token, err := jwtService.GenerateAdminToken("ops@nursery.example")
	if err != nil {
		t.Fatalf("GenerateAdminToken failed: %v", err)
	}
	if token.AccessToken == "" {
		t.Fatal("AccessToken should not be empty")
	}
	if time.Until(token.ExpiresAt) <= 0 {
		t.Errorf("ExpiresAt should be in the future, got %v", token.ExpiresAt)
	}

	claims, err := jwtService.ValidateAccessToken(token.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken failed: %v", err)
	}
	if claims.Subject != "ops@nursery.example" {
		t.Errorf("Expected subject ops@nursery.example, got %s", claims.Subject)
	}
	if claims.Role != RoleAdmin {
		t.Errorf("Expected role admin, got %s", claims.Role)
	}
	if claims.Issuer != "nursery-shop-test" {
		t.Errorf("Expected issuer nursery-shop-test, got %s", claims.Issuer)
	}
}

func TestJWTService_GenerateAdminToken_EmptySubject(t *testing.T) {
	jwtService := createTestJWTService(time.Minute)
	if _, err := jwtService.GenerateAdminToken("  "); err == nil {
		t.Error("Expected error for empty subject")
	}
}

func TestJWTService_ValidateAccessToken_InvalidToken(t *testing.T) {
	jwtService := createTestJWTService(time.Minute)

	testCases := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"invalid format", "invalid.token.format"},
		{"wrong signature", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiIxMjM0NTY3ODkwIiwibmFtZSI6IkpvaG4gRG9lIiwiaWF0IjoxNTE2MjM5MDIyfQ.invalid"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := jwtService.ValidateAccessToken(tc.token); err == nil {
				t.Error("Expected validation to fail")
			}
		})
	}
}

func TestJWTService_ValidateAccessToken_ForeignIssuer(t *testing.T) {
	jwtService := createTestJWTService(time.Minute)

	now := time.Now()
	claims := &Claims{
		Role: RoleAdmin,
		Type: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "intruder",
			Issuer:    "someone-else",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-key"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := jwtService.ValidateAccessToken(signed); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTService_TokenExpiration(t *testing.T) {
	jwtService := createTestJWTService(time.Millisecond)

	token, err := jwtService.GenerateAdminToken("ops")
	if err != nil {
		t.Fatalf("GenerateAdminToken failed: %v", err)
	}

	// 等待令牌过期
	time.Sleep(10 * time.Millisecond)

	if _, err := jwtService.ValidateAccessToken(token.AccessToken); err != ErrTokenExpired {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
}
