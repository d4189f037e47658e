package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/config"
	"github.com/MorseWayne/nursery_shop/internal/service"
)

const sampleProducts = `[
  {
    "id": "crib-1",
    "sku": "CRB-001",
    "name": {"he": "עריסה", "en": "Cloud Crib", "ru": "Кроватка Облако"},
    "category": {"he": "מיטות תינוקות", "en": "Baby Cribs", "ru": "Детские кроватки"},
    "colors": [{"hex": "#FFFFFF", "name": {"en": "White"}}],
    "price": {"ils": 1000, "usd": 270, "eur": 250},
    "in_stock": true
  },
  {
    "id": "crib-2",
    "sku": "CRB-001",
    "name": {"he": "עריסה", "en": "Cloud Crib", "ru": "Кроватка Облако"},
    "category": {"he": "מיטות תינוקות", "en": "Baby Cribs", "ru": "Детские кроватки"},
    "colors": [{"hex": "#FFFFFF", "name": {"en": "White"}}],
    "price": {"ils": 1000}
  },
  {
    "id": "bad-1",
    "sku": "",
    "price": {"ils": 1}
  }
]`

func TestMintToken(t *testing.T) {
	cfg := &config.Config{
		App: config.AppConfig{Name: "nursery-shop"},
		JWT: config.JWTConfig{Secret: "secret", AccessTokenTTL: time.Hour, Issuer: "nursery-shop"},
	}
	var out bytes.Buffer
	if err := mintToken(&out, cfg, zap.NewNop(), "ops"); err != nil {
		t.Fatalf("mintToken failed: %v", err)
	}

	var token service.IssuedToken
	if err := json.Unmarshal(out.Bytes(), &token); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	claims, err := service.NewJWTService(cfg, zap.NewNop()).ValidateAccessToken(token.AccessToken)
	if err != nil {
		t.Fatalf("minted token does not validate: %v", err)
	}
	if claims.Subject != "ops" || claims.Role != service.RoleAdmin {
		t.Errorf("unexpected claims: %+v", claims)
	}

	cfg.JWT.Secret = ""
	if err := mintToken(&out, cfg, zap.NewNop(), "ops"); err == nil {
		t.Error("expected an error without a secret")
	}
}

func TestImportProducts_DryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	if err := os.WriteFile(path, []byte(sampleProducts), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	var out bytes.Buffer
	if err := newApp(&out).Run([]string{"nursery-admin", "import-products", "--dry-run", path}); err != nil {
		t.Fatalf("dry run failed: %v", err)
	}

	var result service.ImportResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if len(result.Failed) != 2 {
		t.Fatalf("expected 2 failures, got %+v", result.Failed)
	}
	if result.Failed[0].Index != 1 || !strings.Contains(result.Failed[0].Error, "sku already exists") {
		t.Errorf("unexpected duplicate failure: %+v", result.Failed[0])
	}
	if result.Failed[1].Index != 2 || !strings.Contains(result.Failed[1].Error, "invalid product") {
		t.Errorf("unexpected validation failure: %+v", result.Failed[1])
	}
}

func TestDecodeProducts_RejectsUnknownFields(t *testing.T) {
	if _, err := decodeProducts(strings.NewReader(`[{"sku":"A","colour":"red"}]`)); err == nil {
		t.Error("expected unknown field to be rejected")
	}
}
