// Package main 提供店铺运维命令行工具：签发管理员令牌、批量导入商品
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/cache"
	"github.com/MorseWayne/nursery_shop/internal/config"
	"github.com/MorseWayne/nursery_shop/internal/database"
	"github.com/MorseWayne/nursery_shop/internal/domain"
	"github.com/MorseWayne/nursery_shop/internal/logger"
	"github.com/MorseWayne/nursery_shop/internal/repo"
	"github.com/MorseWayne/nursery_shop/internal/service"
)

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "nursery-admin",
		Usage:     "operator tools for the nursery shop",
		Writer:    out,
		ErrWriter: out,
		Commands: []*cli.Command{
			{
				Name:  "token",
				Usage: "mint an admin access token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "subject", Required: true, Usage: "operator name recorded in the token"},
				},
				Action: tokenAction,
			},
			{
				Name:      "import-products",
				Usage:     "create or update products from a JSON array",
				ArgsUsage: "<file.json>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "dry-run", Usage: "validate the file without writing"},
				},
				Action: importAction,
			},
		},
	}
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	lg, err := logger.New(cfg.App.Env, cfg.Log.Level, cfg.Log.Encoding, "nursery-admin", cfg.App.Version)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, lg, nil
}

func tokenAction(c *cli.Context) error {
	cfg, lg, err := loadConfig()
	if err != nil {
		return err
	}
	return mintToken(c.App.Writer, cfg, lg, c.String("subject"))
}

// mintToken 签发管理员令牌并以 JSON 输出
func mintToken(out io.Writer, cfg *config.Config, lg *zap.Logger, subject string) error {
	if cfg.JWT.Secret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	token, err := service.NewJWTService(cfg, lg).GenerateAdminToken(subject)
	if err != nil {
		return err
	}
	return writeJSON(out, token)
}

func importAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected exactly one JSON file")
	}
	f, err := os.Open(c.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()

	products, err := decodeProducts(f)
	if err != nil {
		return err
	}
	if c.Bool("dry-run") {
		return writeJSON(c.App.Writer, validateProducts(products))
	}

	cfg, lg, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	db, err := database.New(cfg, lg)
	if err != nil {
		return err
	}
	defer db.Close()

	productRepo := repo.NewProductRepository(db.DB)
	// 与服务端共用 Redis 时清除商品缓存
	if cfg.Cache.Enabled && cfg.Cache.Type == "redis" {
		addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
		if rc, err := cache.NewRedisCache(addr, cfg.Redis.Password, cfg.Redis.DB); err == nil {
			defer rc.Close()
			productRepo = repo.NewCachedProductRepository(productRepo, rc, cfg.Cache.TTL, lg)
		} else {
			lg.Warn("redis unavailable, product cache will expire on its own", zap.Error(err))
		}
	}

	result, err := service.NewProductService(productRepo, lg).ImportProducts(c.Context, products)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, result)
}

// decodeProducts 解析商品数组，拒绝未知字段
func decodeProducts(r io.Reader) ([]*domain.Product, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var products []*domain.Product
	if err := dec.Decode(&products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

// validateProducts 只做校验，不写库
func validateProducts(products []*domain.Product) *service.ImportResult {
	result := &service.ImportResult{}
	skus := make(map[string]int)
	for i, p := range products {
		if p == nil {
			result.Failed = append(result.Failed, service.ImportError{Index: i, Error: domain.ErrInvalidProduct.Error()})
			continue
		}
		if err := p.Validate(); err != nil {
			result.Failed = append(result.Failed, service.ImportError{Index: i, SKU: p.SKU, Error: err.Error()})
			continue
		}
		if _, dup := skus[p.SKU]; dup {
			result.Failed = append(result.Failed, service.ImportError{Index: i, SKU: p.SKU, Error: domain.ErrDuplicateSKU.Error()})
			continue
		}
		skus[p.SKU] = i
	}
	return result
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatalf("nursery-admin: %v", err)
	}
}
