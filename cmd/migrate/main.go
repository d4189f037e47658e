// Package main 提供数据库迁移管理的命令行工具
// 基于 golang-migrate，支持向上迁移、回滚、迁移到指定版本与强制设置版本
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/MorseWayne/nursery_shop/internal/config"
	"github.com/MorseWayne/nursery_shop/internal/database"
	"github.com/MorseWayne/nursery_shop/internal/logger"
)

// withDB 加载配置、连接数据库后执行 fn
func withDB(fn func(db *database.DB, dir string, lg *zap.Logger) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		lg, err := logger.New(cfg.App.Env, cfg.Log.Level, cfg.Log.Encoding, "migrate", cfg.App.Version)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer func() { _ = lg.Sync() }()

		db, err := database.New(cfg, lg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				lg.Error("failed to close database", zap.Error(err))
			}
		}()

		dir := c.String("dir")
		if dir == "" {
			dir = cfg.Migrations.Dir
		}
		return fn(db, dir, lg)
	}
}

func main() {
	app := &cli.App{
		Name:  "migrate",
		Usage: "manage the nursery shop database schema",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Usage: "migrations directory (defaults to MIGRATIONS_DIR)"},
		},
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "run all pending migrations",
				Action: withDB(func(db *database.DB, dir string, lg *zap.Logger) error {
					lg.Info("running up migrations")
					return db.RunMigrations(dir)
				}),
			},
			{
				Name:  "down",
				Usage: "roll back migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
				},
				Action: func(c *cli.Context) error {
					steps := c.Int("steps")
					if steps < 1 {
						return errors.New("steps must be at least 1")
					}
					return withDB(func(db *database.DB, dir string, lg *zap.Logger) error {
						lg.Info("running down migrations", zap.Int("steps", steps))
						return db.MigrateDown(dir, steps)
					})(c)
				},
			},
			{
				Name:  "version",
				Usage: "migrate up or down to a target version",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "target", Required: true, Usage: "target version"},
				},
				Action: func(c *cli.Context) error {
					target := c.Uint("target")
					if target == 0 {
						return errors.New("target version must be greater than 0")
					}
					return withDB(func(db *database.DB, dir string, lg *zap.Logger) error {
						lg.Info("migrating to version", zap.Uint("target", target))
						return db.MigrateToVersion(dir, target)
					})(c)
				},
			},
			{
				Name:  "force",
				Usage: "force the schema version and clear the dirty flag",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "target", Usage: "version to force, 0 resets to no migrations"},
				},
				Action: func(c *cli.Context) error {
					target := c.Uint("target")
					return withDB(func(db *database.DB, dir string, lg *zap.Logger) error {
						lg.Warn("forcing migration version, dirty state will be cleared", zap.Uint("target", target))
						return db.ForceMigrationVersion(dir, target)
					})(c)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}
