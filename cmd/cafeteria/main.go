package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"cafeteria/internal/config"
	"cafeteria/internal/http/handlers"
	"cafeteria/internal/http/server"
	applog "cafeteria/internal/log"
	"cafeteria/internal/repos"
)

func main() {
	cfg := config.Load()

	logger, err := applog.Init(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		logger.Fatal("open db", zap.Error(err))
	}
	defer db.Close()

	// Carts live in SQLite unless a Redis address is configured.
	var carts handlers.CartStore
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := repos.NewRedis(ctx, cfg.RedisAddr)
		cancel()
		if err != nil {
			logger.Fatal("connect redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		defer rdb.Close()
		carts = repos.NewRedisCartRepo(rdb)
		logger.Info("cart store", zap.String("backend", "redis"))
	}

	app := server.New(cfg, db, carts)
	logger.Info("listening", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("listen", zap.Error(err))
	}
}
