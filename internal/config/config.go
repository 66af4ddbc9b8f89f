package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DBDSN             string
	TemplatesDir      string
	StaticDir         string
	LogFile           string
	LogLevel          string
	RedisAddr         string // empty keeps carts in SQLite
	LowStockThreshold int
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func Load() Config {
	_ = godotenv.Load() // load .env if it exists

	threshold, err := strconv.Atoi(getenv("LOW_STOCK_THRESHOLD", "5"))
	if err != nil || threshold < 1 {
		threshold = 5
	}
	cfg := Config{
		Port:              getenv("PORT", "8080"),
		DBDSN:             getenv("DB_DSN", "cafeteria.db"), // sqlite file in project root
		TemplatesDir:      getenv("TEMPLATES_DIR", "./web/templates"),
		StaticDir:         getenv("STATIC_DIR", "./web/static"),
		LogFile:           os.Getenv("LOG_FILE"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		LowStockThreshold: threshold,
	}
	log.Printf("[config] PORT=%s DB_DSN=%s TEMPLATES_DIR=%s LOG_FILE=%s REDIS_ADDR=%s",
		cfg.Port, cfg.DBDSN, cfg.TemplatesDir, cfg.LogFile, cfg.RedisAddr)
	return cfg
}
