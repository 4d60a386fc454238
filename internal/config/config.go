package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	StoreBackend string // "sqlite" or "file"
	DBDSN        string
	DataDir      string
	LogFile      string
	PriceAPIURL  string
	PriceAPIKey  string
	PriceMaxAgeH int
}

func Load() Config {
	// .env is optional; real env vars win either way
	_ = godotenv.Load()

	get := func(key, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:         get("PORT", "8080"),
		StoreBackend: get("STORE_BACKEND", "sqlite"),
		DBDSN:        get("DB_DSN", "agrimarket.db"),
		DataDir:      get("DATA_DIR", "./data"),
		LogFile:      get("LOG_FILE", "./agrimarket.log"),
		PriceAPIURL:  get("PRICE_API_URL", "https://api.data.gov.in/resource/9ef84268-d588-465a-a308-a864a43d0070"),
		PriceAPIKey:  os.Getenv("PRICE_API_KEY"),
		PriceMaxAgeH: 12,
	}
	if v := os.Getenv("PRICE_MAX_AGE_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PriceMaxAgeH = n
		}
	}

	log.Printf("[config] PORT=%s STORE_BACKEND=%s DB_DSN=%s DATA_DIR=%s LOG_FILE=%s",
		cfg.Port, cfg.StoreBackend, cfg.DBDSN, cfg.DataDir, cfg.LogFile)
	return cfg
}
