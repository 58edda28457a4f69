package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr       string
	DBDSN          string
	MongoURI       string
	RedisAddr      string
	RabbitURL      string
	CatalogTTL     time.Duration
	IdempotencyTTL time.Duration
	OTLPEndpoint   string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	catalogTTL, _ := time.ParseDuration(os.Getenv("CATALOG_TTL"))
	if catalogTTL == 0 {
		catalogTTL = time.Minute
	}
	idempTTL, _ := time.ParseDuration(os.Getenv("IDEMPOTENCY_TTL"))
	if idempTTL == 0 {
		idempTTL = time.Hour
	}

	return &Config{
		HTTPAddr:       httpAddr,
		DBDSN:          os.Getenv("DB_DSN"),
		MongoURI:       os.Getenv("MONGO_URI"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RabbitURL:      os.Getenv("RABBIT_URL"),
		CatalogTTL:     catalogTTL,
		IdempotencyTTL: idempTTL,
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}
