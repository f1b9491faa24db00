package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds process configuration for the API server.
type Config struct {
	Addr        string
	PGDSN       string
	AuthSecret  string
	TokenTTL    time.Duration
	FactoryURL  string
	FactoryKey  string
	AdminName   string
	AdminEmail  string
	AdminSecret string
	RateBurst   int
	RatePerSec  int
}

// Load reads configuration from environment variables, falling back to
// defaults. An empty PGDSN selects the in-memory store.
func Load() Config {
	return Config{
		Addr:        envOr("SLICEHUB_ADDR", ":8080"),
		PGDSN:       os.Getenv("SLICEHUB_PG_DSN"),
		AuthSecret:  os.Getenv("SLICEHUB_AUTH_SECRET"),
		TokenTTL:    envDuration("SLICEHUB_TOKEN_TTL", 24*time.Hour),
		FactoryURL:  envOr("SLICEHUB_FACTORY_URL", "https://factory.slicehub.org/api/order"),
		FactoryKey:  os.Getenv("SLICEHUB_FACTORY_KEY"),
		AdminName:   envOr("SLICEHUB_ADMIN_NAME", "admin"),
		AdminEmail:  os.Getenv("SLICEHUB_ADMIN_EMAIL"),
		AdminSecret: os.Getenv("SLICEHUB_ADMIN_SECRET"),
		RateBurst:   envInt("SLICEHUB_RATE_BURST", 40),
		RatePerSec:  envInt("SLICEHUB_RATE_PER_SEC", 20),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid integer for %s: %q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("invalid duration for %s: %q, using default %s", key, v, fallback)
		return fallback
	}
	return d
}
