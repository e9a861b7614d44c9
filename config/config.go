package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env            string
	Port           string
	ShopAPIURL     string
	RedisURL       string
	RequestTimeout time.Duration
	CartTTL        time.Duration
	AllowedOrigins []string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return Config{
		Env:            getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8090"),
		ShopAPIURL:     getEnv("SHOP_API_URL", "http://localhost:8080"),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379"),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 10*time.Second),
		CartTTL:        time.Hour * 24 * 7, // persisted cart kept 7 days
		AllowedOrigins: []string{getEnv("ALLOWED_ORIGIN", "http://localhost:3000")},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using default %s", key, defaultVal)
	}
	return defaultVal
}
