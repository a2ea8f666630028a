package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

type Config struct {
	DATABASE_URL         string
	USER_SERVICE_PORT    string
	PRODUCT_SERVICE_PORT string
	ORDER_SERVICE_PORT   string
	FRONTEND_PORT        string
	USER_SERVICE_URL     string
	PRODUCT_SERVICE_URL  string
	ORDER_SERVICE_URL    string
	KAFKA_ADDRESS        string
	ES_URL               string
	ES_USER              string
	ES_PASSWORD          string
	REDIS_ADDRESS        string
	REDIS_PASSWORD       string
	SESSION_SECRET       string
	SENDGRID_API_KEY     string
	EMAIL_FROM           string
	LOG_LEVEL            string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DATABASE_URL:         os.Getenv("DATABASE_URL"),
		USER_SERVICE_PORT:    getEnv("USER_SERVICE_PORT", "5001"),
		PRODUCT_SERVICE_PORT: getEnv("PRODUCT_SERVICE_PORT", "5002"),
		ORDER_SERVICE_PORT:   getEnv("ORDER_SERVICE_PORT", "5003"),
		FRONTEND_PORT:        getEnv("FRONTEND_PORT", "5000"),
		USER_SERVICE_URL:     getEnv("USER_SERVICE_URL", "http://localhost:5001"),
		PRODUCT_SERVICE_URL:  getEnv("PRODUCT_SERVICE_URL", "http://localhost:5002"),
		ORDER_SERVICE_URL:    getEnv("ORDER_SERVICE_URL", "http://localhost:5003"),
		KAFKA_ADDRESS:        os.Getenv("KAFKA_ADDRESS"),
		ES_URL:               os.Getenv("ES_URL"),
		ES_USER:              os.Getenv("ES_USER"),
		ES_PASSWORD:          os.Getenv("ES_PASSWORD"),
		REDIS_ADDRESS:        getEnv("REDIS_ADDRESS", "localhost:6379"),
		REDIS_PASSWORD:       os.Getenv("REDIS_PASSWORD"),
		SESSION_SECRET:       os.Getenv("SESSION_SECRET"),
		SENDGRID_API_KEY:     os.Getenv("SENDGRID_API_KEY"),
		EMAIL_FROM:           getEnv("EMAIL_FROM", "shop@example.com"),
		LOG_LEVEL:            getEnv("LOG_LEVEL", "info"),
	}

	return config, nil
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}
