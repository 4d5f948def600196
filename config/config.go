package config

import (
	"fmt"
	"os"
)

// Config holds the environment-driven settings for the shipping service.
type Config struct {
	PORT string

	// PostgreSQL
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string
	DB_HOST     string
	DB_PORT     string

	// Kafka
	KAFKA_TOPIC  string
	KAFKA_BROKER string

	// Shopify app credentials
	SHOPIFY_API_KEY     string
	SHOPIFY_API_SECRET  string
	SHOPIFY_APP_URL     string
	SHOPIFY_API_VERSION string
}

// LoadConfig reads the configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		PORT: getEnv("PORT", "8080"),

		DB_USER:     os.Getenv("DB_USER"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     getEnv("DB_PORT", "5432"),
		DB_NAME:     os.Getenv("DB_NAME"),

		KAFKA_TOPIC:  getEnv("KAFKA_TOPIC", "shipping.events"),
		KAFKA_BROKER: os.Getenv("KAFKA_BROKER"),

		SHOPIFY_API_KEY:     os.Getenv("SHOPIFY_API_KEY"),
		SHOPIFY_API_SECRET:  os.Getenv("SHOPIFY_API_SECRET"),
		SHOPIFY_APP_URL:     os.Getenv("SHOPIFY_APP_URL"),
		SHOPIFY_API_VERSION: os.Getenv("SHOPIFY_API_VERSION"),
	}
}

// GetDBURL formats the config into a PostgreSQL connection string.
func (c *Config) GetDBURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DB_USER, c.DB_PASSWORD, c.DB_HOST, c.DB_PORT, c.DB_NAME)
}

// CarrierCallbackURL is the rate callback registered with each shop.
func (c *Config) CarrierCallbackURL(shopDomain string) string {
	return fmt.Sprintf("%s/api/shipping-rates?shop=%s", c.SHOPIFY_APP_URL, shopDomain)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
