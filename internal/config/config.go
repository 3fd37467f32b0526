package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingCredentials is returned by Validate when the WooCommerce consumer
// key or secret is not configured.
var ErrMissingCredentials = errors.New("woocommerce consumer key and secret are required")

type Config struct {
	// WooCommerce
	StoreURL       string
	APIPath        string
	ConsumerKey    string
	ConsumerSecret string
	RequestTimeout time.Duration
	WebhookSecret  string

	// Sync
	SyncConcurrency int
	SyncDelay       time.Duration

	// Database (optional, run history only)
	DatabaseURL string

	// Kafka
	KafkaBrokers       string
	KafkaTopic         string
	KafkaGroupID       string
	KafkaBatchSize     int
	KafkaFlushInterval time.Duration

	// API Configuration
	APIPort string
	APIHost string

	// Environment
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		StoreURL:           getEnv("WOOCOMMERCE_URL", "http://localhost:8080"),
		APIPath:            getEnv("WOOCOMMERCE_API_PATH", "/wp-json/wc/v3"),
		ConsumerKey:        getEnv("WOOCOMMERCE_CONSUMER_KEY", ""),
		ConsumerSecret:     getEnv("WOOCOMMERCE_CONSUMER_SECRET", ""),
		RequestTimeout:     time.Duration(getEnvAsInt("WOOCOMMERCE_TIMEOUT_SECONDS", 30)) * time.Second,
		WebhookSecret:      getEnv("WOOCOMMERCE_WEBHOOK_SECRET", ""),
		SyncConcurrency:    getEnvAsInt("SYNC_CONCURRENCY", 3),
		SyncDelay:          time.Duration(getEnvAsInt("SYNC_DELAY_MS", 1000)) * time.Millisecond,
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		KafkaBrokers:       getEnv("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:         getEnv("KAFKA_TOPIC", "product-sync"),
		KafkaGroupID:       getEnv("KAFKA_GROUP_ID", "woosync-worker"),
		KafkaBatchSize:     getEnvAsInt("KAFKA_BATCH_SIZE", 50),
		KafkaFlushInterval: time.Duration(getEnvAsInt("KAFKA_FLUSH_INTERVAL_MS", 2000)) * time.Millisecond,
		APIPort:            getEnv("API_PORT", "8080"),
		APIHost:            getEnv("API_HOST", "0.0.0.0"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}, nil
}

// Validate reports configuration that must stop the process before any
// request is sent to the store.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ConsumerKey) == "" || strings.TrimSpace(c.ConsumerSecret) == "" {
		return ErrMissingCredentials
	}
	if c.StoreURL == "" {
		return errors.New("WOOCOMMERCE_URL is required")
	}
	if c.SyncConcurrency < 1 {
		return fmt.Errorf("SYNC_CONCURRENCY must be positive, got %d", c.SyncConcurrency)
	}
	if c.SyncDelay < 0 {
		return fmt.Errorf("SYNC_DELAY_MS must not be negative, got %s", c.SyncDelay)
	}
	return nil
}

// BaseURL is the REST API root, e.g. https://shop.example.com/wp-json/wc/v3.
func (c *Config) BaseURL() string {
	return strings.TrimRight(c.StoreURL, "/") + "/" + strings.Trim(c.APIPath, "/")
}

// Brokers splits KAFKA_BROKERS on commas.
func (c *Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
