package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Backend  BackendConfig
	Gateway  GatewayConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	// Path of the local sqlite file holding the durable cart records.
	Path string
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Brokers  []string
	Topic    string
	Enabled  bool
	MockMode bool
}

// BackendConfig points at the three collaborators the orchestrator drives.
type BackendConfig struct {
	CatalogURL string
	OrderURL   string
	PaymentURL string
}

type GatewayConfig struct {
	// KeyID identifies the merchant to the hosted payment widget. When it
	// is empty the gateway counts as unavailable and checkout takes the
	// synchronous fallback path.
	KeyID    string
	Currency string
	// CheckoutTTL bounds how long a session may sit awaiting the widget
	// before it is failed out.
	CheckoutTTL time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Path: getEnv("CART_DB_PATH", "storefront.db"),
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: KafkaConfig{
			Brokers:  []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:    getEnv("KAFKA_TOPIC_CHECKOUT", "checkout-events"),
			Enabled:  getEnvBool("KAFKA_ENABLED", true),
			MockMode: getEnvBool("KAFKA_MOCK_MODE", false),
		},
		Backend: BackendConfig{
			CatalogURL: getEnv("CATALOG_SERVICE_URL", "http://localhost:8081/api"),
			OrderURL:   getEnv("ORDER_SERVICE_URL", "http://localhost:8081/api"),
			PaymentURL: getEnv("PAYMENT_SERVICE_URL", "http://localhost:8081/api"),
		},
		Gateway: GatewayConfig{
			KeyID:       getEnv("GATEWAY_KEY_ID", ""),
			Currency:    getEnv("GATEWAY_CURRENCY", "INR"),
			CheckoutTTL: time.Duration(getEnvInt("CHECKOUT_TTL_MINUTES", 10)) * time.Minute,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
