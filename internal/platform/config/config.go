package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration so main stays lean.
type Server struct {
	Addr        string
	Environment string

	JWTSigningKey string
	TokenTTL      time.Duration

	Surreal SurrealConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	S3      S3Config
}

// SurrealConfig points at the SurrealDB backend holding every collection.
type SurrealConfig struct {
	Endpoint  string
	Namespace string
	Database  string
	Username  string
	Password  string
}

// RedisConfig configures the taxonomy name cache. Empty URL disables caching.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
}

// KafkaConfig configures the audit event sink. Empty brokers fall back to the
// log sink.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// S3Config configures the uploaded-file store. Empty bucket selects the
// discard store.
type S3Config struct {
	Bucket string
	Region string
}

// IsProduction gates stack traces in error responses.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:          getenv("PORTAL_ADDR", ":8080"),
		Environment:   getenv("PORTAL_ENV", "development"),
		JWTSigningKey: getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		TokenTTL:      getduration("TOKEN_TTL", 24*time.Hour),
		Surreal: SurrealConfig{
			Endpoint:  getenv("SURREAL_ENDPOINT", "ws://localhost:8000"),
			Namespace: getenv("SURREAL_NAMESPACE", "vecinal"),
			Database:  getenv("SURREAL_DATABASE", "portal"),
			Username:  os.Getenv("SURREAL_USERNAME"),
			Password:  os.Getenv("SURREAL_PASSWORD"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			CacheTTL:     getduration("LOCATION_CACHE_TTL", time.Hour),
		},
		Kafka: KafkaConfig{
			Topic: getenv("AUDIT_TOPIC", "portal.audit"),
		},
		S3: S3Config{
			Bucket: os.Getenv("UPLOADS_BUCKET"),
			Region: getenv("AWS_REGION", "us-east-1"),
		},
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
