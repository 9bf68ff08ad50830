// Package config carries the runtime configuration: backend selection plus
// the settings of every collaborator the library can be wired to.
package config

import (
	"fmt"

	pkgconfig "github.com/Geeks-Solutions/exmedias/pkg/config"
)

// Backend selection values.
const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Storage backend selection values.
const (
	ObjectStoreS3     = "s3"
	ObjectStoreMemory = "memory"
)

// Config holds all configuration for the media library.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"EXMEDIAS_HTTP_PORT" envDefault:"8011"`

	// Metadata backend: postgres or mongo.
	Backend string `env:"STORAGE_BACKEND" envDefault:"postgres"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"exmedias"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"exmedias_secret"`
	PostgresDB   string `env:"EXMEDIAS_DB_NAME" envDefault:"exmedias_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// MongoDB
	MongoURI string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB  string `env:"EXMEDIAS_MONGO_DB" envDefault:"exmedias"`

	// Object storage: s3 or memory.
	ObjectStore  string `env:"OBJECT_STORE" envDefault:"memory"`
	S3Endpoint   string `env:"S3_ENDPOINT" envDefault:"http://localhost:9000"`
	S3Region     string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket     string `env:"S3_BUCKET" envDefault:"exmedias"`
	S3AccessKey  string `env:"S3_ACCESS_KEY" envDefault:""`
	S3SecretKey  string `env:"S3_SECRET_KEY" envDefault:""`
	AssetBaseURL string `env:"ASSET_BASE_URL" envDefault:"http://localhost:8011"`

	// Kafka. Empty brokers disable eventing entirely.
	KafkaBrokers       []string `env:"KAFKA_BROKERS" envDefault:"" envSeparator:","`
	KafkaConsumerGroup string   `env:"KAFKA_CONSUMER_GROUP" envDefault:"exmedias"`

	// Redis, used for consumer idempotency when kafka is enabled.
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// YouTube metadata lookups. Empty key disables enrichment.
	YouTubeAPIKey  string `env:"YOUTUBE_API_KEY" envDefault:""`
	YouTubeBaseURL string `env:"YOUTUBE_BASE_URL" envDefault:""`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load exmedias config: %w", err)
	}
	if cfg.Backend != BackendPostgres && cfg.Backend != BackendMongo {
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if cfg.ObjectStore != ObjectStoreS3 && cfg.ObjectStore != ObjectStoreMemory {
		return nil, fmt.Errorf("unknown object store %q", cfg.ObjectStore)
	}
	return cfg, nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}

// KafkaEnabled reports whether event production/consumption is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0 && c.KafkaBrokers[0] != ""
}
