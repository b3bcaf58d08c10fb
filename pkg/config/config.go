package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Ingest   IngestConfig
	Pipeline PipelineConfig
	Cache    CacheConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// KafkaConfig holds the utterance bus configuration
type KafkaConfig struct {
	Brokers         []string
	UtterancesTopic string
	ConsumerGroup   string
	Enabled         bool
}

// JWTConfig holds JWT configuration for the read API
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// IngestConfig holds ingestion boundary configuration
type IngestConfig struct {
	// Shared secret expected in X-Ingest-Token on the HTTP ingest path.
	Token string
}

// PipelineConfig holds aggregation pipeline configuration
type PipelineConfig struct {
	// A call is considered complete after this long without a new utterance.
	QuietPeriod time.Duration
	// Interval between aggregation sweeps.
	AggregateInterval time.Duration
	// Upper bound on any single recompute triggered by a cache miss.
	RecomputeTimeout time.Duration
}

// CacheConfig holds per-entity freshness TTLs for the read cache
type CacheConfig struct {
	TranscriptTTL  time.Duration
	CallContextTTL time.Duration
	ComplianceTTL  time.Duration
	EscalationTTL  time.Duration
	RollupTTL      time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "http://localhost:3000")},
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			Name:        getEnv("DB_NAME", "callsight"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},
		Kafka: KafkaConfig{
			Brokers:         strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			UtterancesTopic: getEnv("KAFKA_UTTERANCES_TOPIC", "utterances"),
			ConsumerGroup:   getEnv("KAFKA_CONSUMER_GROUP", "callsight"),
			Enabled:         getEnvAsBool("KAFKA_ENABLED", true),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-change-in-production"),
			Expiry: getEnvAsDuration("JWT_EXPIRY", "12h"),
		},
		Ingest: IngestConfig{
			Token: getEnv("INGEST_TOKEN", ""),
		},
		Pipeline: PipelineConfig{
			QuietPeriod:       getEnvAsDuration("PIPELINE_QUIET_PERIOD", "5m"),
			AggregateInterval: getEnvAsDuration("PIPELINE_AGGREGATE_INTERVAL", "1m"),
			RecomputeTimeout:  getEnvAsDuration("PIPELINE_RECOMPUTE_TIMEOUT", "10s"),
		},
		Cache: CacheConfig{
			TranscriptTTL:  getEnvAsDuration("CACHE_TRANSCRIPT_TTL", "5s"),
			CallContextTTL: getEnvAsDuration("CACHE_CALL_CONTEXT_TTL", "10s"),
			ComplianceTTL:  getEnvAsDuration("CACHE_COMPLIANCE_TTL", "15s"),
			EscalationTTL:  getEnvAsDuration("CACHE_ESCALATION_TTL", "10s"),
			RollupTTL:      getEnvAsDuration("CACHE_ROLLUP_TTL", "5m"),
		},
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Environment == "production" && c.JWT.Secret == "your-secret-change-in-production" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.Pipeline.QuietPeriod <= 0 {
		return fmt.Errorf("PIPELINE_QUIET_PERIOD must be positive")
	}
	if c.Pipeline.AggregateInterval <= 0 {
		return fmt.Errorf("PIPELINE_AGGREGATE_INTERVAL must be positive")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
