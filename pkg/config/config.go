// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, Store, Redis, Postgres, Kafka, Parse, Analyze, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendBolt     = "bolt"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Parse    ParseConfig    `yaml:"parse"`
	Analyze  AnalyzeConfig  `yaml:"analyze"`
	Clean    CleanConfig    `yaml:"clean"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	// RateLimit caps state-changing requests per client address per
	// minute. Zero disables limiting.
	RateLimit int `yaml:"rateLimit"`
}

// StoreConfig selects and tunes the frequency store backend.
type StoreConfig struct {
	Backend      string `yaml:"backend"`
	Key          string `yaml:"key"`
	DefaultScore int64  `yaml:"defaultScore"`
	BoltPath     string `yaml:"boltPath"`
	Concurrency  int    `yaml:"concurrency"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"poolSize"`
	SeenKey  string `yaml:"seenKey"`
	// StatsTTL is how long cached /stats answers live. Zero disables the
	// cache.
	StatsTTL time.Duration `yaml:"statsTTL"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Enabled       bool        `yaml:"enabled"`
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	Documents string `yaml:"documents"`
}

// ParseConfig controls n-gram extraction for stored frequencies.
type ParseConfig struct {
	MaxPhraseLength int `yaml:"maxPhraseLength"`
	BatchSize       int `yaml:"batchSize"`
}

// AnalyzeConfig controls one-shot significance analysis.
type AnalyzeConfig struct {
	MaxPhraseLength int     `yaml:"maxPhraseLength"`
	Threshold       float64 `yaml:"threshold"`
	CommonSize      int     `yaml:"commonSize"`
	ReferencePath   string  `yaml:"referencePath"`
}

// CleanConfig controls periodic low-frequency pruning. A zero interval
// disables it.
type CleanConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// SnapshotConfig controls periodic report snapshots to PostgreSQL. A zero
// interval disables them.
type SnapshotConfig struct {
	Interval time.Duration `yaml:"interval"`
	Top      int           `yaml:"top"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a component.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendRedis, BackendPostgres, BackendBolt:
	default:
		return fmt.Errorf("store.backend %q: must be one of memory, redis, postgres, bolt", c.Store.Backend)
	}
	if c.Store.Backend == BackendBolt && c.Store.BoltPath == "" {
		return fmt.Errorf("store.boltPath is required for the bolt backend")
	}
	if c.Parse.MaxPhraseLength < 1 {
		return fmt.Errorf("parse.maxPhraseLength must be at least 1, got %d", c.Parse.MaxPhraseLength)
	}
	if c.Parse.BatchSize < 1 {
		return fmt.Errorf("parse.batchSize must be at least 1, got %d", c.Parse.BatchSize)
	}
	if c.Analyze.Threshold < 0 || c.Analyze.Threshold > 1 {
		return fmt.Errorf("analyze.threshold must be within [0, 1], got %v", c.Analyze.Threshold)
	}
	return nil
}

// defaultConfig returns a Config with defaults for local development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Store: StoreConfig{
			Backend:      BackendMemory,
			Key:          "ngrams_frequency",
			DefaultScore: 0,
			BoltPath:     "data/phrases.db",
			Concurrency:  64,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: 10,
			SeenKey:  "ngrams_documents",
			StatsTTL: 10 * time.Second,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "phrases",
			User:            "phrases",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Enabled:       false,
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "phrase-frequency-group",
			Topics: KafkaTopics{
				Documents: "text-documents",
			},
		},
		Parse: ParseConfig{
			MaxPhraseLength: 3,
			BatchSize:       1000,
		},
		Analyze: AnalyzeConfig{
			MaxPhraseLength: 3,
			Threshold:       0.5,
			CommonSize:      300,
		},
		Snapshot: SnapshotConfig{
			Top: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads PF_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PF_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PF_SERVER_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimit = n
		}
	}
	if v := os.Getenv("PF_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("PF_STORE_KEY"); v != "" {
		cfg.Store.Key = v
	}
	if v := os.Getenv("PF_STORE_BOLT_PATH"); v != "" {
		cfg.Store.BoltPath = v
	}
	if v := os.Getenv("PF_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("PF_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("PF_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("PF_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("PF_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("PF_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("PF_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("PF_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("PF_KAFKA_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Kafka.Enabled = enabled
		}
	}
	if v := os.Getenv("PF_PARSE_MAX_PHRASE_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Parse.MaxPhraseLength = n
		}
	}
	if v := os.Getenv("PF_ANALYZE_REFERENCE_PATH"); v != "" {
		cfg.Analyze.ReferencePath = v
	}
	if v := os.Getenv("PF_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PF_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
