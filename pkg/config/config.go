// Package config loads and validates the term search configuration from YAML
// files with environment-variable overrides. It provides typed structs for
// every subsystem (Server, Storage, Catalog, Kafka, Redis, Postgres, etc.).
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Logging  LoggingConfig  `yaml:"logging"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings for the invoke endpoint.
type ServerConfig struct {
	Port              int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout       time.Duration `yaml:"readTimeout"`
	WriteTimeout      time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdownTimeout"`
	InvocationTimeout time.Duration `yaml:"invocationTimeout"`
	MaxEventBytes     int64         `yaml:"maxEventBytes" validate:"gt=0"`
}

// StorageConfig holds S3 client settings and the storage-side resilience
// policy. Retry belongs to the storage client, never to the matching core.
type StorageConfig struct {
	Region         string               `yaml:"region" validate:"required"`
	Endpoint       string               `yaml:"endpoint" validate:"omitempty,url"`
	UsePathStyle   bool                 `yaml:"usePathStyle"`
	StorageClass   string               `yaml:"storageClass" validate:"required,oneof=STANDARD STANDARD_IA ONEZONE_IA INTELLIGENT_TIERING GLACIER GLACIER_IR DEEP_ARCHIVE REDUCED_REDUNDANCY"`
	RetryAttempts  int                  `yaml:"retryAttempts" validate:"min=1,max=10"`
	RetryBaseDelay time.Duration        `yaml:"retryBaseDelay"`
	Breaker        CircuitBreakerConfig `yaml:"breaker"`
}

// CircuitBreakerConfig mirrors resilience.CircuitBreakerConfig in YAML form.
type CircuitBreakerConfig struct {
	FailureThreshold int           `yaml:"failureThreshold" validate:"min=1"`
	ResetTimeout     time.Duration `yaml:"resetTimeout"`
}

// CatalogConfig selects where the term catalog comes from. With RedisKey set
// the catalog is read from Redis and refreshed every RefreshInterval; File
// (or the built-in default) is the fallback.
type CatalogConfig struct {
	File            string        `yaml:"file"`
	RedisKey        string        `yaml:"redisKey"`
	RefreshInterval time.Duration `yaml:"refreshInterval"`
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Enabled       bool        `yaml:"enabled"`
	Brokers       []string    `yaml:"brokers" validate:"required_if=Enabled true,dive,hostname_port"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
	// A message whose handler still fails after HandlerRetries attempts
	// stops the consumer uncommitted.
	HandlerRetries    int           `yaml:"handlerRetries" validate:"min=1,max=10"`
	HandlerRetryDelay time.Duration `yaml:"handlerRetryDelay"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	Invocations string `yaml:"invocations"`
	Results     string `yaml:"results"`
	DeadLetter  string `yaml:"deadLetter"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"poolSize"`
}

// PostgresConfig holds connection parameters for the hit ledger.
type PostgresConfig struct {
	Enabled         bool          `yaml:"enabled"`
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

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// TracingConfig toggles span logging.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port" validate:"min=1,max=65535"`
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

var validate = newValidator()

// newValidator reports fields by their YAML names so errors point at the
// config file keys.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate rejects configurations the services cannot start with. Field
// rules live in the validate struct tags; cross-section rules are below.
func (c *Config) Validate() error {
	var errs []error
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("invalid config: %w", err)
		}
		for _, fe := range fieldErrs {
			rule := fe.Tag()
			if fe.Param() != "" {
				rule += "=" + fe.Param()
			}
			errs = append(errs, fmt.Errorf("%s: failed %s (got %v)", strings.TrimPrefix(fe.Namespace(), "Config."), rule, fe.Value()))
		}
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("kafka.brokers is required when kafka is enabled"))
		}
		if c.Kafka.Topics.Invocations == "" || c.Kafka.Topics.Results == "" {
			errs = append(errs, errors.New("kafka.topics.invocations and kafka.topics.results are required"))
		}
	}
	if c.Catalog.RedisKey != "" && !c.Redis.Enabled {
		errs = append(errs, errors.New("catalog.redisKey requires redis.enabled"))
	}
	if c.Metrics.Enabled && c.Metrics.Port == c.Server.Port {
		errs = append(errs, fmt.Errorf("metrics.port must differ from server.port (%d)", c.Server.Port))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// defaultConfig returns a Config with defaults suitable for local development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8080,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			ShutdownTimeout:   15 * time.Second,
			InvocationTimeout: 60 * time.Second,
			MaxEventBytes:     1 << 20,
		},
		Storage: StorageConfig{
			Region:         "us-east-2",
			StorageClass:   "GLACIER_IR",
			RetryAttempts:  3,
			RetryBaseDelay: 200 * time.Millisecond,
			Breaker: CircuitBreakerConfig{
				FailureThreshold: 5,
				ResetTimeout:     30 * time.Second,
			},
		},
		Catalog: CatalogConfig{
			RefreshInterval: time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "covenant-term-search",
			Topics: KafkaTopics{
				Invocations: "ocr.term-search.invocations",
				Results:     "ocr.term-search.results",
				DeadLetter:  "ocr.term-search.dead-letter",
			},
			HandlerRetries:    3,
			HandlerRetryDelay: time.Second,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "covenants",
			User:            "covenants",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
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

// applyEnvOverrides reads TS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TS_STORAGE_REGION"); v != "" {
		cfg.Storage.Region = v
	}
	if v := os.Getenv("TS_STORAGE_ENDPOINT"); v != "" {
		cfg.Storage.Endpoint = v
	}
	if v := os.Getenv("TS_STORAGE_PATH_STYLE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Storage.UsePathStyle = b
		}
	}
	if v := os.Getenv("TS_STORAGE_CLASS"); v != "" {
		cfg.Storage.StorageClass = v
	}
	if v := os.Getenv("TS_CATALOG_FILE"); v != "" {
		cfg.Catalog.File = v
	}
	if v := os.Getenv("TS_CATALOG_REDIS_KEY"); v != "" {
		cfg.Catalog.RedisKey = v
	}
	if v := os.Getenv("TS_KAFKA_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Kafka.Enabled = b
		}
	}
	if v := os.Getenv("TS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("TS_REDIS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Redis.Enabled = b
		}
	}
	if v := os.Getenv("TS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("TS_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("TS_POSTGRES_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Postgres.Enabled = b
		}
	}
	if v := os.Getenv("TS_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("TS_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("TS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TS_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
