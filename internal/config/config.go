// Package config provides configuration structures and validation for the application.
// It handles environment-based configuration for all major components including
// the upstream POS API, database connections, crawl scheduling, and the dashboard
// HTTP server.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration with settings for all components.
// Each field represents a major subsystem's configuration (e.g., POS client, databases,
// crawl jobs) and is validated during application startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	POS         POSConfig
	Crawl       CrawlConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Kafka       KafkaConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// POSConfig contains upstream POS API client configuration
type POSConfig struct {
	BaseURL     string        // Upstream API base URL
	Email       string        // Login email for the crawl account
	Password    string        // Login password for the crawl account
	AccessToken string        // Static platform access token sent on every request
	TimezoneMs  string        // Client timezone offset in milliseconds, sent as a header
	Timeout     time.Duration // HTTP client timeout
}

// CrawlConfig contains batch crawl and reconciliation configuration
type CrawlConfig struct {
	AnchorDay           int    // Day of month the billing cycle is anchored on
	OrderSchedule       string // Cron spec for the order crawl job
	TransactionSchedule string // Cron spec for the transaction crawl job
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration for the raw crawl archive
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// KafkaConfig contains Kafka configuration for flag-event publishing.
// FlagEventTopic may be empty, which disables the producer entirely.
type KafkaConfig struct {
	Brokers           string
	FlagEventTopic    string
	NumPartitions     int // Number of partitions for topic creation
	ReplicationFactor int // Replication factor for topic creation
	WriteTimeout      time.Duration
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate POS config
	if c.POS.BaseURL == "" {
		validationErrors = append(validationErrors, "POS_BASE_URL is required")
	}
	if c.POS.Email == "" {
		validationErrors = append(validationErrors, "POS_EMAIL is required")
	}
	if c.POS.Password == "" {
		validationErrors = append(validationErrors, "POS_PASSWORD is required")
	}
	if c.POS.Timeout <= 0 {
		validationErrors = append(validationErrors, "POS_TIMEOUT must be greater than 0")
	}

	// Validate Crawl config
	if c.Crawl.AnchorDay < 1 || c.Crawl.AnchorDay > 28 {
		validationErrors = append(validationErrors, "CRAWL_ANCHOR_DAY must be between 1 and 28")
	}
	if c.Crawl.OrderSchedule == "" {
		validationErrors = append(validationErrors, "CRAWL_ORDER_SCHEDULE is required")
	}
	if c.Crawl.TransactionSchedule == "" {
		validationErrors = append(validationErrors, "CRAWL_TRANSACTION_SCHEDULE is required")
	}

	// Validate PostgreSQL config
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate MongoDB config
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MinPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate Kafka config. The flag-event topic is optional; the rest only
	// matters when the topic is set.
	if c.Kafka.FlagEventTopic != "" {
		if len(c.Kafka.Brokers) == 0 {
			validationErrors = append(validationErrors, "KAFKA_BROKERS is required when KAFKA_FLAG_EVENT_TOPIC is set")
		}
		if c.Kafka.WriteTimeout <= 0 {
			validationErrors = append(validationErrors, "KAFKA_WRITE_TIMEOUT must be greater than 0")
		}
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
