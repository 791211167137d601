package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_HappyPath(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	tempConfigsSubDir := filepath.Join(tempDir, "configs")
	err = os.Mkdir(tempConfigsSubDir, 0755)
	require.NoError(t, err)

	testAppName := "TestApp"
	testPort := 9090
	testLogLevel := "debug"
	testEmail := "crawler@example.com"
	testPassword := "secret"

	envContent := fmt.Sprintf(
		"APP_NAME=%s\nSERVER_PORT=%d\nLOG_LEVEL=%s\nPOS_EMAIL=%s\nPOS_PASSWORD=%s\n",
		testAppName, testPort, testLogLevel, testEmail, testPassword,
	)
	envFilePath := filepath.Join(tempConfigsSubDir, "test_happy.env")
	err = os.WriteFile(envFilePath, []byte(envContent), 0644)
	require.NoError(t, err)

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	cfg, err := LoadConfig("test_happy")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, testAppName, cfg.Application.Name)
	assert.Equal(t, testPort, cfg.Server.Port)
	assert.Equal(t, testLogLevel, cfg.Logging.Level)
	assert.Equal(t, testEmail, cfg.POS.Email)

	assert.Equal(t, "development", cfg.Application.Env)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "https://posapi.ipos.vn/api", cfg.POS.BaseURL)
	assert.Equal(t, 18, cfg.Crawl.AnchorDay)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "", cfg.Kafka.FlagEventTopic)

	cfgWithName, err := LoadConfigWithName("configs/test_happy") // Viper will look for configs/test_happy.env
	require.NoError(t, err)
	require.NotNil(t, cfgWithName)
	assert.Equal(t, testAppName, cfgWithName.Application.Name)

	// Test LoadConfigWithNameAndType
	cfgWithNameAndType, err := LoadConfigWithNameAndType("configs/test_happy", "env")
	require.NoError(t, err)
	require.NotNil(t, cfgWithNameAndType)
	assert.Equal(t, testAppName, cfgWithNameAndType.Application.Name)
}

func TestLoadConfig_MissingCredentials(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	// No config file and no env vars: POS credentials have no defaults.
	_, err = LoadConfig("does_not_exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POS_EMAIL is required")
	assert.Contains(t, err.Error(), "POS_PASSWORD is required")
}

func TestConfig_Validate_HappyPath(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{
		Application: ApplicationConfig{Env: v.GetString("APP_ENV"), Name: v.GetString("APP_NAME")},
		Logging:     LoggingConfig{Level: v.GetString("LOG_LEVEL")},
		Server: ServerConfig{
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:     v.GetDuration("SERVER_IDLE_TIMEOUT"),
		},
		POS: POSConfig{
			BaseURL:     v.GetString("POS_BASE_URL"),
			Email:       "crawler@example.com", // credentials have no defaults
			Password:    "secret",
			AccessToken: v.GetString("POS_ACCESS_TOKEN"),
			TimezoneMs:  v.GetString("POS_CLIENT_TIMEZONE_MS"),
			Timeout:     v.GetDuration("POS_TIMEOUT"),
		},
		Crawl: CrawlConfig{
			AnchorDay:           v.GetInt("CRAWL_ANCHOR_DAY"),
			OrderSchedule:       v.GetString("CRAWL_ORDER_SCHEDULE"),
			TransactionSchedule: v.GetString("CRAWL_TRANSACTION_SCHEDULE"),
		},
		Postgres: PostgresConfig{
			URL:             v.GetString("POSTGRES_URL"),
			MaxConns:        int32(v.GetInt("POSTGRES_MAX_CONNS")),
			MinConns:        int32(v.GetInt("POSTGRES_MIN_CONNS")),
			ConnMaxLifetime: v.GetDuration("POSTGRES_MAX_CONN_LIFETIME"),
			ConnMaxIdleTime: v.GetDuration("POSTGRES_MAX_CONN_IDLE_TIME"),
		},
		MongoDB: MongoDBConfig{
			URI:             v.GetString("MONGO_URI"),
			Database:        v.GetString("MONGO_DATABASE"),
			Timeout:         v.GetDuration("MONGO_TIMEOUT"),
			MaxPoolSize:     uint64(v.GetInt("MONGO_MAX_POOL_SIZE")),
			MinPoolSize:     uint64(v.GetInt("MONGO_MIN_POOL_SIZE")),
			MaxConnIdleTime: v.GetDuration("MONGO_MAX_CONN_IDLE_TIME"),
		},
		Kafka: KafkaConfig{
			Brokers:           v.GetString("KAFKA_BROKERS"),
			FlagEventTopic:    v.GetString("KAFKA_FLAG_EVENT_TOPIC"),
			NumPartitions:     v.GetInt("KAFKA_NUM_PARTITIONS"),
			ReplicationFactor: v.GetInt("KAFKA_REPLICATION_FACTOR"),
			WriteTimeout:      v.GetDuration("KAFKA_WRITE_TIMEOUT"),
		},
	}
	err := cfg.validate()
	assert.NoError(t, err, "Default config with credentials should be valid")
}

func TestConfig_Validate_AnchorDayBounds(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	for _, day := range []int{0, 29, -3} {
		cfg := &Config{}
		cfg.Server = ServerConfig{Port: 8080, ShutdownTimeout: time.Second, ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second}
		cfg.POS = POSConfig{BaseURL: "https://example.com", Email: "a@b.c", Password: "x", Timeout: time.Second}
		cfg.Crawl = CrawlConfig{AnchorDay: day, OrderSchedule: "@daily", TransactionSchedule: "@daily"}
		cfg.Postgres = PostgresConfig{URL: "postgres://x", MaxConns: 1, MinConns: 1, ConnMaxLifetime: time.Second, ConnMaxIdleTime: time.Second}
		cfg.MongoDB = MongoDBConfig{URI: "mongodb://x", Database: "d", Timeout: time.Second, MaxPoolSize: 1, MinPoolSize: 1, MaxConnIdleTime: time.Second}

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CRAWL_ANCHOR_DAY")
	}
}
