package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env                  string
	HTTPAddr             string
	MongoURI             string
	MongoDB              string
	KafkaBrokers         []string
	KafkaTopicPrefix     string
	RedisAddr            string
	RedisPassword        string
	AvailabilityBaseURL  string
	AvailabilityCacheTTL time.Duration
	AvailabilityTimeout  time.Duration
	StorageMode          string
	EventDelivery        string
	OutboxInterval       time.Duration
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:                 getEnv("APP_ENV", "dev"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		MongoURI:            os.Getenv("MONGO_URI"),
		MongoDB:             getEnv("MONGO_DB", "reservations"),
		KafkaTopicPrefix:    getEnv("KAFKA_TOPIC_PREFIX", ""),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		AvailabilityBaseURL: getEnv("AVAILABILITY_BASE_URL", "http://localhost:8081"),
		StorageMode:         strings.ToLower(getEnv("STORAGE_MODE", "memory")),
		EventDelivery:       strings.ToLower(getEnv("EVENT_DELIVERY", "direct")),
	}
	brokers := getEnv("KAFKA_BROKERS", "")
	if brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	cacheTTL, err := parseDurationEnv("AVAILABILITY_CACHE_TTL", 30*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.AvailabilityCacheTTL = cacheTTL

	timeout, err := parseDurationEnv("AVAILABILITY_TIMEOUT", 5*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.AvailabilityTimeout = timeout

	outboxInterval, err := parseDurationEnv("OUTBOX_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	cfg.OutboxInterval = outboxInterval

	switch cfg.StorageMode {
	case "memory", "mongo":
	default:
		return Config{}, fmt.Errorf("invalid STORAGE_MODE: %q", cfg.StorageMode)
	}
	if cfg.StorageMode == "mongo" && cfg.MongoURI == "" {
		return Config{}, fmt.Errorf("MONGO_URI is required when STORAGE_MODE=mongo")
	}
	switch cfg.EventDelivery {
	case "direct", "outbox":
	default:
		return Config{}, fmt.Errorf("invalid EVENT_DELIVERY: %q", cfg.EventDelivery)
	}
	if cfg.EventDelivery == "outbox" && cfg.StorageMode != "mongo" {
		return Config{}, fmt.Errorf("EVENT_DELIVERY=outbox requires STORAGE_MODE=mongo")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}
