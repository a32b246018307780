package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds runtime settings resolved from the environment. Tunables that
// rarely change live in constants.go instead.
type Config struct {
	MetricsPort  string
	APIPort      string
	RedisAddr    string
	RedisPass    string
	BloomKey     string
	KafkaBrokers string
	KafkaTopic   string
	S3Bucket     string
	S3Region     string
	S3Prefix     string
}

// Load reads .env if present (non-fatal when missing) and resolves the
// runtime configuration.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		MetricsPort:  GetEnvOrDefault("METRICS_PORT", "9090"),
		APIPort:      GetEnvOrDefault("API_PORT", "8080"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RedisPass:    os.Getenv("REDIS_PASS"),
		BloomKey:     GetEnvOrDefault("BLOOM_KEY", "venues:seen"),
		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:   GetEnvOrDefault("KAFKA_TOPIC", "platemap.merged"),
		S3Bucket:     os.Getenv("S3_BUCKET"),
		S3Region:     os.Getenv("S3_REGION"),
		S3Prefix:     os.Getenv("S3_PREFIX"),
	}
}

// GetEnvOrDefault returns the environment variable value or a fallback.
func GetEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetEnvInt returns an integer environment variable or a fallback when the
// variable is unset or unparseable.
func GetEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
