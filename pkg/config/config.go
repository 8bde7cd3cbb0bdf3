// Package config loads fleet configuration from the environment, in the
// shape and style of the teacher's configs/config.go.
package config

import (
	"os"
	"strconv"
)

// Config holds the settings shared by cmd/scheduler, cmd/worker, and
// cmd/api: storage backends, coordination, and default heuristic choice.
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost string
	RedisPort string

	EtcdEndpoints     []string
	LeaderElectionTTL int

	S3Bucket   string
	S3Region   string
	S3Endpoint string

	APIPort string

	DefaultHeuristic  string
	DefaultCores      int
	WorkerConcurrency int
	QueuePartitions   int

	JWTSecret   string
	JWTIssuer   string
	AuthEnabled bool
}

// LoadConfig reads configuration from the environment, falling back to
// development defaults.
func LoadConfig() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "pafsched"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "pafsched"),

		RedisHost: getEnv("REDIS_HOST", "localhost"),
		RedisPort: getEnv("REDIS_PORT", "6379"),

		EtcdEndpoints:     []string{getEnv("ETCD_ENDPOINTS", "localhost:2379")},
		LeaderElectionTTL: getEnvAsInt("LEADER_ELECTION_TTL", 15),

		S3Bucket:   getEnv("S3_BUCKET", "pafsched-runs"),
		S3Region:   getEnv("S3_REGION", "us-east-1"),
		S3Endpoint: getEnv("S3_ENDPOINT", ""),

		APIPort: getEnv("API_PORT", "8080"),

		DefaultHeuristic:  getEnv("DEFAULT_HEURISTIC", "feasint"),
		DefaultCores:      getEnvAsInt("DEFAULT_CORES", 4),
		WorkerConcurrency: getEnvAsInt("WORKER_CONCURRENCY", 4),
		QueuePartitions:   getEnvAsInt("QUEUE_PARTITIONS", 4),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTIssuer:   getEnv("JWT_ISSUER", "pafsched"),
		AuthEnabled: getEnvAsBool("AUTH_ENABLED", false),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	return valueStr == "true" || valueStr == "1" || valueStr == "yes"
}
