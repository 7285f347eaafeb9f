package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	MongoURI          string
	MongoDB           string
	MongoTransactions bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Judge0URL          string
	Judge0APIKey       string
	Judge0APIHost      string
	Judge0PollInterval time.Duration
	Judge0Deadline     time.Duration
	Judge0CaseDeadline time.Duration
	Judge0CPUTimeLimit float64
	Judge0MemoryLimit  int

	SubmissionDeadline time.Duration
	SubmissionLockTTL  time.Duration

	NotificationQueueName   string
	NotificationMaxAttempts int

	LogLevel  string
	LogFormat string
	LogOutput string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:           getEnv("API_PORT", "8080"),
		JWTKey:            []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:            time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
		MongoDB:           getEnv("MONGO_DB", "codecamp"),
		MongoTransactions: getEnvAsBool("MONGO_TRANSACTIONS", true),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),

		Judge0URL:          getEnv("JUDGE0_URL", "https://judge0-ce.p.rapidapi.com"),
		Judge0APIKey:       getEnv("JUDGE0_API_KEY", ""),
		Judge0APIHost:      getEnv("JUDGE0_API_HOST", "judge0-ce.p.rapidapi.com"),
		Judge0PollInterval: getEnvAsDuration("JUDGE0_POLL_INTERVAL", 2*time.Second),
		Judge0Deadline:     getEnvAsDuration("JUDGE0_DEADLINE", 20*time.Second),
		Judge0CaseDeadline: getEnvAsDuration("JUDGE0_CASE_DEADLINE", 20*time.Second),
		Judge0CPUTimeLimit: getEnvAsFloat("JUDGE0_CPU_TIME_LIMIT", 2),
		Judge0MemoryLimit:  getEnvAsInt("JUDGE0_MEMORY_LIMIT_KB", 128000),

		SubmissionDeadline: getEnvAsDuration("SUBMISSION_DEADLINE", 90*time.Second),
		SubmissionLockTTL:  getEnvAsDuration("SUBMISSION_LOCK_TTL", 2*time.Minute),

		NotificationQueueName:   getEnv("NOTIFICATION_QUEUE_NAME", "notification_tasks"),
		NotificationMaxAttempts: getEnvAsInt("NOTIFICATION_MAX_ATTEMPTS", 3),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogOutput: getEnv("LOG_OUTPUT", "stdout"),
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

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration strings ("1500ms", "2s").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return fallback
}
