package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	RedisHost         string
	RedisPort         string
	SessionSecret     string
	GinMode           string
	ReferenceTimezone string
	EvidenceDir       string
	ListingCacheTTL   time.Duration
	ListingCacheSize  int
}

func Load() *Config {
	return &Config{
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBUser:            getEnv("DB_USER", "rotina"),
		DBPassword:        getEnv("DB_PASSWORD", "rotina"),
		DBName:            getEnv("DB_NAME", "rotina"),
		RedisHost:         getEnv("REDIS_HOST", "localhost"),
		RedisPort:         getEnv("REDIS_PORT", "6379"),
		SessionSecret:     getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:           getEnv("GIN_MODE", "debug"),
		ReferenceTimezone: getEnv("REFERENCE_TIMEZONE", "America/Sao_Paulo"),
		EvidenceDir:       getEnv("EVIDENCE_DIR", "./data/evidences"),
		ListingCacheTTL:   getEnvDuration("LISTING_CACHE_TTL", 30*time.Second),
		ListingCacheSize:  getEnvInt("LISTING_CACHE_SIZE", 512),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
