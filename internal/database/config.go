package database

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MigrationsDir string

	RedisURL      string
	RedisPassword string
	RedisDB       int

	HTTPAddr string
}

// LoadConfig reads .env when present, falling back to the environment.
func LoadConfig() (*Config, error) {
	// A missing .env is fine in containerized deployments.
	_ = godotenv.Load()

	return &Config{
		Host:          getEnv("DB_HOST", "localhost"),
		Port:          getEnv("DB_PORT", "5432"),
		User:          getEnv("DB_USER", "crm_user"),
		Password:      getEnv("DB_PASSWORD", "crm_password"),
		DBName:        getEnv("DB_NAME", "crm_db"),
		SSLMode:       getEnv("DB_SSLMODE", "disable"),
		MigrationsDir: getEnv("DB_MIGRATIONS_DIR", "./internal/database/migrations"),
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
	}, nil
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
