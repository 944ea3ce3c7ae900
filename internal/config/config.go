// Package config collects every runtime knob from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port string

	// StoreBackend is "postgres" or "memory". The memory backend keeps
	// everything in-process and needs no database.
	StoreBackend string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// KafkaBrokers empty disables the event mirror.
	KafkaBrokers string

	JWTSecret string
	TokenTTL  time.Duration

	// AdminPIN seeds the initial admin user on an empty install.
	AdminPIN string
}

func Load(logger *logrus.Logger) Config {
	if err := godotenv.Load(".env"); err == nil {
		logger.Info("Loaded .env file")
	}

	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		StoreBackend: getEnv("STORE_BACKEND", "postgres"),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "alfajor"),
		DBPassword:   getEnv("DB_PASSWORD", "alfajor"),
		DBName:       getEnv("DB_NAME", "alfajor"),
		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),
		JWTSecret:    getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:     getDurationEnv(logger, "TOKEN_TTL", 12*time.Hour),
		AdminPIN:     getEnv("ADMIN_PIN", "0000"),
	}
	return cfg
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(logger *logrus.Logger, key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"key":   key,
			"value": value,
		}).Warn("Invalid duration, using default")
		return fallback
	}
	return d
}
