package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Database struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string
	}
	RabbitMQ struct {
		Host     string
		Port     int
		User     string
		Password string
		Exchange string
	}
	HTTP struct {
		Port int
	}
	Auth struct {
		JWTSecret string
	}
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "dispatch_user")
	cfg.Database.Password = getEnv("DB_PASSWORD", "dispatch_pass")
	cfg.Database.Name = getEnv("DB_NAME", "dispatch_db")

	cfg.RabbitMQ.Host = getEnv("RABBITMQ_HOST", "localhost")
	cfg.RabbitMQ.Port = getEnvInt("RABBITMQ_PORT", 5672)
	cfg.RabbitMQ.User = getEnv("RABBITMQ_USER", "guest")
	cfg.RabbitMQ.Password = getEnv("RABBITMQ_PASSWORD", "guest")
	cfg.RabbitMQ.Exchange = getEnv("RABBITMQ_EXCHANGE", "dispatch.notifications")

	cfg.HTTP.Port = getEnvInt("HTTP_PORT", 3000)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", "dev-only-secret")

	return cfg, nil
}

func (c *Config) Print() {
	fmt.Printf("Database: %s@%s:%d/%s\n", c.Database.User, c.Database.Host, c.Database.Port, c.Database.Name)
	fmt.Printf("RabbitMQ: amqp://%s@%s:%d exchange=%s\n", c.RabbitMQ.User, c.RabbitMQ.Host, c.RabbitMQ.Port, c.RabbitMQ.Exchange)
	fmt.Printf("HTTP port: %d\n", c.HTTP.Port)
}
