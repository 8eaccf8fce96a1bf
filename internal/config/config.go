package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // containers ship without zoneinfo

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// Payment gateway configuration
	Payment PaymentConfig

	// Public URLs used for redirects and provider callbacks
	URLs URLConfig

	// Outbound email configuration
	Email EmailConfig

	// Redis configuration (email queue)
	Redis RedisConfig

	// RabbitMQ configuration (domain events)
	RabbitMQ RabbitMQConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// CORS configuration
	CORS CORSConfig

	// Security configuration
	Security SecurityConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
	Timezone    string // IANA name used to interpret booking dates
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	MigrationsPath     string
	RunMigrations      bool
}

// JWTConfig holds session token configuration
type JWTConfig struct {
	Secret       string
	Expiry       time.Duration
	CookieName   string
	CookieSecure bool
}

// PaymentConfig holds MercadoPago configuration
type PaymentConfig struct {
	AccessToken      string
	APIBaseURL       string
	Sandbox          bool
	Timeout          time.Duration
	BreakerThreshold int64
	Currency         string
	Installments     int
	IntentSecret     string // signs the external reference round-tripped through the provider
}

// URLConfig holds the public base URLs of the frontend and of this service
type URLConfig struct {
	Frontend string
	Backend  string
}

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost      string
	SMTPPort      string
	SMTPUser      string
	SMTPPassword  string
	FromAddress   string
	FromName      string
	SystemMailbox string // receives company applications
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RabbitMQConfig holds broker configuration
type RabbitMQConfig struct {
	URL string
}

// RateLimitConfig holds per-client rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	BcryptCost             int
	PaymentEventsRetention time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Timezone:    getEnv("TIMEZONE", "America/Bogota"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
			MigrationsPath:     getEnv("MIGRATIONS_PATH", "migrations"),
			RunMigrations:      getEnvAsBool("RUN_MIGRATIONS", true),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", ""),
			Expiry:       getEnvAsDuration("JWT_EXPIRY", 24*time.Hour),
			CookieName:   getEnv("AUTH_COOKIE_NAME", "auth_token"),
			CookieSecure: getEnvAsBool("AUTH_COOKIE_SECURE", true),
		},
		Payment: PaymentConfig{
			AccessToken:      getEnv("MERCADOPAGO_ACCESS_TOKEN", ""),
			APIBaseURL:       getEnv("MERCADOPAGO_API_URL", "https://api.mercadopago.com"),
			Sandbox:          getEnvAsBool("MERCADOPAGO_SANDBOX", true),
			Timeout:          getEnvAsDuration("MERCADOPAGO_TIMEOUT", 3*time.Second),
			BreakerThreshold: int64(getEnvAsInt("MERCADOPAGO_BREAKER_THRESHOLD", 5)),
			Currency:         getEnv("PAYMENT_CURRENCY", "COP"),
			Installments:     getEnvAsInt("PAYMENT_INSTALLMENTS", 3),
			IntentSecret:     getEnv("INTENT_SIGNING_SECRET", ""),
		},
		URLs: URLConfig{
			Frontend: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
			Backend:  strings.TrimRight(getEnv("THIS_URL", "http://localhost:8080"), "/"),
		},
		Email: EmailConfig{
			SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:      getEnv("SMTP_PORT", "587"),
			SMTPUser:      getEnv("SMTP_USER", ""),
			SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
			FromAddress:   getEnv("EMAIL_FROM", "no-reply@coworkhub.co"),
			FromName:      getEnv("EMAIL_FROM_NAME", "CoworkHub"),
			SystemMailbox: getEnv("SYSTEM_MAILBOX", "admin@coworkhub.co"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQConfig{
			URL: getEnv("RABBITMQ_URL", ""),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 5),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Security: SecurityConfig{
			BcryptCost:             getEnvAsInt("BCRYPT_COST", 12),
			PaymentEventsRetention: getEnvAsDuration("PAYMENT_EVENTS_RETENTION", 90*24*time.Hour),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Payment.IntentSecret == "" {
		return fmt.Errorf("INTENT_SIGNING_SECRET is required")
	}

	if c.Payment.IntentSecret == c.JWT.Secret {
		return fmt.Errorf("INTENT_SIGNING_SECRET must differ from JWT_SECRET")
	}

	if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Server.Timezone, err)
	}

	if c.Server.Environment == "production" {
		if c.Payment.AccessToken == "" {
			return fmt.Errorf("MERCADOPAGO_ACCESS_TOKEN is required in production")
		}
		if c.Payment.Sandbox {
			return fmt.Errorf("MERCADOPAGO_SANDBOX must be false in production")
		}
	}

	return nil
}

// Location returns the timezone booking dates are interpreted in
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Invalid float value for %s, using default: %g", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("3s", "24h") or plain seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if seconds, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(seconds) * time.Second
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid duration value for %s, using default: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
