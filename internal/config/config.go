package config

import (
	"os"
	"strconv"
	"time"
)

// Transbank public test credentials, valid only in integration mode
const (
	webpayIntegrationCommerceCode = "597055555532"
	webpayIntegrationAPIKey       = "579B532A7440BB0C9079DED94D31EA1615BACEB56610332264630D42D0A36B1C"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Webpay   WebpayConfig
	Google   GoogleOAuthConfig
	SMTP     SMTPConfig
	App      AppConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// WebpayConfig holds Webpay gateway configuration.
// Environment is "integration" or "production"; in integration mode the
// Transbank public test credentials are filled in when none are configured.
type WebpayConfig struct {
	Environment  string
	CommerceCode string
	APIKey       string
	Timeout      time.Duration
}

// GoogleOAuthConfig holds the Google identity provider credentials
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
}

// SMTPConfig holds the receipt mailer configuration
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Timeout  time.Duration
}

// AppConfig holds application-level settings
type AppConfig struct {
	URL                  string
	MaxLinkAmount        int
	SessionEncryptionKey string
	SessionTTL           time.Duration
}

// IsHTTPS reports whether the public app URL uses HTTPS
func (c AppConfig) IsHTTPS() bool {
	return len(c.URL) >= 8 && c.URL[:8] == "https://"
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "linkpago"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Webpay: WebpayConfig{
			Environment:  getEnv("WEBPAY_ENVIRONMENT", "integration"),
			CommerceCode: getEnv("WEBPAY_COMMERCE_CODE", ""),
			APIKey:       getEnv("WEBPAY_API_KEY", ""),
			Timeout:      getEnvAsDuration("WEBPAY_TIMEOUT", 15*time.Second),
		},
		Google: GoogleOAuthConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("EMAIL_FROM", "noreply@example.com"),
			Timeout:  getEnvAsDuration("SMTP_TIMEOUT", 10*time.Second),
		},
		App: AppConfig{
			URL:                  getEnv("APP_URL", "http://localhost:8080"),
			MaxLinkAmount:        getEnvAsInt("MAX_LINK_AMOUNT", 50_000_000),
			SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000"), // 32-bytes hex string
			SessionTTL:           getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),
		},
	}

	if cfg.Webpay.Environment != "production" {
		if cfg.Webpay.CommerceCode == "" {
			cfg.Webpay.CommerceCode = webpayIntegrationCommerceCode
		}
		if cfg.Webpay.APIKey == "" {
			cfg.Webpay.APIKey = webpayIntegrationAPIKey
		}
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
