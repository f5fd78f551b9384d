package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// DBConfig holds database configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// BlobConfig holds object store configuration. Driver "memory" keeps
// everything in-process for local development.
type BlobConfig struct {
	Driver          string
	Region          string
	Endpoint        string
	ReportBucket    string
	ChatBotBucket   string
	MediaBucket     string
	StoryBucket     string
	ForcePathStyle  bool
}

// ConverterConfig holds the HTML conversion gateway endpoints and the
// retry policy applied to converter calls.
type ConverterConfig struct {
	PDFDomain     string
	PPTDomain     string
	DOCDomain     string
	Timeout       time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration
}

// StripeConfig holds payment provider configuration
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// NewsConfig holds the news search provider configuration
type NewsConfig struct {
	APIKey   string
	BaseURL  string
	CacheTTL time.Duration
	Timeout  time.Duration
}

// DomainConfig holds the externally reachable URLs of this API and the
// frontend, used when building converter source URLs and return URLs.
type DomainConfig struct {
	API      string
	Frontend string
}

// RecaptchaConfig holds the reCAPTCHA v3 secret for story room uploads
type RecaptchaConfig struct {
	SecretKey string
}

// Config holds all configuration
type Config struct {
	ServiceName string
	DB          DBConfig
	Server      ServerConfig
	JWT         JWTConfig
	Log         LogConfig
	Blob        BlobConfig
	Converter   ConverterConfig
	Stripe      StripeConfig
	News        NewsConfig
	Domains     DomainConfig
	Recaptcha   RecaptchaConfig
}

// Load loads configuration from a .env file and environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not returning error as .env file is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	config := &Config{
		ServiceName: serviceName,
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", serviceName),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Info),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", "defaultsecretkey"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Blob: BlobConfig{
			Driver:         getEnv("BLOB_DRIVER", "s3"),
			Region:         getEnv("BLOB_REGION", "us-east-1"),
			Endpoint:       getEnv("BLOB_ENDPOINT", ""),
			ReportBucket:   getEnv("BLOB_REPORT_BUCKET", "reports"),
			ChatBotBucket:  getEnv("BLOB_CHATBOT_BUCKET", "chatbot"),
			MediaBucket:    getEnv("BLOB_MEDIA_BUCKET", "media"),
			StoryBucket:    getEnv("BLOB_STORY_BUCKET", "stories"),
			ForcePathStyle: getEnvAsBool("BLOB_FORCE_PATH_STYLE", false),
		},
		Converter: ConverterConfig{
			PDFDomain:     getEnv("CONVERTER_PDF_DOMAIN", "http://localhost:7071"),
			PPTDomain:     getEnv("CONVERTER_PPT_DOMAIN", ""),
			DOCDomain:     getEnv("CONVERTER_DOC_DOMAIN", ""),
			Timeout:       getEnvAsDuration("CONVERTER_TIMEOUT", 90*time.Second),
			RetryAttempts: getEnvAsInt("CONVERTER_RETRY_ATTEMPTS", 1),
			RetryBackoff:  getEnvAsDuration("CONVERTER_RETRY_BACKOFF", 2*time.Second),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		News: NewsConfig{
			APIKey:   getEnv("NEWS_API_KEY", ""),
			BaseURL:  getEnv("NEWS_BASE_URL", "https://api.exa.ai"),
			CacheTTL: getEnvAsDuration("NEWS_CACHE_TTL", 24*time.Hour),
			Timeout:  getEnvAsDuration("NEWS_TIMEOUT", 30*time.Second),
		},
		Domains: DomainConfig{
			API:      getEnv("API_DOMAIN", "http://localhost:8080"),
			Frontend: getEnv("FRONTEND_DOMAIN", "http://localhost:3000"),
		},
		Recaptcha: RecaptchaConfig{
			SecretKey: getEnv("RECAPTCHA_V3_SECRET_KEY", ""),
		},
	}

	return config, nil
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("db_host", c.DB.Host),
		zap.String("db_port", c.DB.Port),
		zap.String("db_name", c.DB.DBName),
		zap.String("server_port", c.Server.Port),
		zap.String("blob_driver", c.Blob.Driver),
		zap.String("report_bucket", c.Blob.ReportBucket),
	}
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as booleans
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	valueStr := getEnv(key, "")
	switch valueStr {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
