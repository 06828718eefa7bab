package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Tesseract-Nexus/go-shared/secrets"
)

// DevJWTSecret signs tokens outside production when JWT_SECRET is unset
const DevJWTSecret = "dev-secret-change-me"

// ErrJWTSecretRequired is returned by Validate in production without JWT_SECRET
var ErrJWTSecretRequired = errors.New("JWT_SECRET must be set in production")

// Config holds application configuration
type Config struct {
	// Database
	DatabaseURL string
	DBHost      string
	DBPort      int
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Infrastructure
	RedisURL string
	NATSURL  string

	// Server
	Port           string
	Environment    string
	LogLevel       string
	AllowedOrigins []string

	// Auth
	JWTSecret string

	// Invoicing
	DraftTTL time.Duration
	Currency string

	// Payments
	PaymentGateway    string
	RazorpayKeyID     string
	RazorpayKeySecret string
	StripeSecretKey   string
}

// Load creates a new configuration from environment variables
func Load() *Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	draftTTLHours, err := strconv.Atoi(getEnv("DRAFT_TTL_HOURS", "72"))
	if err != nil || draftTTLHours <= 0 {
		draftTTLHours = 72
	}

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		dbPassword = secrets.GetDBPassword()
	}

	environment := getEnv("ENVIRONMENT", "development")
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" && environment != "production" {
		jwtSecret = DevJWTSecret
	}

	return &Config{
		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      dbPort,
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  dbPassword,
		DBName:      getEnv("DB_NAME", "invoicing"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		// Infrastructure
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		NATSURL:  os.Getenv("NATS_URL"),

		// Server
		Port:           getEnv("PORT", "8080"),
		Environment:    environment,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),

		// Auth
		JWTSecret: jwtSecret,

		// Invoicing
		DraftTTL: time.Duration(draftTTLHours) * time.Hour,
		Currency: getEnv("CURRENCY", "INR"),

		// Payments
		PaymentGateway:    getEnv("PAYMENT_GATEWAY", "razorpay"),
		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		StripeSecretKey:   os.Getenv("STRIPE_SECRET_KEY"),
	}
}

// DSN returns the postgres connection string
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate rejects configurations that must not start
func (c *Config) Validate() error {
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == DevJWTSecret) {
		return ErrJWTSecretRequired
	}
	return nil
}

// InitDB initializes the database connection
func InitDB(cfg *Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.IsProduction() {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// InitRedis connects to Redis. Drafts live in Redis, so unlike a pure cache
// a failed ping is returned to the caller.
func InitRedis(cfg *Config) (*redis.Client, error) {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (falling back to localhost)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	if redisOpts.Password == "" {
		redisOpts.Password = secrets.GetRedisPassword()
	}
	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return client, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
