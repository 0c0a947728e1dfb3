package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/capitalstack/directory/internal/domain"
	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port           int
	JWTSecret      string
	DatabaseURL    string
	CORSOrigins    []string
	AppURL         string
	AdminEmail     string
	AdminPassword  string
	LogLevel       string
	LogFormat      string
	MetricsEnabled bool

	Stripe   StripeConfig
	SendGrid SendGridConfig
}

// StripeConfig holds billing provider credentials and price ids.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Prices        domain.PriceRefs
}

// SendGridConfig holds transactional email settings. An empty APIKey disables email.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
}

// LoadDotEnv reads a .env file if one exists. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "4001"))
	if err != nil {
		return nil, fmt.Errorf("PORT must be a number: %w", err)
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	metrics, _ := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))

	return &Config{
		Port:           port,
		JWTSecret:      jwtSecret,
		DatabaseURL:    dbURL,
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		AppURL:         strings.TrimRight(getEnv("APP_URL", "http://localhost:3000"), "/"),
		AdminEmail:     getEnv("ADMIN_EMAIL", ""),
		AdminPassword:  getEnv("ADMIN_PASSWORD", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		MetricsEnabled: metrics,
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			Prices: domain.PriceRefs{
				Starter:      getEnv("STRIPE_PRICE_STARTER", ""),
				Professional: getEnv("STRIPE_PRICE_PROFESSIONAL", ""),
				Enterprise:   getEnv("STRIPE_PRICE_ENTERPRISE", ""),
			},
		},
		SendGrid: SendGridConfig{
			APIKey:    getEnv("SENDGRID_API_KEY", ""),
			FromEmail: getEnv("NOTIFY_FROM_EMAIL", "billing@capitalstack.io"),
		},
	}, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
