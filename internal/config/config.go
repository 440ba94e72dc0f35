package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Auth     AuthConfig
	Stripe   StripeConfig
	Billing  BillingConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	WebhookLogFilePath string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Dialect    string
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type AuthConfig struct {
	JwtSecret string
	TokenTTL  time.Duration
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

type BillingConfig struct {
	SettlementDelay   time.Duration
	SimulateFailure   bool
	FreePlanName      string
	FreeTrialDays     int
	DefaultCurrency   string
	IdempotencyWindow time.Duration
}

// TracingConfig drives the OTLP exporter. Tracing is off unless Enabled.
type TracingConfig struct {
	Enabled        bool
	Endpoint       string
	ServiceName    string
	ServiceVersion string
	SampleRatio    float64
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	clientURL := getEnv("CLIENT_URL", "http://localhost:5173")

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          clientURL,
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			WebhookLogFilePath: getEnv("WEBHOOK_LOG_FILE_PATH", "logs/webhooks.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", clientURL),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Dialect:    getEnv("DB_DIALECT", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Podcast Platform"),
		},
		Auth: AuthConfig{
			JwtSecret: getEnv("JWT_SECRET", "default_secret"),
			TokenTTL:  time.Duration(getEnvAsInt("JWT_TTL_HOURS", 168)) * time.Hour,
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			SuccessURL:    getEnv("STRIPE_SUCCESS_URL", clientURL+"/payment/success?session_id={CHECKOUT_SESSION_ID}"),
			CancelURL:     getEnv("STRIPE_CANCEL_URL", clientURL+"/payment/cancel"),
		},
		Billing: BillingConfig{
			SettlementDelay:   time.Duration(getEnvAsInt("PAYMENT_SETTLEMENT_DELAY_MS", 2000)) * time.Millisecond,
			SimulateFailure:   getEnvAsBool("PAYMENT_SIMULATED_FAILURE", false),
			FreePlanName:      getEnv("FREE_PLAN_NAME", "Free"),
			FreeTrialDays:     getEnvAsInt("FREE_TRIAL_DAYS", 7),
			DefaultCurrency:   getEnv("DEFAULT_CURRENCY", "USD"),
			IdempotencyWindow: time.Duration(getEnvAsInt("WEBHOOK_IDEMPOTENCY_HOURS", 72)) * time.Hour,
		},
		Tracing: TracingConfig{
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "podcast-be"),
			ServiceVersion: getEnv("APP_VERSION", "dev"),
			SampleRatio:    getEnvAsFloat("OTEL_SAMPLE_RATIO", 1),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
