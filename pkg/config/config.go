package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port        string
	Environment string
	LogLevel    string

	// Database
	DatabaseURL   string
	RedisURL      string
	MongoURI      string
	MongoDatabase string

	// JWT
	JWTSecret    string
	JWTExpiresIn string

	// Session
	SessionSecret string

	// Google
	GoogleClientID               string
	GCPBucketName                string
	GoogleApplicationCredentials string

	// Razorpay
	RazorpayKeyID     string
	RazorpayKeySecret string

	// Twilio
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string

	// SendGrid
	SendgridAPIKey string
	MailFrom       string
	MailFromName   string

	// Sentry
	SentryDSN string

	// Security
	CookieSecure bool

	// Mobile Auth
	EnableMobileTokenReturn bool

	// Allowed Origins
	AllowedOrigins string

	// PublicURL is the externally reachable base URL, used in email links
	PublicURL string

	// Checkout
	FreeDeliveryThreshold float64
}

var AppConfig *Config

// Load reads .env and the environment into a Config
func Load() (*Config, error) {
	// Load .env file if it exists (optional in production)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	cfg := &Config{
		Port:                         getEnv("PORT", "5500"),
		Environment:                  getEnv("APP_ENV", "development"),
		LogLevel:                     getEnv("LOG_LEVEL", "info"),
		DatabaseURL:                  getEnv("DATABASE_URL", ""),
		RedisURL:                     getEnv("REDIS_URL", ""),
		MongoURI:                     getEnv("MONGO_URI", ""),
		MongoDatabase:                getEnv("MONGO_DATABASE", "petshop"),
		JWTSecret:                    getEnv("JWT_SECRET", ""),
		JWTExpiresIn:                 getEnv("JWT_EXPIRES_IN", "7d"),
		SessionSecret:                getEnv("SESSION_SECRET", ""),
		GoogleClientID:               getEnv("GOOGLE_CLIENT_ID", ""),
		GCPBucketName:                getEnv("GCP_BUCKET_NAME", ""),
		GoogleApplicationCredentials: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		RazorpayKeyID:                getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:            getEnv("RAZORPAY_KEY_SECRET", ""),
		TwilioAccountSID:             getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:              getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber:            getEnv("TWILIO_PHONE_NUMBER", ""),
		SendgridAPIKey:               getEnv("SENDGRID_API_KEY", ""),
		MailFrom:                     getEnv("MAIL_FROM", "hello@pawsandwhiskers.in"),
		MailFromName:                 getEnv("MAIL_FROM_NAME", "Paws & Whiskers"),
		SentryDSN:                    getEnv("SENTRY_DSN", ""),
		CookieSecure:                 getBool("COOKIE_SECURE", false),
		EnableMobileTokenReturn:      getBool("ENABLE_MOBILE_TOKEN_RETURN", false),
		AllowedOrigins:               getEnv("ALLOWED_ORIGINS", ""),
		PublicURL:                    strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:5500"), "/"),
		FreeDeliveryThreshold:        getFloat("FREE_DELIVERY_THRESHOLD", 999),
	}

	// Validate required config
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}

	return cfg, nil
}

// LoadConfig loads environment variables into AppConfig and exits on error
func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	AppConfig = cfg
	log.Info().Str("env", cfg.Environment).Msg("configuration loaded")
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getFloat(key string, defaultValue float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// IsProduction returns true if running in production mode
func IsProduction() bool {
	return AppConfig != nil && AppConfig.Environment == "production"
}

// IsDevelopment returns true if running in development mode
func IsDevelopment() bool {
	return AppConfig == nil || AppConfig.Environment == "development" || AppConfig.Environment == ""
}
