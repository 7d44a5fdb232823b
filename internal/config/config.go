package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Sessions
	JwtSecret     string
	SessionCookie string

	// Server
	SitePort       string
	ServiceApiPort string
	AllowedOrigins []string
	SecureHeaders  bool

	// Tenancy
	DefaultBaseSlug string
	BaseCacheTTL    time.Duration
	MenuCacheTTL    time.Duration

	// Listing pages
	GalleryPageSize int

	// Cloudflare
	CloudflareTurnstileSiteKey   string
	CloudflareTurnstileSecretKey string
	CloudflareSiteVerifyURL      string

	// Email
	SmtpHost          string
	SmtpPort          int
	SmtpUsername      string
	SmtpPassword      string
	SmtpFromAddress   string
	AdminEmailAddress string
	DefaultLocale     string

	// AWS S3
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	ImageBaseS3URL     string
	PhotoURLTTL        time.Duration

	// App Defaults
	AppName string

	// Contact form rate limiting
	RateLimitBucketSize int
	RateLimitRefillRate float64 // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		RunMode: runMode,
	}

	var err error

	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists || value == "" {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	getSeconds := func(key, defaultValue string) (time.Duration, error) {
		secs, err := strconv.ParseInt(getEnv(key, defaultValue), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return time.Duration(secs) * time.Second, nil
	}

	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "easyapp")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.JwtSecret, err = getRequiredEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.SessionCookie = getEnv("SESSION_COOKIE", "session")
	cfg.SitePort = getEnv("SITE_PORT", "8080")
	cfg.ServiceApiPort = getEnv("SERVICE_API_PORT", "12345")
	cfg.AllowedOrigins = splitList(getEnv("ALLOWED_ORIGINS", "*"))
	cfg.DefaultBaseSlug = getEnv("DEFAULT_BASE", "")
	cfg.CloudflareTurnstileSiteKey = getEnv("CLOUDFLARE_TURNSTILE_SITE_KEY", "")
	cfg.CloudflareTurnstileSecretKey = getEnv("CLOUDFLARE_TURNSTILE_SECRET_KEY", "")
	cfg.CloudflareSiteVerifyURL = getEnv("CLOUDFLARE_SITEVERIFY_URL", "https://challenges.cloudflare.com/turnstile/v0/siteverify")
	cfg.SmtpHost = getEnv("SMTP_HOST", "")
	cfg.SmtpUsername = getEnv("SMTP_USERNAME", "")
	cfg.SmtpPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SmtpFromAddress = getEnv("SMTP_FROM_ADDRESS", "noreply@easyapp.example.com")
	cfg.AdminEmailAddress = getEnv("ADMIN_EMAIL_ADDRESS", "")
	cfg.DefaultLocale = getEnv("DEFAULT_LOCALE", "en-US")
	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")
	cfg.ImageBaseS3URL = getEnv("IMAGE_BASE_S3_URL", "")
	cfg.AppName = getEnv("APP_NAME", "EasyApp Rentals")

	cfg.SecureHeaders, err = strconv.ParseBool(getEnv("SECURE_HEADERS", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid SECURE_HEADERS: %w", err)
	}

	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg.SmtpPort, err = strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	cfg.GalleryPageSize, err = strconv.Atoi(getEnv("GALLERY_PAGE_SIZE", "12"))
	if err != nil {
		return nil, fmt.Errorf("invalid GALLERY_PAGE_SIZE: %w", err)
	}
	if cfg.GalleryPageSize <= 0 {
		return nil, fmt.Errorf("invalid GALLERY_PAGE_SIZE: must be positive, got %d", cfg.GalleryPageSize)
	}

	if cfg.BaseCacheTTL, err = getSeconds("BASE_CACHE_TTL_SECONDS", "300"); err != nil {
		return nil, err
	}
	if cfg.MenuCacheTTL, err = getSeconds("MENU_CACHE_TTL_SECONDS", "60"); err != nil {
		return nil, err
	}
	if cfg.PhotoURLTTL, err = getSeconds("PHOTO_URL_TTL_SECONDS", "3600"); err != nil {
		return nil, err
	}

	cfg.RateLimitBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_BUCKET_SIZE", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitRefillRate, err = strconv.ParseFloat(getEnv("RATE_LIMIT_REFILL_RATE", "0.05"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_RATE: %w", err)
	}

	return cfg, nil
}

// splitList splits a comma separated env value, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
