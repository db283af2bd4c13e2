package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"courtside/internal/i18n"
	applog "courtside/internal/log"
)

// DevJWTSecret is used when JWT_SECRET is unset. Never deploy with it.
const DevJWTSecret = "courtside-dev-secret-change-me"

type Config struct {
	Port         string
	DataFile     string
	AnalyticsDSN string
	UploadDir    string
	TemplatesDir string
	LogFile      string
	LogLevel     applog.Level
	AllowOrigins string
	BaseURL      string

	AdminUser         string
	AdminPassword     string
	AdminPasswordHash string
	JWTSecret         string
	AdminSessionTTL   time.Duration

	WhatsAppPhone string
	TaxRate       decimal.Decimal
	PageSize      int
	MaxUploadMB   int
	CartIdleTTL   time.Duration
	RabbitMQURL   string
	DefaultLocale i18n.Locale
}

// Load reads the environment, after applying a .env file when one exists.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var errs []error
	cfg := Config{
		Port:              getenv("PORT", "8080"),
		DataFile:          getenv("DATA_FILE", "./data/products.json"),
		AnalyticsDSN:      getenv("ANALYTICS_DSN", "courtside.db"),
		UploadDir:         getenv("UPLOAD_DIR", "./web/uploads"),
		TemplatesDir:      getenv("TEMPLATES_DIR", "./web/templates"),
		LogFile:           os.Getenv("LOG_FILE"),
		AllowOrigins:      strings.Join(splitCSV(getenv("ALLOW_ORIGINS", "http://localhost:3000")), ","),
		BaseURL:           strings.TrimRight(getenv("BASE_URL", "http://localhost:8080"), "/"),
		AdminUser:         getenv("ADMIN_USER", "admin"),
		AdminPassword:     getenv("ADMIN_PASSWORD", "admin123"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		JWTSecret:         getenv("JWT_SECRET", DevJWTSecret),
		WhatsAppPhone:     getenv("WHATSAPP_PHONE", "905555555555"),
		RabbitMQURL:       os.Getenv("RABBITMQ_URL"),
	}

	lvl, ok := applog.ParseLevel(getenv("LOG_LEVEL", "info"))
	if !ok {
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q: want debug, info, warn or error", os.Getenv("LOG_LEVEL")))
	}
	cfg.LogLevel = lvl

	loc, ok := i18n.ParseLocale(getenv("DEFAULT_LOCALE", "tr"))
	if !ok {
		errs = append(errs, fmt.Errorf("DEFAULT_LOCALE %q is not supported", os.Getenv("DEFAULT_LOCALE")))
	}
	cfg.DefaultLocale = loc

	var err error
	if cfg.AdminSessionTTL, err = duration("ADMIN_SESSION_TTL", 12*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.CartIdleTTL, err = duration("CART_IDLE_TTL", 24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.PageSize, err = positiveInt("PAGE_SIZE", 9); err != nil {
		errs = append(errs, err)
	}
	if cfg.MaxUploadMB, err = positiveInt("MAX_UPLOAD_MB", 50); err != nil {
		errs = append(errs, err)
	}
	if cfg.TaxRate, err = decimal.NewFromString(getenv("TAX_RATE", "0.08")); err != nil {
		errs = append(errs, fmt.Errorf("TAX_RATE: %w", err))
	} else if cfg.TaxRate.IsNegative() || cfg.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		errs = append(errs, fmt.Errorf("TAX_RATE %s: must be between 0 and 1", cfg.TaxRate))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if cfg.JWTSecret == DevJWTSecret {
		log.Printf("[config] JWT_SECRET not set, using development secret")
	}
	log.Printf("[config] PORT=%s DATA_FILE=%s ANALYTICS_DSN=%s UPLOAD_DIR=%s RABBITMQ=%t LOCALE=%s",
		cfg.Port, cfg.DataFile, cfg.AnalyticsDSN, cfg.UploadDir, cfg.RabbitMQURL != "", cfg.DefaultLocale)
	return cfg, nil
}

// MaxUploadBytes is the request body limit for uploads.
func (c Config) MaxUploadBytes() int { return c.MaxUploadMB * 1024 * 1024 }

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func duration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if strings.TrimSpace(v) == "" {
		return def, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s %q: want a positive duration", k, v)
	}
	return d, nil
}

func positiveInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if strings.TrimSpace(v) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s %q: want a positive integer", k, v)
	}
	return n, nil
}
