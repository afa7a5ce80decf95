package config

import (
	"os"
	"strconv"
	"time"
)

// FetcherConfig controls the product page fetcher.
type FetcherConfig struct {
	UserAgent      string
	AcceptLanguage string
	Timeout        time.Duration
	// UseBrowser enables the headless-browser fallback when the plain
	// HTTP fetch is blocked or fails extraction.
	UseBrowser bool
}

// SMTPConfig holds the outbound email settings. Empty Host disables
// the email channel entirely.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// IsConfigured reports whether email sending can be attempted.
func (c *SMTPConfig) IsConfigured() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

// WhatsAppConfig holds the WhatsApp Cloud API settings used for the
// SMS-style channel. Empty Token disables the channel.
type WhatsAppConfig struct {
	Token         string
	PhoneNumberID string
	APIBaseURL    string
	Timeout       time.Duration
}

// IsConfigured reports whether message sending can be attempted.
func (c *WhatsAppConfig) IsConfigured() bool {
	return c.Token != "" && c.PhoneNumberID != ""
}

// Config is the full application configuration, assembled from the
// environment once at startup and passed into components explicitly.
type Config struct {
	DatabaseURL    string
	Host           string
	Port           string
	AllowedOrigins string
	// RateLimit is the per-client request ceiling in requests/second.
	RateLimit float64
	// CheckInterval is the gap between scheduled alert cycles.
	CheckInterval time.Duration

	Fetcher  FetcherConfig
	SMTP     SMTPConfig
	WhatsApp WhatsAppConfig
}

// Load reads the configuration from environment variables, applying
// the design defaults where unset.
func Load() *Config {
	return &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Host:           getEnv("HOST", "0.0.0.0"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		RateLimit:      getEnvFloat("RATE_LIMIT_RPS", 5),
		CheckInterval:  getEnvDuration("CHECK_INTERVAL", 2*time.Hour),
		Fetcher: FetcherConfig{
			UserAgent: getEnv("FETCHER_USER_AGENT",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) "+
					"AppleWebKit/537.36 (KHTML, like Gecko) "+
					"Chrome/113.0.0.0 Safari/537.36"),
			AcceptLanguage: getEnv("FETCHER_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
			Timeout:        getEnvDuration("FETCHER_TIMEOUT", 10*time.Second),
			UseBrowser:     getEnvBool("FETCHER_USE_BROWSER", false),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_SERVER"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: os.Getenv("EMAIL_ID"),
			Password: os.Getenv("EMAIL_PASS"),
			From:     getEnv("EMAIL_FROM", os.Getenv("EMAIL_ID")),
		},
		WhatsApp: WhatsAppConfig{
			Token:         os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			APIBaseURL:    getEnv("WHATSAPP_API_BASE_URL", "https://graph.facebook.com/v17.0"),
			Timeout:       getEnvDuration("WHATSAPP_TIMEOUT", 15*time.Second),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
