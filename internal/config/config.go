package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	MongoDB     MongoDBConfig
	JWT         JWTConfig
	Payment     PaymentConfig
	Redis       RedisConfig
	Kiosk       KioskConfig
	Receipt     ReceiptConfig
	Carpark     CarparkConfig
	RateLimit   RateLimitConfig
	LogLevel    string
	LogEncoding string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	StaticDir      string
	Env            string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI                       string
	Database                  string
	SitesCollection           string
	FlowsCollection           string
	SiteFlowConfigsCollection string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int // seconds
}

// PaymentConfig holds payment terminal configuration
type PaymentConfig struct {
	BaseURL        string
	Mode           string
	RedirectURL    string
	CallbackToken  string
	MockAPI        bool
	TimeoutSeconds int
}

// RedisConfig holds redis settings for the payment result bus
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// KioskConfig holds the inactivity windows of kiosk sessions
type KioskConfig struct {
	IdleSeconds      int
	CountdownSeconds int
}

// ReceiptConfig selects the receipt email gateway
type ReceiptConfig struct {
	Gateway string
	BaseURL string
	APIKey  string
	From    string
}

// CarparkConfig holds the operator API configuration
type CarparkConfig struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	MockAPI      bool
}

// RateLimitConfig throttles login attempts per client IP
type RateLimitConfig struct {
	LoginPerMinute int
	Burst          int
}

// TokenTTL returns the JWT lifetime
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.ExpiresIn) * time.Second
}

// IdleWindow returns the kiosk idle window
func (c *Config) IdleWindow() time.Duration {
	return time.Duration(c.Kiosk.IdleSeconds) * time.Second
}

// CountdownWindow returns the kiosk countdown window
func (c *Config) CountdownWindow() time.Duration {
	return time.Duration(c.Kiosk.CountdownSeconds) * time.Second
}

// PaymentTimeout returns the payment terminal request timeout
func (c *Config) PaymentTimeout() time.Duration {
	return time.Duration(c.Payment.TimeoutSeconds) * time.Second
}

// Load loads configuration from a .env file, environment variables and an
// optional config.yaml. Environment variables use underscores for nesting,
// e.g. MONGODB_URI or PAYMENT_MODE.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Origins may arrive comma separated from the environment
	config.Server.AllowedOrigins = splitList(strings.Join(config.Server.AllowedOrigins, ","))

	return &config, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT secret is not configured (set JWT_SECRET)")
	}
	if c.MongoDB.URI == "" {
		return errors.New("MongoDB URI is not configured (set MONGODB_URI)")
	}
	switch c.Payment.Mode {
	case "direct":
	case "redirect":
		if c.Payment.RedirectURL == "" {
			return errors.New("payment redirect mode requires PAYMENT_REDIRECTURL")
		}
	default:
		return fmt.Errorf("unknown payment mode %q", c.Payment.Mode)
	}
	if c.Kiosk.IdleSeconds <= 0 || c.Kiosk.CountdownSeconds <= 0 {
		return errors.New("kiosk idle and countdown windows must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// setDefaults sets default values for configuration. Every key needs a
// default for AutomaticEnv to pick it up during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "5000")
	v.SetDefault("Server.AllowedOrigins", []string{"http://localhost:5173"})
	v.SetDefault("Server.StaticDir", "")
	v.SetDefault("Server.Env", "development")
	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	v.SetDefault("MongoDB.Database", "parking-kiosk")
	v.SetDefault("MongoDB.SitesCollection", "Sites")
	v.SetDefault("MongoDB.FlowsCollection", "Flows")
	v.SetDefault("MongoDB.SiteFlowConfigsCollection", "SiteFlowConfigs")
	v.SetDefault("JWT.Secret", "")
	v.SetDefault("JWT.ExpiresIn", 60*60) // 1 hour
	v.SetDefault("Payment.BaseURL", "http://localhost:5001")
	v.SetDefault("Payment.Mode", "direct")
	v.SetDefault("Payment.RedirectURL", "")
	v.SetDefault("Payment.CallbackToken", "")
	v.SetDefault("Payment.MockAPI", true)
	v.SetDefault("Payment.TimeoutSeconds", 90)
	v.SetDefault("Redis.Enabled", false)
	v.SetDefault("Redis.Addr", "localhost:6379")
	v.SetDefault("Redis.Password", "")
	v.SetDefault("Redis.DB", 0)
	v.SetDefault("Kiosk.IdleSeconds", 30)
	v.SetDefault("Kiosk.CountdownSeconds", 30)
	v.SetDefault("Receipt.Gateway", "mock")
	v.SetDefault("Receipt.BaseURL", "")
	v.SetDefault("Receipt.APIKey", "")
	v.SetDefault("Receipt.From", "receipts@localhost")
	v.SetDefault("Carpark.BaseURL", "")
	v.SetDefault("Carpark.TokenURL", "")
	v.SetDefault("Carpark.ClientID", "")
	v.SetDefault("Carpark.ClientSecret", "")
	v.SetDefault("Carpark.MockAPI", true)
	v.SetDefault("RateLimit.LoginPerMinute", 10)
	v.SetDefault("RateLimit.Burst", 5)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogEncoding", "json")
}
