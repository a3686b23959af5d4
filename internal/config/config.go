package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Backoffice BackofficeConfig
	Sales      SalesConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Printer    PrinterConfig
}

type AppConfig struct {
	Name       string
	Env        string
	Port       string
	Debug      bool
	RegisterID string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// BackofficeConfig points the terminal at the remote back-office API.
type BackofficeConfig struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	ProbeTimeout   time.Duration
}

// SalesConfig holds register-side sale policy.
type SalesConfig struct {
	DebtDueDays     int
	ConnectivityTTL time.Duration
	ProductCacheTTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// PrinterConfig selects the receipt printer: "usb", "network", or "none".
type PrinterConfig struct {
	Type      string
	USBPath   string
	Address   string
	CharWidth int
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "kassa-terminal")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("REGISTER_ID", "register-1")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "kassa_terminal")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Tashkent")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("BACKOFFICE_BASE_URL", "http://localhost:9090")
	viper.SetDefault("BACKOFFICE_API_KEY", "")
	viper.SetDefault("BACKOFFICE_REQUEST_TIMEOUT_SECONDS", 10)
	viper.SetDefault("BACKOFFICE_PROBE_TIMEOUT_SECONDS", 2)
	viper.SetDefault("DEBT_DUE_DAYS", 30)
	viper.SetDefault("CONNECTIVITY_TTL_SECONDS", 5)
	viper.SetDefault("PRODUCT_CACHE_TTL_SECONDS", 300)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_USB_PATH", "/dev/usb/lp0")
	viper.SetDefault("PRINTER_ADDRESS", "")
	viper.SetDefault("PRINTER_CHAR_WIDTH", 32)

	return &Config{
		App: AppConfig{
			Name:       viper.GetString("APP_NAME"),
			Env:        viper.GetString("APP_ENV"),
			Port:       viper.GetString("APP_PORT"),
			Debug:      viper.GetBool("APP_DEBUG"),
			RegisterID: viper.GetString("REGISTER_ID"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Backoffice: BackofficeConfig{
			BaseURL:        viper.GetString("BACKOFFICE_BASE_URL"),
			APIKey:         viper.GetString("BACKOFFICE_API_KEY"),
			RequestTimeout: time.Duration(viper.GetInt("BACKOFFICE_REQUEST_TIMEOUT_SECONDS")) * time.Second,
			ProbeTimeout:   time.Duration(viper.GetInt("BACKOFFICE_PROBE_TIMEOUT_SECONDS")) * time.Second,
		},
		Sales: SalesConfig{
			DebtDueDays:     viper.GetInt("DEBT_DUE_DAYS"),
			ConnectivityTTL: time.Duration(viper.GetInt("CONNECTIVITY_TTL_SECONDS")) * time.Second,
			ProductCacheTTL: time.Duration(viper.GetInt("PRODUCT_CACHE_TTL_SECONDS")) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Printer: PrinterConfig{
			Type:      viper.GetString("PRINTER_TYPE"),
			USBPath:   viper.GetString("PRINTER_USB_PATH"),
			Address:   viper.GetString("PRINTER_ADDRESS"),
			CharWidth: viper.GetInt("PRINTER_CHAR_WIDTH"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}
