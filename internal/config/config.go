package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	GCS       GCSConfig       `json:"gcs"`
	Gotenberg GotenbergConfig `json:"gotenberg"`
	SMTP      SMTPConfig      `json:"smtp"`
	Redis     RedisConfig     `json:"redis"`
	Geo       GeoConfig       `json:"geo"`
	Signing   SigningConfig   `json:"signing"`
	Log       LogConfig       `json:"log"`
}

type ServerConfig struct {
	Port         string   `json:"port"`
	Environment  string   `json:"environment"`
	BaseURL      string   `json:"base_url"`
	FrontendURL  string   `json:"frontend_url"`
	AllowOrigins []string `json:"allow_origins"`
}

type DatabaseConfig struct {
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type GCSConfig struct {
	BucketName      string `json:"bucket_name"`
	ProjectID       string `json:"project_id"`
	CredentialsPath string `json:"credentials_path"`
}

type GotenbergConfig struct {
	URL     string        `json:"url"`
	Timeout time.Duration `json:"timeout"`
}

type SMTPConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"-"`
	From     string `json:"from"`
}

type RedisConfig struct {
	Addr          string `json:"addr"`
	Password      string `json:"-"`
	DB            int    `json:"db"`
	NotifyChannel string `json:"notify_channel"`
}

type GeoConfig struct {
	BaseURL string        `json:"base_url"`
	Timeout time.Duration `json:"timeout"`
}

type SigningConfig struct {
	LinkTTL         time.Duration `json:"link_ttl"`
	PDFTimeout      time.Duration `json:"pdf_timeout"`
	SweepInterval   time.Duration `json:"sweep_interval"`
	DisplayTimezone string        `json:"display_timezone"`
	Locale          string        `json:"locale"`
}

type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

func (d *DatabaseConfig) DSN() string {
	if d.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
	}
	// Cloud SQL Unix socket support
	if len(d.Host) > 0 && d.Host[0] == '/' {
		return fmt.Sprintf("%s:%s@unix(%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User, d.Password, d.Host, d.DBName)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.User, d.Password, d.Host, d.Port, d.DBName)
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Failed to load .env file: %v, using system environment variables\n", err)
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", "mysql"))
	if driver != "mysql" && driver != "postgres" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	defaultPort := "3306"
	if driver == "postgres" {
		defaultPort = "5432"
	}

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			BaseURL:      getEnv("BASE_URL", ""),
			FrontendURL:  strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
			AllowOrigins: parseAllowOrigins(),
		},
		Database: DatabaseConfig{
			Driver:   driver,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", defaultPort),
			User:     getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "dress_rental"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		GCS: GCSConfig{
			BucketName:      getEnv("GCS_BUCKET_NAME", ""),
			ProjectID:       getEnv("GOOGLE_CLOUD_PROJECT", ""),
			CredentialsPath: getEnv("GCS_CREDENTIALS_PATH", ""),
		},
		Gotenberg: GotenbergConfig{
			URL:     getEnv("GOTENBERG_URL", ""),
			Timeout: getEnvDuration("GOTENBERG_TIMEOUT", 30*time.Second),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", getEnv("SMTP_USER", "")),
		},
		Redis: RedisConfig{
			Addr:          getEnv("REDIS_ADDR", ""),
			Password:      getEnv("REDIS_PASSWORD", ""),
			DB:            getEnvInt("REDIS_DB", 0),
			NotifyChannel: getEnv("NOTIFY_CHANNEL", "notifications"),
		},
		Geo: GeoConfig{
			BaseURL: getEnv("GEO_BASE_URL", "http://ip-api.com"),
			Timeout: getEnvDuration("GEO_TIMEOUT", 3*time.Second),
		},
		Signing: SigningConfig{
			LinkTTL:         getEnvDuration("SIGN_LINK_TTL", 7*24*time.Hour),
			PDFTimeout:      getEnvDuration("PDF_TIMEOUT", 45*time.Second),
			SweepInterval:   getEnvDuration("SWEEP_INTERVAL", time.Hour),
			DisplayTimezone: getEnv("DISPLAY_TIMEZONE", "Europe/Paris"),
			Locale:          getEnv("LOCALE", "fr"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		fmt.Printf("Warning: invalid integer for %s=%q, using %d\n", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err == nil && d > 0 {
			return d
		}
		fmt.Printf("Warning: invalid duration for %s=%q, using %s\n", key, value, defaultValue)
	}
	return defaultValue
}

func parseAllowOrigins() []string {
	if origins := os.Getenv("ALLOW_ORIGINS"); origins != "" {
		var allowOrigins []string
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				allowOrigins = append(allowOrigins, trimmed)
			}
		}
		return allowOrigins
	}

	// Fallback to the signing frontend so the public sign page can reach the API
	var allowOrigins []string
	if frontend := getEnv("FRONTEND_URL", ""); frontend != "" {
		allowOrigins = append(allowOrigins, strings.TrimRight(frontend, "/"))
	}

	if len(allowOrigins) == 0 {
		allowOrigins = []string{
			"http://localhost:3000",
			"http://localhost:3001",
		}
	}

	return allowOrigins
}
