package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	RedisAddr     string
	RedisPassword string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	GatewaySecretKey string

	ConfirmPollInterval time.Duration
	ConfirmPollAttempts int

	InvoiceNumberTemplate string
	RecurringMaxAttempts  int

	OrgName    string
	OrgAddress string
	OrgEmail   string

	LogLevel string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_SERVICE", "causeway")
	v.SetDefault("APP_VERSION", "0.1.0")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("HTTP_ADDR", ":8080")

	v.SetDefault("DATABASE_TYPE", "postgres")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_NAME", "causeway")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "postgres")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_IDLE_CONN", 5)
	v.SetDefault("DATABASE_MAX_OPEN_CONN", 25)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", 300)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")

	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "receipts@causeway.local")

	v.SetDefault("GATEWAY_SECRET_KEY", "")

	v.SetDefault("CONFIRM_POLL_INTERVAL", time.Second)
	v.SetDefault("CONFIRM_POLL_ATTEMPTS", 30)

	v.SetDefault("INVOICE_NUMBER_TEMPLATE", "DON-{YYYY}-{SEQ6}")
	v.SetDefault("RECURRING_MAX_ATTEMPTS", 3)

	v.SetDefault("ORG_NAME", "Causeway Foundation")
	v.SetDefault("ORG_ADDRESS", "")
	v.SetDefault("ORG_EMAIL", "receipts@causeway.local")

	v.SetDefault("LOG_LEVEL", "info")

	return Config{
		AppName:     strings.TrimSpace(v.GetString("APP_SERVICE")),
		AppVersion:  v.GetString("APP_VERSION"),
		Environment: v.GetString("ENVIRONMENT"),
		HTTPAddr:    v.GetString("HTTP_ADDR"),

		DBType:            v.GetString("DATABASE_TYPE"),
		DBHost:            v.GetString("DATABASE_HOST"),
		DBPort:            v.GetString("DATABASE_PORT"),
		DBName:            v.GetString("DATABASE_NAME"),
		DBUser:            v.GetString("DATABASE_USER"),
		DBPassword:        v.GetString("DATABASE_PASSWORD"),
		DBSSLMode:         v.GetString("DATABASE_SSLMODE"),
		DBMaxIdleConn:     v.GetInt("DATABASE_MAX_IDLE_CONN"),
		DBMaxOpenConn:     v.GetInt("DATABASE_MAX_OPEN_CONN"),
		DBConnMaxLifetime: v.GetInt("DATABASE_CONN_MAX_LIFETIME"),

		RedisAddr:     strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword: v.GetString("REDIS_PASSWORD"),

		SMTPHost:     v.GetString("SMTP_HOST"),
		SMTPPort:     v.GetInt("SMTP_PORT"),
		SMTPUsername: v.GetString("SMTP_USERNAME"),
		SMTPPassword: v.GetString("SMTP_PASSWORD"),
		SMTPFrom:     v.GetString("SMTP_FROM"),

		GatewaySecretKey: strings.TrimSpace(v.GetString("GATEWAY_SECRET_KEY")),

		ConfirmPollInterval: v.GetDuration("CONFIRM_POLL_INTERVAL"),
		ConfirmPollAttempts: v.GetInt("CONFIRM_POLL_ATTEMPTS"),

		InvoiceNumberTemplate: v.GetString("INVOICE_NUMBER_TEMPLATE"),
		RecurringMaxAttempts:  v.GetInt("RECURRING_MAX_ATTEMPTS"),

		OrgName:    v.GetString("ORG_NAME"),
		OrgAddress: v.GetString("ORG_ADDRESS"),
		OrgEmail:   v.GetString("ORG_EMAIL"),

		LogLevel: strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
