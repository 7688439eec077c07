package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"supplier-compliance-backend/models"
)

// Config holds the service configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Log           LogConfig
	Mail          MailConfig
	Attachments   AttachmentsConfig
	Compliance    ComplianceConfig
	JWTSecret     string
	ApprovalToken ApprovalTokenConfig
}

// ServerConfig holds the HTTP server configuration
type ServerConfig struct {
	Port            string
	AppURL          string
	AllowedOrigins  string
	BodyLimitMB     int
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// DatabaseConfig holds the database configuration
type DatabaseConfig struct {
	Driver     string // postgres | sqlite
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

type LogConfig struct {
	Level string
	Env   string
}

// MailConfig holds the SMTP settings. With Enabled=false mails are only logged.
type MailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type AttachmentsConfig struct {
	Dir string
}

type ComplianceConfig struct {
	MatrixRule models.CompletenessRule
}

type ApprovalTokenConfig struct {
	TTL time.Duration
}

// DSN builds the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.DBName, d.Port, d.SSLMode)
}

// Load reads .env (if present), an optional config file and the environment.
// Environment variables use the flat names from .env, e.g. DB_HOST or SMTP_PORT.
func Load(cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	rule := models.CompletenessRule(strings.ToLower(strings.TrimSpace(v.GetString("MATRIX_COMPLETENESS_RULE"))))
	if !rule.Valid() {
		return nil, fmt.Errorf("invalid MATRIX_COMPLETENESS_RULE %q", rule)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("PORT"),
			AppURL:          strings.TrimRight(v.GetString("APP_URL"), "/"),
			AllowedOrigins:  v.GetString("ALLOWED_ORIGINS"),
			BodyLimitMB:     v.GetInt("BODY_LIMIT_MB"),
			RateLimitMax:    v.GetInt("RATE_LIMIT_MAX"),
			RateLimitWindow: time.Duration(v.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(v.GetString("DB_DRIVER")),
			Host:       v.GetString("DB_HOST"),
			Port:       v.GetInt("DB_PORT"),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASSWORD"),
			DBName:     v.GetString("DB_NAME"),
			SSLMode:    v.GetString("DB_SSLMODE"),
			SQLitePath: v.GetString("SQLITE_PATH"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
			Env:   v.GetString("LOG_ENV"),
		},
		Mail: MailConfig{
			Enabled:  v.GetBool("MAIL_ENABLED"),
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
		Attachments: AttachmentsConfig{Dir: v.GetString("ATTACHMENTS_DIR")},
		Compliance:  ComplianceConfig{MatrixRule: rule},
		JWTSecret:   v.GetString("JWT_SECRET_KEY"),
		ApprovalToken: ApprovalTokenConfig{
			TTL: time.Duration(v.GetInt("APPROVAL_TOKEN_TTL_HOURS")) * time.Hour,
		},
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT secret not configured (set JWT_SECRET_KEY)")
	}
	return cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_URL", "http://localhost:8080")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("BODY_LIMIT_MB", 10)
	v.SetDefault("RATE_LIMIT_MAX", 60)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "suppliers")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "suppliers.db")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_ENV", "development")

	v.SetDefault("MAIL_ENABLED", false)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM", "compliance@localhost")

	v.SetDefault("ATTACHMENTS_DIR", "data/attachments")
	v.SetDefault("MATRIX_COMPLETENESS_RULE", string(models.RuleTerminalActivity))
	v.SetDefault("APPROVAL_TOKEN_TTL_HOURS", 72)
}
