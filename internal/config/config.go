package config

import (
	"errors"
	"os"
	"strconv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string
	MySQLDSN   string
	RedisAddr  string
	RedisDB    int
	RedisPass  string
	JWTSecret  string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFromAddr string
	MailFromName string

	// AppBaseURL is used to build confirmation links in outgoing mail.
	AppBaseURL string

	SwaggerHost string
}

// ErrMissingJWTSecret is returned when JWT_SECRET is not configured. A
// literal fallback would make every deployment sign tokens with the same
// key, so startup refuses instead.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")

// Load builds Config from environment with sensible defaults. The JWT
// signing secret has no default; an unset value is a configuration error.
func Load() (*Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, ErrMissingJWTSecret
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		MySQLDSN:   getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/invopay?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:    getEnvInt("REDIS_DB", 0),
		RedisPass:  os.Getenv("REDIS_PASSWORD"),
		JWTSecret:  secret,

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFromAddr: getEnv("MAIL_FROM_ADDRESS", "no-reply@localhost"),
		MailFromName: getEnv("MAIL_FROM_NAME", "Invopay"),

		AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:8080"),

		SwaggerHost: os.Getenv("SWAGGER_HOST"),
	}, nil
}

// SMTPConfigured reports whether outbound mail delivery can be attempted.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUsername != "" && c.SMTPPassword != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
