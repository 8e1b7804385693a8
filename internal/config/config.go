package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DatabaseURL     string
	RunMigrations   bool
	AllowOrigins    []string
	LogLevel        string
	LogFormat       string
	LogstashTCPAddr string

	ResetTokenBackend string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RedisPrefix       string

	MailProvider       string
	SMTPHost           string
	SMTPPort           string
	SMTPUsername       string
	SMTPPassword       string
	SMTPFrom           string
	SESRegion          string
	SESAccessKeyID     string
	SESSecretAccessKey string
	SESFrom            string

	PasswordResetTTL       time.Duration
	PasswordResetMaxActive int
	PasswordHashCost       int
	StoreTimeout           time.Duration
	NotifyTimeout          time.Duration
	RegisterRedirectPath   string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found", "error", err)
	}

	backend := strings.ToLower(getenv("RESET_TOKEN_BACKEND", "postgres"))
	redisAddr := getenv("REDIS_ADDR", "")
	if backend == "redis" {
		redisAddr = must("REDIS_ADDR")
	}

	return Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     must("DATABASE_URL"),
		RunMigrations:   getenv("RUN_MIGRATIONS", "false") == "true",
		AllowOrigins:    splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFormat:       getenv("LOG_FORMAT", "text"),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),

		ResetTokenBackend: backend,
		RedisAddr:         redisAddr,
		RedisPassword:     getenv("REDIS_PASSWORD", ""),
		RedisDB:           getint("REDIS_DB", 0),
		RedisPrefix:       getenv("REDIS_PREFIX", "pwr"),

		MailProvider:       strings.ToLower(getenv("MAIL_PROVIDER", "smtp")),
		SMTPHost:           getenv("SMTP_HOST", ""),
		SMTPPort:           getenv("SMTP_PORT", ""),
		SMTPUsername:       getenv("SMTP_USERNAME", ""),
		SMTPPassword:       getenv("SMTP_PASSWORD", ""),
		SMTPFrom:           getenv("SMTP_FROM", ""),
		SESRegion:          getenv("SES_REGION", ""),
		SESAccessKeyID:     getenv("SES_ACCESS_KEY_ID", ""),
		SESSecretAccessKey: getenv("SES_SECRET_ACCESS_KEY", ""),
		SESFrom:            getenv("SES_FROM", ""),

		PasswordResetTTL:       getduration("PASSWORD_RESET_TTL", 15*time.Minute),
		PasswordResetMaxActive: getint("PASSWORD_RESET_MAX_ACTIVE", 2),
		PasswordHashCost:       getint("PASSWORD_HASH_COST", 12),
		StoreTimeout:           getduration("STORE_TIMEOUT", 5*time.Second),
		NotifyTimeout:          getduration("NOTIFY_TIMEOUT", 10*time.Second),
		RegisterRedirectPath:   getenv("REGISTER_REDIRECT_PATH", "/subscribe"),
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v, err := strconv.Atoi(getenv(k, "")); err == nil && v >= 0 {
		return v
	}
	return d
}

func getduration(k string, d time.Duration) time.Duration {
	if v, err := time.ParseDuration(getenv(k, "")); err == nil && v > 0 {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
