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
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	RequestTimeout     time.Duration

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	RedisURL string

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration

	VerificationCodeTTL time.Duration
	ResetCodeTTL        time.Duration

	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	MailFromAddress string
	MailFromName    string

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	ClientURL     string
	Environment   string
	CORSOrigins   []string
	MaxAvatarSize int64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		ServerReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerWriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second),

		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 2)),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		AccessTokenSecret:  strings.TrimSpace(os.Getenv("ACCESS_TOKEN_SECRET")),
		RefreshTokenSecret: strings.TrimSpace(os.Getenv("REFRESH_TOKEN_SECRET")),
		AccessTokenTTL:     getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:    getDuration("REFRESH_TOKEN_TTL", 168*time.Hour),

		VerificationCodeTTL: getDuration("VERIFICATION_CODE_TTL", 24*time.Hour),
		ResetCodeTTL:        getDuration("RESET_CODE_TTL", time.Hour),

		SMTPHost:        strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort:        getInt("SMTP_PORT", 587),
		SMTPUsername:    strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		MailFromAddress: strings.TrimSpace(os.Getenv("MAIL_FROM_ADDRESS")),
		MailFromName:    getEnv("MAIL_FROM_NAME", "Account Service"),

		S3Endpoint:  strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    getEnv("S3_BUCKET", "avatars"),
		S3AccessKey: strings.TrimSpace(os.Getenv("S3_ACCESS_KEY")),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),

		ClientURL:     getEnv("CLIENT_URL", "http://localhost:5173"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		CORSOrigins:   splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		MaxAvatarSize: getInt64("MAX_AVATAR_SIZE", 5*1024*1024),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if strings.TrimSpace(c.RedisURL) == "" {
		return fmt.Errorf("REDIS_URL cannot be empty")
	}

	if c.AccessTokenSecret == "" {
		return fmt.Errorf("ACCESS_TOKEN_SECRET is required")
	}

	if c.RefreshTokenSecret == "" {
		return fmt.Errorf("REFRESH_TOKEN_SECRET is required")
	}

	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}

	if c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST is required")
	}

	if c.MailFromAddress == "" {
		return fmt.Errorf("MAIL_FROM_ADDRESS is required")
	}

	if c.S3Endpoint == "" {
		return fmt.Errorf("S3_ENDPOINT is required")
	}

	if c.MaxAvatarSize <= 0 {
		return fmt.Errorf("MAX_AVATAR_SIZE must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getInt64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
