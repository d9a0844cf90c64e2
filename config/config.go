package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/qs-lzh/yamdb/internal/util"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

type Config struct {
	DatabaseDSN string
	Addr        string
	CacheURL    string
	MQURL       string

	JWTSecret           string
	ConfirmationSecret  string
	AccessTokenTTL      time.Duration
	ConfirmationCodeTTL time.Duration

	SMTPAddr     string
	SMTPUsername string
	SMTPPassword string
	SMTPTimeout  time.Duration
	MailFrom     string

	LogLevel string
	AppEnv   string
}

func LoadConfig() (*Config, error) {
	if err := util.LoadEnv(); err != nil {
		return nil, err
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	accessTokenTTL, err := util.GetEnvDuration("ACCESS_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_TTL: %w", err)
	}
	confirmationCodeTTL, err := util.GetEnvDuration("CONFIRMATION_CODE_TTL", 72*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid CONFIRMATION_CODE_TTL: %w", err)
	}
	smtpTimeout, err := util.GetEnvDuration("SMTP_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_TIMEOUT: %w", err)
	}

	return &Config{
		DatabaseDSN: os.Getenv("DATABASE_DSN"),
		Addr:        util.GetEnvDefault("ADDR", ":8000"),
		CacheURL:    os.Getenv("CACHE_URL"),
		MQURL:       os.Getenv("RABBIT_MQ_URL"),

		JWTSecret:           jwtSecret,
		ConfirmationSecret:  util.GetEnvDefault("CONFIRMATION_SECRET", jwtSecret),
		AccessTokenTTL:      accessTokenTTL,
		ConfirmationCodeTTL: confirmationCodeTTL,

		SMTPAddr:     os.Getenv("SMTP_ADDR"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPTimeout:  smtpTimeout,
		MailFrom:     util.GetEnvDefault("MAIL_FROM", "noreply@yamdb.local"),

		LogLevel: util.GetEnvDefault("LOG_LEVEL", "info"),
		AppEnv:   util.GetEnvDefault("APP_ENV", "production"),
	}, nil
}
