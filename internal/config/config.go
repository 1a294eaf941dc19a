package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type GatewayConfig struct {
	Provider   string
	BaseURL    string
	AccountID  string
	AuthScheme string
	Currency   string
	Timeout    time.Duration

	OAuthClientID     string
	OAuthClientSecret string
	OAuthAuthURL      string
	OAuthTokenURL     string
	OAuthRedirectURL  string
	OAuthScopes       []string
}

type NotifyConfig struct {
	SQSQueueURL  string
	AWSRegion    string
	AWSAccessKey string
	AWSSecret    string
	BufferSize   int
	MaxAttempts  int
}

type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	FromName   string
	UseSSL     bool
	RequireTLS bool
	AppName    string
	AppBaseURL string
}

type SweepConfig struct {
	Interval time.Duration
	MinAge   time.Duration
	Batch    int
	AlertTo  string
}

type Config struct {
	Port          string
	Env           string
	PostgresURL   string
	JWTSecret     string
	WebhookSecret string
	NodeID        int64
	CORSOrigin    string

	Gateway GatewayConfig
	Notify  NotifyConfig
	SMTP    SMTPConfig
	Sweep   SweepConfig
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          env("PORT", "8080"),
		Env:           env("APP_ENV", "production"),
		PostgresURL:   os.Getenv("POSTGRES_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),
		NodeID:        cast.ToInt64(env("NODE_ID", "1")),
		CORSOrigin:    env("CORS_ORIGIN", "*"),
		Gateway: GatewayConfig{
			Provider:          env("GATEWAY_PROVIDER", "hosted"),
			BaseURL:           strings.TrimRight(os.Getenv("GATEWAY_BASE_URL"), "/"),
			AccountID:         os.Getenv("GATEWAY_ACCOUNT_ID"),
			AuthScheme:        env("GATEWAY_AUTH_SCHEME", "Bearer"),
			Currency:          env("GATEWAY_CURRENCY", "INR"),
			Timeout:           duration("GATEWAY_TIMEOUT", 30*time.Second),
			OAuthClientID:     os.Getenv("GATEWAY_OAUTH_CLIENT_ID"),
			OAuthClientSecret: os.Getenv("GATEWAY_OAUTH_CLIENT_SECRET"),
			OAuthAuthURL:      os.Getenv("GATEWAY_OAUTH_AUTH_URL"),
			OAuthTokenURL:     os.Getenv("GATEWAY_OAUTH_TOKEN_URL"),
			OAuthRedirectURL:  os.Getenv("GATEWAY_OAUTH_REDIRECT_URL"),
			OAuthScopes:       splitList(os.Getenv("GATEWAY_OAUTH_SCOPES")),
		},
		Notify: NotifyConfig{
			SQSQueueURL:  os.Getenv("NOTIFY_SQS_QUEUE_URL"),
			AWSRegion:    env("AWS_REGION", "ap-south-1"),
			AWSAccessKey: os.Getenv("AWS_ACCESS_KEY"),
			AWSSecret:    os.Getenv("AWS_SECRET"),
			BufferSize:   cast.ToInt(env("NOTIFY_BUFFER_SIZE", "256")),
			MaxAttempts:  cast.ToInt(env("NOTIFY_MAX_ATTEMPTS", "3")),
		},
		SMTP: SMTPConfig{
			Host:       env("SMTP_HOST", "smtp.gmail.com"),
			Port:       cast.ToInt(env("SMTP_PORT", "587")),
			Username:   os.Getenv("SMTP_USERNAME"),
			Password:   os.Getenv("SMTP_PASSWORD"),
			From:       os.Getenv("SMTP_FROM"),
			FromName:   env("SMTP_FROM_NAME", "Storefront"),
			UseSSL:     cast.ToBool(env("SMTP_USE_SSL", "false")),
			RequireTLS: cast.ToBool(env("SMTP_REQUIRE_TLS", "true")),
			AppName:    env("APP_NAME", "Storefront"),
			AppBaseURL: env("APP_BASE_URL", "http://localhost:5173"),
		},
		Sweep: SweepConfig{
			Interval: duration("SWEEP_INTERVAL", 10*time.Minute),
			MinAge:   duration("SWEEP_MIN_AGE", 15*time.Minute),
			Batch:    cast.ToInt(env("SWEEP_BATCH", "50")),
			AlertTo:  os.Getenv("OPS_ALERT_EMAIL"),
		},
	}

	return cfg, nil
}

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// duration accepts Go durations ("30s") or a bare number of seconds.
func duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := cast.ToInt64E(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
		out = append(out, p)
	}
	return out
}
