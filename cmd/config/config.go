package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Profile     string
	Log         LogConfig
	API         APIConfig
	GRPC        GRPCConfig
	WebSocket   WebSocketConfig
	Redis       RedisConfig
	RabbitMQ    RabbitMQConfig
	Auth        AuthConfig
	Payment     PaymentConfig
	Metrics     MetricsConfig
}

type LogConfig struct {
	Level string
	File  string
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type GRPCConfig struct {
	Target          string
	TrackStockRoute string
}

type WebSocketConfig struct {
	ReconnectAttempts int
	ReconnectInterval time.Duration
	HandshakeTimeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Timeout  time.Duration
}

type RabbitMQConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Exchange string
}

type AuthConfig struct {
	TokenTTL time.Duration
}

type PaymentConfig struct {
	ClientKey string
}

type MetricsConfig struct {
	Addr string
}

// Load reads .env (if any) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Profile:     getEnv("TELUHUB_PROFILE", "default"),
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", ""),
			File:  getEnv("LOG_FILE", ""),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8910/api/v1"), "/"),
			Timeout: getEnvDuration("API_TIMEOUT", 15*time.Second),
		},
		GRPC: GRPCConfig{
			Target:          getEnv("GRPC_URL", "localhost:8081"),
			TrackStockRoute: getEnv("GRPC_TRACK_STOCK_METHOD", "/stock.StockService/TrackStock"),
		},
		WebSocket: WebSocketConfig{
			ReconnectAttempts: getEnvInt("WS_RECONNECT_ATTEMPTS", 10),
			ReconnectInterval: getEnvDuration("WS_RECONNECT_INTERVAL", 3*time.Second),
			HandshakeTimeout:  getEnvDuration("WS_HANDSHAKE_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Timeout:  getEnvDuration("REDIS_TIMEOUT", 2*time.Second),
		},
		RabbitMQ: RabbitMQConfig{
			Host:     getEnv("RABBITMQ_HOST", "localhost"),
			Port:     getEnvInt("RABBITMQ_PORT", 5672),
			User:     getEnv("RABBITMQ_USER", "guest"),
			Password: getEnv("RABBITMQ_PASSWORD", "guest"),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "teluhub.events"),
		},
		Auth: AuthConfig{
			TokenTTL: getEnvDuration("TOKEN_TTL", 72*time.Hour),
		},
		Payment: PaymentConfig{
			ClientKey: getEnv("PAYMENT_CLIENT_KEY", ""),
		},
		Metrics: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", ""),
		},
	}
}

// WebSocketBaseURL is the API base URL with its http(s) scheme swapped for ws(s).
func (c *Config) WebSocketBaseURL() string {
	base := c.API.BaseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	default:
		return base
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
