package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	API     APIConfig
	Auth    AuthConfig
	Kafka   KafkaConfig
	Observ  ObservabilityConfig
	Receipt ReceiptConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

// APIConfig describes the remote POS API this agent fronts.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AuthConfig struct {
	CSRFHeader           string
	SessionCookie        string
	CSRFCookie           string
	LoginPath            string
	AuthFailureThreshold int
}

type KafkaConfig struct {
	Brokers  []string
	TopicPOS string
	Enabled  bool
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

type ReceiptConfig struct {
	Dir             string
	SettleDelay     time.Duration
	BusinessName    string
	BusinessAddress string
	BusinessPhone   string
	Currency        string
	TimeZone        string
}

func Load() *Config {
	_ = godotenv.Load()

	timeout, _ := strconv.Atoi(getEnv("POS_API_TIMEOUT_SECONDS", "15"))
	threshold, _ := strconv.Atoi(getEnv("AUTH_FAILURE_THRESHOLD", "3"))
	settle, _ := strconv.Atoi(getEnv("RECEIPT_SETTLE_MILLIS", "150"))
	if threshold <= 0 {
		threshold = 3
	}

	brokers := splitList(getEnv("KAFKA_BROKERS", ""))

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8090"),
			Env:  getEnv("ENV", "development"),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(getEnv("POS_API_BASE", "http://localhost:8080/api"), "/"),
			Timeout: time.Duration(timeout) * time.Second,
		},
		Auth: AuthConfig{
			CSRFHeader:           getEnv("CSRF_HEADER", "X-XSRF-TOKEN"),
			SessionCookie:        getEnv("SESSION_COOKIE", "jwt"),
			CSRFCookie:           getEnv("CSRF_COOKIE", "XSRF-TOKEN"),
			LoginPath:            getEnv("LOGIN_PATH", "/login"),
			AuthFailureThreshold: threshold,
		},
		Kafka: KafkaConfig{
			Brokers:  brokers,
			TopicPOS: getEnv("KAFKA_TOPIC_POS_EVENTS", "pos-events"),
			Enabled:  len(brokers) > 0,
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
		Receipt: ReceiptConfig{
			Dir:             getEnv("RECEIPT_DIR", "./receipts"),
			SettleDelay:     time.Duration(settle) * time.Millisecond,
			BusinessName:    getEnv("BUSINESS_NAME", "YOUR BUSINESS NAME"),
			BusinessAddress: getEnv("BUSINESS_ADDRESS", "Lagos, Nigeria"),
			BusinessPhone:   getEnv("BUSINESS_PHONE", "+234 XXX XXX XXXX"),
			Currency:        getEnv("RECEIPT_CURRENCY", "NGN"),
			TimeZone:        getEnv("RECEIPT_TIMEZONE", "Africa/Lagos"),
		},
	}

	log.Printf("Config loaded: env=%s, port=%s, api=%s", cfg.Server.Env, cfg.Server.Port, cfg.API.BaseURL)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
