package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// OTP delivery modes. "email" sends the code over SMTP; "response" returns it
// directly in the signup response, which discloses the code to whoever can
// read the HTTP response and is intended for local development only.
const (
	OTPDeliveryEmail    = "email"
	OTPDeliveryResponse = "response"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string
	MySQLDSN   string
	RedisAddr  string
	RedisDB    int
	RedisPass  string
	JWTSecret  string

	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	FromEmail string

	SearchAPIKey   string
	SearchEngineID string
	SearchTimeout  time.Duration

	GeminiAPIKey   string
	AssistantModel string
	AssistantMode  string
	ModelTimeout   time.Duration

	OTPDelivery string
}

// Load builds Config from environment with sensible defaults. A local .env
// file is loaded first if present. Missing SMTP, search, or Gemini
// credentials are allowed; the corresponding feature degrades instead of
// failing startup.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded configuration from .env")
	}

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		MySQLDSN:   getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/scholarchat?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:    getEnvInt("REDIS_DB", 0),
		RedisPass:  os.Getenv("REDIS_PASSWORD"),
		JWTSecret:  os.Getenv("JWT_SECRET"),

		SMTPHost:  os.Getenv("SMTP_HOST"),
		SMTPPort:  getEnvInt("SMTP_PORT", 587),
		SMTPUser:  os.Getenv("SMTP_USER"),
		SMTPPass:  os.Getenv("SMTP_PASSWORD"),
		FromEmail: getEnv("FROM_EMAIL", os.Getenv("SMTP_USER")),

		SearchAPIKey:   os.Getenv("GOOGLE_API_KEY"),
		SearchEngineID: os.Getenv("SEARCH_ENGINE_ID"),
		SearchTimeout:  getEnvDuration("SEARCH_TIMEOUT", 5*time.Second),

		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		AssistantModel: getEnv("ASSISTANT_MODEL", "gemini-2.0-flash-lite"),
		AssistantMode:  getEnv("ASSISTANT_MODE", "search"),
		ModelTimeout:   getEnvDuration("MODEL_TIMEOUT", 30*time.Second),

		OTPDelivery: otpDelivery(),
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = randomSecret()
		log.Println("JWT_SECRET not set, generated a random secret; sessions will not survive a restart")
	}

	return cfg
}

// otpDelivery validates OTP_DELIVERY; an unrecognized value falls back to
// email rather than silently disabling both delivery paths.
func otpDelivery() string {
	switch v := getEnv("OTP_DELIVERY", OTPDeliveryEmail); v {
	case OTPDeliveryEmail, OTPDeliveryResponse:
		return v
	default:
		log.Printf("OTP_DELIVERY=%q not recognized, using %q", v, OTPDeliveryEmail)
		return OTPDeliveryEmail
	}
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("generate session secret: %v", err)
	}
	return hex.EncodeToString(buf)
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

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
