package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultGatewayURL = "https://ai.gateway.lovable.dev/v1/chat/completions"
	defaultModel      = "google/gemini-2.5-flash"
)

type Config struct {
	GatewayAPIKey   string
	GatewayURL      string
	Model           string
	DatabaseURL     string
	HTTPPort        string
	LogLevel        string
	LogMode         string
	JWTSecret       string
	TokenTTLHours   int
	RelayURL        string
	RelayRateRPM    int
	AutoVerifyPros  bool
	RelayPathPrefix string
	PublicURL       string
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		GatewayAPIKey:   getEnv("AI_GATEWAY_API_KEY", ""),
		GatewayURL:      getEnv("AI_GATEWAY_URL", defaultGatewayURL),
		Model:           getEnv("AI_MODEL", defaultModel),
		DatabaseURL:     getEnv("DATABASE_URL", "safe_space.db"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		LogLevel:        strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
		LogMode:         getEnv("LOG_MODE", "development"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		TokenTTLHours:   getEnvAsInt("TOKEN_TTL_HOURS", 24),
		RelayURL:        getEnv("RELAY_URL", ""),
		RelayRateRPM:    getEnvAsInt("RELAY_RATE_LIMIT_RPM", 30),
		AutoVerifyPros:  getEnvAsBool("AUTO_VERIFY_PROFESSIONALS", false),
		RelayPathPrefix: "/functions/v1/chat",
		PublicURL:       strings.TrimRight(getEnv("PUBLIC_URL", ""), "/"),
	}

	// LOVABLE_API_KEY is the name the hosted edge function used.
	if AppConfig.GatewayAPIKey == "" {
		AppConfig.GatewayAPIKey = getEnv("LOVABLE_API_KEY", "")
	}
	if AppConfig.RelayURL == "" {
		AppConfig.RelayURL = "http://127.0.0.1:" + AppConfig.HTTPPort + AppConfig.RelayPathPrefix
	}
	// Links in the article feed are built from PUBLIC_URL, never from the
	// request's Host header.
	if AppConfig.PublicURL == "" {
		AppConfig.PublicURL = "http://localhost:" + AppConfig.HTTPPort
	}

	// A missing gateway key is reported per request by the relay, not here.
	if AppConfig.GatewayAPIKey == "" {
		log.Println("AI_GATEWAY_API_KEY is not set; relay requests will fail with 500")
	}

	if AppConfig.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
