package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Auth     AuthConfig
	OAuth    OAuthConfig
	LLM      LLMConfig
	Persona  PersonaConfig
	Search   SearchConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	LLMLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	GuestStore         string // "memory" or "redis"
	GuestTTL           time.Duration
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

// AuthConfig holds the local session settings. StateSecret signs the OAuth
// state parameter; it never signs session tokens.
type AuthConfig struct {
	StateSecret     string
	SessionLifetime time.Duration
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type LLMConfig struct {
	Provider      string // "groq", "openai" or "ollama"
	BaseURL       string
	DefaultModel  string
	Timeout       time.Duration
	Temperature   float64
	MaxTokens     int
	OllamaBaseURL string
}

// PersonaConfig carries one upstream credential per persona and the pause
// between the two replies of a turn.
type PersonaConfig struct {
	LeoAPIKey      string
	MaxAPIKey      string
	Tutor1APIKey   string
	Tutor2APIKey   string
	PacingInterval time.Duration
	ContextWindow  int
}

type SearchConfig struct {
	URL   string
	Model string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LLMLogFilePath:     getEnv("LLM_LOG_FILE_PATH", "logs/llm.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			GuestStore:         getEnv("GUEST_STORE", "memory"),
			GuestTTL:           time.Duration(getEnvAsInt("GUEST_TTL_MINUTES", 60)) * time.Minute,
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Tria Chat"),
		},
		Auth: AuthConfig{
			StateSecret:     getEnv("OAUTH_STATE_SECRET", ""),
			SessionLifetime: time.Duration(getEnvAsInt("SESSION_LIFETIME_DAYS", 30)) * 24 * time.Hour,
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:3000/api/auth/v1/google/callback"),
		},
		LLM: LLMConfig{
			Provider:      getEnv("LLM_PROVIDER", "groq"),
			BaseURL:       getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
			DefaultModel:  getEnv("LLM_DEFAULT_MODEL", "llama-3.1-8b-instant"),
			Timeout:       time.Duration(getEnvAsInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
			Temperature:   getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			MaxTokens:     getEnvAsInt("LLM_MAX_TOKENS", 500),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Persona: PersonaConfig{
			LeoAPIKey:      getEnv("PERSONA_LEO_API_KEY", ""),
			MaxAPIKey:      getEnv("PERSONA_MAX_API_KEY", ""),
			Tutor1APIKey:   getEnv("PERSONA_TUTOR1_API_KEY", ""),
			Tutor2APIKey:   getEnv("PERSONA_TUTOR2_API_KEY", ""),
			PacingInterval: time.Duration(getEnvAsInt("PERSONA_PACING_INTERVAL_MS", 1500)) * time.Millisecond,
			ContextWindow:  getEnvAsInt("PERSONA_CONTEXT_WINDOW", 5),
		},
		Search: SearchConfig{
			URL:   getEnv("SEARCH_API_URL", ""),
			Model: getEnv("SEARCH_MODEL", "gpt-4o-mini-search-preview"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
