package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StoreFirestore = "firestore"
	StorePostgres  = "postgres"
	StoreMemory    = "memory"

	AuthFirebase = "firebase"
	AuthJWT      = "jwt"
)

type Config struct {
	Port           string
	AppEnv         string
	FrontendOrigin string
	BackendURL     string

	// LLM provider
	AIProvider    string
	GeminiApiKey  string
	GeminiModel   string
	OllamaBaseURL string
	OllamaModel   string

	// Identity provider
	AuthProvider string
	AuthBypass   bool
	DevUserID    string
	JWTSecret    string

	// Firebase / Google Cloud
	FirebaseCredentials string
	FirebaseProjectID   string
	TaskEventsTopic     string

	// Document store
	StoreBackend string
	DatabaseURL  string

	HistoryWindow int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	historyWindow := 5
	if v := os.Getenv("HISTORY_WINDOW"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			historyWindow = parsed
		}
	}

	return &Config{
		Port:                getEnv("PORT", "3001"),
		AppEnv:              getEnv("APP_ENV", EnvProduction),
		FrontendOrigin:      getEnv("FRONTEND_ORIGIN", "http://localhost:5173"),
		BackendURL:          getEnv("BE_DOMAIN", "http://localhost:3001"),
		AIProvider:          getEnv("AI_PROVIDER", "gemini"),
		GeminiApiKey:        getEnv("GEMINI_API_KEY", os.Getenv("REACT_APP_GEMINI_API_KEY")),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:         getEnv("OLLAMA_MODEL", "llama3"),
		AuthProvider:        getEnv("AUTH_PROVIDER", AuthFirebase),
		AuthBypass:          getBool("AUTH_BYPASS"),
		DevUserID:           getEnv("DEV_USER_ID", "dev-user"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		FirebaseProjectID:   getEnv("FIREBASE_PROJECT_ID", ""),
		TaskEventsTopic:     getEnv("TASK_EVENTS_TOPIC", ""),
		StoreBackend:        getEnv("STORE_BACKEND", StoreFirestore),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		HistoryWindow:       historyWindow,
	}
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

// Validate rejects combinations the server must not start with. The auth
// bypass is only honoured in development.
func (c *Config) Validate() error {
	if c.AuthBypass && !c.IsDevelopment() {
		return fmt.Errorf("AUTH_BYPASS requires APP_ENV=%s (got %q)", EnvDevelopment, c.AppEnv)
	}

	switch c.StoreBackend {
	case StoreFirestore, StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if !c.AuthBypass {
		switch c.AuthProvider {
		case AuthFirebase:
		case AuthJWT:
			if c.JWTSecret == "" {
				return errors.New("JWT_SECRET is required for the jwt auth provider")
			}
		default:
			return fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider)
		}
	}

	return nil
}

// NeedsFirebase reports whether a Firebase app has to be initialised.
func (c *Config) NeedsFirebase() bool {
	return c.StoreBackend == StoreFirestore || (!c.AuthBypass && c.AuthProvider == AuthFirebase)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
