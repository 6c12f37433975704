package config

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

type Config struct {
	DB_URL      string
	DBFile      string
	Port        string
	JWTSecret   string
	Environment string

	// Storage settings, fixed at startup.
	StorageRoot    string
	MaxUploadBytes int64

	// Session lifetimes. The idle timeout slides forward on every
	// authenticated request; "remember me" logins get the longer window.
	SessionIdleTimeout     time.Duration
	SessionRememberTimeout time.Duration

	CorsConfig cors.Options
}

var Envs = initConfig()

func initConfig() Config {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("No", envFile, "file found")
	}

	return Config{
		DB_URL:      getEnv("DB_URL", ""),
		DBFile:      getEnv("DB_FILE", "users.db"),
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "not-so-secret-now-is-it?"),
		Environment: getEnv("ENV", "development"),

		StorageRoot:    getEnv("STORAGE_ROOT", defaultStorageRoot()),
		MaxUploadBytes: 16 << 30, // 16 GiB

		SessionIdleTimeout:     30 * time.Minute,
		SessionRememberTimeout: 30 * 24 * time.Hour,

		CorsConfig: CorsConfig(),
	}
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func defaultStorageRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "cloud_storage"
	}
	return filepath.Join(home, "cloud_storage")
}

func CorsConfig() cors.Options {
	return cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
}
