package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultContentURL is the published question bank.
const DefaultContentURL = "https://raw.githubusercontent.com/rramkr/ani-questions-vercel/main/questions_cache"

// Config holds all application configuration.
type Config struct {
	// ContentURL is the base URL of the question bank. ContentDir, when
	// set, takes precedence and reads the bank from disk.
	ContentURL string
	ContentDir string

	BatchSize int

	// DBPath overrides the default database location.
	DBPath string

	UsersFile string

	// EvaluatorURL is the evaluation endpoint used by the quiz; empty means
	// evaluate in-process when an LLM key is configured.
	EvaluatorURL string

	// EvaluatorAddr is the listen address of `aniquiz serve`.
	EvaluatorAddr string

	// AllowedOrigins controls CORS on the evaluator. Empty permits all.
	AllowedOrigins []string

	BcryptCost int

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file is loaded first if present.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		ContentURL:     getEnv("ANIQUIZ_CONTENT_URL", DefaultContentURL),
		ContentDir:     getEnv("ANIQUIZ_CONTENT_DIR", ""),
		BatchSize:      getEnvInt("ANIQUIZ_BATCH_SIZE", 10),
		DBPath:         getEnv("ANIQUIZ_DB", ""),
		UsersFile:      getEnv("ANIQUIZ_USERS_FILE", ""),
		EvaluatorURL:   getEnv("ANIQUIZ_EVALUATOR_URL", ""),
		EvaluatorAddr:  getEnv("ANIQUIZ_EVALUATOR_ADDR", ":8787"),
		AllowedOrigins: parseOrigins(getEnv("ANIQUIZ_ALLOWED_ORIGINS", "")),
		BcryptCost:     getEnvInt("ANIQUIZ_BCRYPT_COST", 10),
		LogLevel:       getEnv("ANIQUIZ_LOG_LEVEL", "info"),
		LogFormat:      getEnv("ANIQUIZ_LOG_FORMAT", "pretty"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
