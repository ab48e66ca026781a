package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ModelProvider   string
	AnthropicAPIKey string
	AnthropicModel  string
	OpenAIAPIKey    string
	OpenAIModel     string
	Port            string
	DBPath          string
	TempDir         string
	OutputDir       string
	MaxUploadSize   int64
}

// APIKey returns the credential for the active model provider.
func (c *Config) APIKey() string {
	if c.ModelProvider == "openai" {
		return c.OpenAIAPIKey
	}
	return c.AnthropicAPIKey
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		ModelProvider:   getEnv("MODEL_PROVIDER", "openai"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o"),
		Port:            getEnv("PORT", "8080"),
		DBPath:          getEnv("DB_PATH", "./storage/traingen.db"),
		TempDir:         getEnv("TEMP_DIR", "./storage/temp"),
		OutputDir:       getEnv("OUTPUT_DIR", "./storage/output"),
		MaxUploadSize:   52428800, // 50MB default
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
