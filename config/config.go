package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	OpenAIAPIKey  string
	GWDGAPIKey    string
	OpenAIBaseURL string
	GWDGBaseURL   string
	WLOBaseURL    string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[INFO] No .env file found, using environment variables")
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		GWDGAPIKey:    os.Getenv("GWDG_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		GWDGBaseURL:   getEnv("GWDG_BASE_URL", "https://chat-ai.academiccloud.de/v1"),
		WLOBaseURL:    getEnv("WLO_BASE_URL", "https://redaktion.openeduhub.net/edu-sharing"),
	}
}

// HasLLMCredentials reports whether at least one chat provider is usable.
func (c *Config) HasLLMCredentials() bool {
	return c.OpenAIAPIKey != "" || c.GWDGAPIKey != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
