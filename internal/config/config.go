// Package config provides configuration loading and validation for the service.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the service configuration read from the environment.
type Config struct {
	DatabaseURL string // PostgreSQL connection URL
	Port        int    // HTTP listen port

	GeminiAPIKey string // Gemini API key
	GeminiModel  string // Gemini model name

	MaxDocumentTokens int    // upper bound on estimated tokens per uploaded document
	TokenizerModel    string // model name used for token estimation
}

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultPort              = 8000
	DefaultGeminiModel       = "gemini-2.5-flash"
	DefaultMaxDocumentTokens = 12000
	DefaultTokenizerModel    = "gpt-4"
)

// Load reads the service configuration from environment variables.
// DATABASE_URL and GEMINI_API_KEY are required; everything else has a default.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		Port:              DefaultPort,
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       envOr("GEMINI_MODEL", DefaultGeminiModel),
		MaxDocumentTokens: DefaultMaxDocumentTokens,
		TokenizerModel:    envOr("TOKENIZER_MODEL", DefaultTokenizerModel),
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %v", err)
		}
		cfg.Port = port
	}

	if maxStr := os.Getenv("MAX_DOCUMENT_TOKENS"); maxStr != "" {
		max, err := strconv.Atoi(maxStr)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_DOCUMENT_TOKENS: %v", err)
		}
		cfg.MaxDocumentTokens = max
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required but not set")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required but not set")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.MaxDocumentTokens < 1 {
		return fmt.Errorf("MAX_DOCUMENT_TOKENS must be positive, got: %d", c.MaxDocumentTokens)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
