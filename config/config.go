package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	// HTTP Server
	Port string `yaml:"port"`

	// Database. Empty keeps everything in memory.
	DatabaseURL string `yaml:"database_url"`

	// LLM
	LLMProvider    string  `yaml:"llm_provider"`
	GeminiAPIKey   string  `yaml:"gemini_api_key"`
	OpenAIAPIKey   string  `yaml:"openai_api_key"`
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	RequestTimeout int     `yaml:"request_timeout_seconds"`

	// AMQP. Empty disables event publishing.
	AMQPURL      string `yaml:"amqp_url"`
	AMQPExchange string `yaml:"amqp_exchange"`

	// Logging
	LogLevel       string `yaml:"log_level"`
	LogDevelopment bool   `yaml:"log_development"`
}

func defaults() *Config {
	return &Config{
		Port:           "3000",
		LLMProvider:    ProviderGemini,
		Temperature:    0.7,
		RequestTimeout: 30,
		AMQPExchange:   "money-dog",
		LogLevel:       "info",
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if cfg.Model == "" {
		cfg.Model = defaultModel(cfg.LLMProvider)
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.Port = getEnv("PORT", c.Port)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)

	c.LLMProvider = strings.ToLower(getEnv("LLM_PROVIDER", c.LLMProvider))
	// API_KEY is the name the web build used.
	c.GeminiAPIKey = getEnv("API_KEY", c.GeminiAPIKey)
	c.GeminiAPIKey = getEnv("GEMINI_API_KEY", c.GeminiAPIKey)
	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.Model = getEnv("LLM_MODEL", c.Model)
	c.Temperature = getEnvFloat("LLM_TEMPERATURE", c.Temperature)
	c.RequestTimeout = getEnvInt("LLM_TIMEOUT_SECONDS", c.RequestTimeout)

	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogDevelopment = getEnvBool("LOG_DEVELOPMENT", c.LogDevelopment)
}

func defaultModel(provider string) string {
	if provider == ProviderOpenAI {
		return "gpt-4o-mini"
	}
	return "gemini-2.5-flash"
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.LLMProvider {
	case ProviderGemini, ProviderOpenAI:
	default:
		errors = append(errors, fmt.Sprintf("invalid llm provider '%s': must be one of [%s %s]", c.LLMProvider, ProviderGemini, ProviderOpenAI))
	}

	// A missing API key is not fatal: the companion answers with its
	// connection-lost line until a key is configured.

	if c.Temperature < 0 || c.Temperature > 2 {
		errors = append(errors, fmt.Sprintf("invalid temperature %v: must be between 0 and 2", c.Temperature))
	}
	if c.RequestTimeout < 1 {
		errors = append(errors, fmt.Sprintf("invalid request timeout %d: must be at least 1 second", c.RequestTimeout))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// APIKey returns the credential for the selected provider.
func (c *Config) APIKey() string {
	if c.LLMProvider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
