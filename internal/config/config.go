package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kitbuilder587/research-bot/internal/domain"
)

var (
	ErrMissingToken     = errors.New("TELEGRAM_BOT_TOKEN is required when telegram is enabled")
	ErrInvalidProvider  = errors.New("invalid default LLM provider")
	ErrInvalidDepth     = errors.New("invalid default research depth")
	ErrInvalidExtractor = errors.New("FETCH_EXTRACTOR must be dom or readability")
	ErrInvalidTimeout   = errors.New("timeouts must be positive")
)

type Config struct {
	HTTP     HTTPConfig
	Telegram TelegramConfig
	LLM      LLMConfig
	Search   SearchConfig
	Fetch    FetchConfig
	Log      LogConfig
	Timeouts TimeoutConfig
	Research ResearchDefaults
}

type HTTPConfig struct {
	Addr        string
	CORSOrigins []string
}

type TelegramConfig struct {
	Enabled bool
	Token   string
}

type LLMConfig struct {
	OpenAI    OpenAIConfig
	Anthropic AnthropicConfig
	Ollama    OllamaConfig
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
}

type AnthropicConfig struct {
	APIKey  string
	BaseURL string
}

type OllamaConfig struct {
	BaseURL string
}

type SearchConfig struct {
	SerperAPIKey  string
	SerperBaseURL string
	WikipediaURL  string
	GitHubURL     string
	GitHubToken   string
}

type FetchConfig struct {
	MaxChars  int
	Extractor string
}

type LogConfig struct {
	Level string
	// Format: json или console, пусто - по уровню
	Format string
}

type TimeoutConfig struct {
	Source time.Duration
	Fetch  time.Duration
	LLM    time.Duration
	// Total - верхняя граница на весь запрос исследования
	Total time.Duration
}

// ResearchDefaults - значения для входов без явных параметров (telegram, CLI)
type ResearchDefaults struct {
	Provider string
	Model    string
	Depth    string
}

// Load читает .env (если есть) и переменные окружения.
// Отсутствие ключей вендоров не ошибка: адаптер сообщит о ней при первом вызове.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTP: HTTPConfig{
			Addr:        getEnvOrDefault("HTTP_ADDR", ":8080"),
			CORSOrigins: getEnvListOrDefault("CORS_ORIGINS", []string{"*"}),
		},
		Telegram: TelegramConfig{
			Enabled: getEnvBoolOrDefault("TELEGRAM_ENABLED", false),
			Token:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		},
		LLM: LLMConfig{
			OpenAI: OpenAIConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				BaseURL: getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			},
			Anthropic: AnthropicConfig{
				APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
				BaseURL: os.Getenv("ANTHROPIC_BASE_URL"),
			},
			Ollama: OllamaConfig{
				BaseURL: getEnvOrDefault("OLLAMA_BASE_URL", "http://localhost:11434"),
			},
		},
		Search: SearchConfig{
			SerperAPIKey:  os.Getenv("SERPER_API_KEY"),
			SerperBaseURL: getEnvOrDefault("SERPER_BASE_URL", "https://google.serper.dev"),
			WikipediaURL:  getEnvOrDefault("WIKIPEDIA_BASE_URL", "https://en.wikipedia.org"),
			GitHubURL:     getEnvOrDefault("GITHUB_BASE_URL", "https://api.github.com"),
			GitHubToken:   os.Getenv("GITHUB_TOKEN"),
		},
		Fetch: FetchConfig{
			MaxChars:  getEnvIntOrDefault("FETCH_MAX_CHARS", 8000),
			Extractor: getEnvOrDefault("FETCH_EXTRACTOR", "dom"),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: os.Getenv("LOG_FORMAT"),
		},
		Timeouts: TimeoutConfig{
			Source: time.Duration(getEnvIntOrDefault("SOURCE_TIMEOUT_SEC", 15)) * time.Second,
			Fetch:  time.Duration(getEnvIntOrDefault("FETCH_TIMEOUT_SEC", 20)) * time.Second,
			LLM:    time.Duration(getEnvIntOrDefault("LLM_TIMEOUT_SEC", 120)) * time.Second,
			Total:  time.Duration(getEnvIntOrDefault("TOTAL_TIMEOUT_SEC", 600)) * time.Second,
		},
		Research: ResearchDefaults{
			Provider: getEnvOrDefault("DEFAULT_PROVIDER", "openai"),
			Model:    getEnvOrDefault("DEFAULT_MODEL", "gpt-4-turbo"),
			Depth:    getEnvOrDefault("DEFAULT_DEPTH", "detailed"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Telegram.Enabled && c.Telegram.Token == "" {
		return ErrMissingToken
	}
	if _, ok := domain.ParseProvider(c.Research.Provider); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidProvider, c.Research.Provider)
	}
	if !domain.Depth(c.Research.Depth).IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidDepth, c.Research.Depth)
	}
	if c.Fetch.Extractor != "dom" && c.Fetch.Extractor != "readability" {
		return ErrInvalidExtractor
	}
	if c.Timeouts.Source <= 0 || c.Timeouts.Fetch <= 0 || c.Timeouts.LLM <= 0 || c.Timeouts.Total <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// список через запятую, пустые элементы выбрасываются
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
