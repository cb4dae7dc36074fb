package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/kitbuilder587/research-bot/internal/domain"
)

var (
	ErrAuthFailed    = errors.New("authentication failed")
	ErrRequestFailed = errors.New("request failed")
	ErrEmptyResponse = errors.New("empty response")
	ErrRateLimit     = errors.New("rate limit exceeded")
	ErrMissingAPIKey = fmt.Errorf("%w: LLM API key is not set", domain.ErrConfigurationMissing)
)

// Request - нормализованный запрос к любому провайдеру
type Request struct {
	Model       string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Response struct {
	Content  string            `json:"content"`
	Model    string            `json:"model"`
	Provider domain.ProviderID `json:"provider"`
	Usage    Usage             `json:"usage"`
}

// Provider - адаптер одного LLM вендора
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Model - элемент каталога моделей
type Model struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Provider domain.ProviderID `json:"provider"`
}

// ModelLister умеют провайдеры с динамическим списком моделей (Ollama)
type ModelLister interface {
	ListModels(ctx context.Context) ([]Model, error)
}

// NewUsage заполняет TotalTokens
func NewUsage(prompt, completion int) Usage {
	return Usage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}
}
