package llm

import (
	"context"

	"go.uber.org/zap"

	"github.com/kitbuilder587/research-bot/internal/domain"
)

var openAIModels = []Model{
	{ID: "gpt-4-turbo-preview", Name: "GPT-4 Turbo Preview (128K)"},
	{ID: "gpt-4-1106-preview", Name: "GPT-4 Turbo 1106 (128K)"},
	{ID: "gpt-4-vision-preview", Name: "GPT-4 Vision (128K)"},
	{ID: "gpt-4-32k", Name: "GPT-4 32K"},
	{ID: "gpt-4", Name: "GPT-4 (8K)"},
	{ID: "gpt-4-turbo", Name: "GPT-4 Turbo (128K)"},
	{ID: "gpt-3.5-turbo-16k", Name: "GPT-3.5 Turbo 16K"},
	{ID: "gpt-3.5-turbo", Name: "GPT-3.5 Turbo (4K)"},
}

var anthropicModels = []Model{
	{ID: "claude-3-5-sonnet-20240620", Name: "Claude 3.5 Sonnet (200K)"},
	{ID: "claude-3-opus-20240229", Name: "Claude 3 Opus (200K)"},
	{ID: "claude-3-sonnet-20240229", Name: "Claude 3.0 Sonnet (200K)"},
	{ID: "claude-3-haiku-20240307", Name: "Claude 3 Haiku (200K)"},
}

// Catalog - список моделей: статический для облачных провайдеров, живой для Ollama
type Catalog struct {
	ollama ModelLister
	logger *zap.Logger
}

func NewCatalog(ollama ModelLister, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{ollama: ollama, logger: logger}
}

// Models никогда не возвращает ошибку: недоступная Ollama дает пустой список
func (c *Catalog) Models(ctx context.Context, id domain.ProviderID) []Model {
	switch id {
	case domain.ProviderOpenAI:
		return withProvider(openAIModels, id)
	case domain.ProviderAnthropic:
		return withProvider(anthropicModels, id)
	case domain.ProviderOllama:
		if c.ollama == nil {
			return []Model{}
		}
		models, err := c.ollama.ListModels(ctx)
		if err != nil {
			c.logger.Warn("ollama model listing failed", zap.Error(err))
			return []Model{}
		}
		return models
	}
	return []Model{}
}

// All - каталог по всем провайдерам из domain.Providers()
func (c *Catalog) All(ctx context.Context) map[domain.ProviderID][]Model {
	out := make(map[domain.ProviderID][]Model, len(domain.Providers()))
	for _, id := range domain.Providers() {
		out[id] = c.Models(ctx, id)
	}
	return out
}

func withProvider(models []Model, id domain.ProviderID) []Model {
	out := make([]Model, len(models))
	for i, m := range models {
		m.Provider = id
		out[i] = m
	}
	return out
}
