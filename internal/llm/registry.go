package llm

import (
	"context"
	"fmt"

	"github.com/kitbuilder587/research-bot/internal/domain"
)

// Registry сопоставляет закрытый набор провайдеров с адаптерами. Собирается один раз при старте.
type Registry struct {
	OpenAI    Provider
	Anthropic Provider
	Ollama    Provider
}

// Get возвращает адаптер провайдера. Незарегистрированный адаптер - ErrMissingAPIKey.
func (r *Registry) Get(id domain.ProviderID) (Provider, error) {
	var p Provider
	switch id {
	case domain.ProviderOpenAI:
		p = r.OpenAI
	case domain.ProviderAnthropic:
		p = r.Anthropic
	case domain.ProviderOllama:
		p = r.Ollama
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, id)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: provider %s is not configured", ErrMissingAPIKey, id)
	}
	return p, nil
}

// Generate - Get + Generate, проставляет Provider в ответе
func (r *Registry) Generate(ctx context.Context, id domain.ProviderID, req Request) (*Response, error) {
	p, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	resp, err := p.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	resp.Provider = id
	return resp, nil
}
