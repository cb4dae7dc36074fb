package domain

import "strings"

// ProviderID - LLM провайдер. Набор закрытый, адаптеры регистрируются при старте.
type ProviderID string

const (
	ProviderOpenAI    ProviderID = "openai"
	ProviderAnthropic ProviderID = "anthropic"
	ProviderOllama    ProviderID = "ollama"
)

// Providers - все поддерживаемые провайдеры
func Providers() []ProviderID {
	return []ProviderID{ProviderOpenAI, ProviderAnthropic, ProviderOllama}
}

func ParseProvider(s string) (ProviderID, bool) {
	p := ProviderID(strings.ToLower(strings.TrimSpace(s)))
	return p, p.IsValid()
}

func (p ProviderID) IsValid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderOllama:
		return true
	}
	return false
}

func (p ProviderID) String() string { return string(p) }
