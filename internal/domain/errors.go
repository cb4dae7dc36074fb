package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrProviderUnavailable  = errors.New("provider unavailable")
	ErrGenerationFailed     = errors.New("generation failed")
	ErrConfigurationMissing = errors.New("configuration missing")
)

// все ошибки валидации оборачивают ErrInvalidRequest, транспорт отдает по ним 400
var (
	ErrEmptyTopic      = fmt.Errorf("%w: topic is required", ErrInvalidRequest)
	ErrTopicTooLong    = fmt.Errorf("%w: topic is too long", ErrInvalidRequest)
	ErrEmptyProvider   = fmt.Errorf("%w: provider is required", ErrInvalidRequest)
	ErrUnknownProvider = fmt.Errorf("%w: unknown provider", ErrInvalidRequest)
	ErrEmptyModel      = fmt.Errorf("%w: model is required", ErrInvalidRequest)
	ErrInvalidDepth    = fmt.Errorf("%w: unknown depth", ErrInvalidRequest)
	ErrNoSources       = fmt.Errorf("%w: no search sources selected", ErrInvalidRequest)
	ErrInvalidBudget   = fmt.Errorf("%w: result budget out of range", ErrInvalidRequest)
	ErrEmptyURL        = fmt.Errorf("%w: url is required", ErrInvalidRequest)
	ErrEmptyPrompt     = fmt.Errorf("%w: prompt is required", ErrInvalidRequest)
)
