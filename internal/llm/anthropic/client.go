package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	lcanthropic "github.com/tmc/langchaingo/llms/anthropic"
	"go.uber.org/zap"

	"github.com/kitbuilder587/research-bot/internal/llm"
)

const defaultModel = "claude-3-sonnet-20240229"

type Config struct {
	APIKey string
	// BaseURL вместе с /v1, например https://api.anthropic.com/v1
	BaseURL string
	Timeout time.Duration
}

// Client ходит в Messages API через langchaingo
type Client struct {
	model   *lcanthropic.LLM
	timeout time.Duration
	logger  *zap.Logger
	initErr error
}

var _ llm.Provider = (*Client)(nil)

// New не падает без ключа: ошибка конфигурации всплывет при первом Generate
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{timeout: cfg.Timeout, logger: logger}
	if cfg.APIKey == "" {
		c.initErr = llm.ErrMissingAPIKey
		return c
	}

	opts := []lcanthropic.Option{
		lcanthropic.WithToken(cfg.APIKey),
		lcanthropic.WithModel(defaultModel),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, lcanthropic.WithBaseURL(cfg.BaseURL))
	}

	model, err := lcanthropic.New(opts...)
	if err != nil {
		c.initErr = fmt.Errorf("%w: init anthropic client: %v", llm.ErrRequestFailed, err)
		return c
	}
	c.model = model
	return c
}

func (c *Client) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if c.initErr != nil {
		return nil, c.initErr
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.model.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt)},
		llms.WithModel(req.Model),
		llms.WithTemperature(req.Temperature),
		llms.WithMaxTokens(req.MaxTokens),
	)
	if err != nil {
		return nil, c.mapError(err)
	}

	for _, choice := range resp.Choices {
		if choice == nil || choice.Content == "" {
			continue
		}
		return &llm.Response{
			Content: choice.Content,
			Model:   req.Model,
			Usage: llm.NewUsage(
				intInfo(choice.GenerationInfo, "InputTokens"),
				intInfo(choice.GenerationInfo, "OutputTokens"),
			),
		}, nil
	}
	return nil, llm.ErrEmptyResponse
}

// langchaingo не экспортирует типизированные ошибки статуса, смотрим на текст
func (c *Client) mapError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "401"), strings.Contains(msg, "authentication_error"):
		return fmt.Errorf("%w: %v", llm.ErrAuthFailed, err)
	case strings.Contains(msg, "429"), strings.Contains(msg, "rate_limit_error"):
		return fmt.Errorf("%w: %v", llm.ErrRateLimit, err)
	}
	c.logger.Error("anthropic request failed", zap.Error(err))
	return fmt.Errorf("%w: %v", llm.ErrRequestFailed, err)
}

func intInfo(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
