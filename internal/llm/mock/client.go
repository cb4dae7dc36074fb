package mock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kitbuilder587/research-bot/internal/llm"
)

// Client - управляемый llm.Provider. Ответ выбирается по первому совпавшему
// маркеру в промпте (Rules), иначе Response.
type Client struct {
	Response string
	Error    error
	Delay    time.Duration
	Rules    []Rule
	Models   []llm.Model
	ListErr  error

	CallCount int
	AllCalls  []llm.Request

	mu sync.Mutex
}

// Rule - если промпт содержит Contains, вернуть Response или Error
type Rule struct {
	Contains string
	Response string
	Error    error
}

func New() *Client {
	return &Client{
		Response: "This is a mock research response.",
	}
}

func (c *Client) WithResponse(response string) *Client {
	c.Response = response
	return c
}

func (c *Client) WithError(err error) *Client {
	c.Error = err
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

func (c *Client) On(contains, response string) *Client {
	c.Rules = append(c.Rules, Rule{Contains: contains, Response: response})
	return c
}

func (c *Client) FailOn(contains string, err error) *Client {
	c.Rules = append(c.Rules, Rule{Contains: contains, Error: err})
	return c
}

func (c *Client) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	c.mu.Lock()
	c.CallCount++
	c.AllCalls = append(c.AllCalls, req)
	response, err, delay := c.Response, c.Error, c.Delay
	for _, r := range c.Rules {
		if strings.Contains(req.Prompt, r.Contains) {
			response, err = r.Response, r.Error
			break
		}
	}
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if err != nil {
		return nil, err
	}

	return &llm.Response{
		Content: response,
		Model:   req.Model,
		Usage:   llm.NewUsage(len(req.Prompt)/4, len(response)/4),
	}, nil
}

func (c *Client) ListModels(ctx context.Context) ([]llm.Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ListErr != nil {
		return nil, c.ListErr
	}
	return c.Models, nil
}

func (c *Client) Calls() []llm.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]llm.Request(nil), c.AllCalls...)
}

func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CallCount = 0
	c.AllCalls = nil
}

var (
	_ llm.Provider    = (*Client)(nil)
	_ llm.ModelLister = (*Client)(nil)
)
