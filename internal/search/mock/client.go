package mock

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/kitbuilder587/research-bot/internal/domain"
	"github.com/kitbuilder587/research-bot/internal/search"
)

var _ search.Searcher = (*Client)(nil)

// Client - управляемый Searcher для тестов агрегатора и хендлеров
type Client struct {
	Results []domain.SearchResult
	Error   error
	Delay   time.Duration

	CallCount   int
	LastRequest search.SearchRequest
	AllRequests []search.SearchRequest

	mu sync.Mutex
}

func New() *Client {
	return &Client{}
}

func (c *Client) WithResults(results []domain.SearchResult) *Client {
	c.Results = results
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

func (c *Client) Search(ctx context.Context, req search.SearchRequest) (*search.SearchResponse, error) {
	c.mu.Lock()
	c.CallCount++
	c.LastRequest = req
	c.AllRequests = append(c.AllRequests, req)
	delay := c.Delay
	err := c.Error
	results := append([]domain.SearchResult(nil), c.Results...)
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

	return &search.SearchResponse{
		Query:   req.Query,
		Results: results,
	}, nil
}

func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CallCount
}

func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CallCount = 0
	c.LastRequest = search.SearchRequest{}
	c.AllRequests = nil
}

// MakeResults строит n результатов одного источника со ссылками prefix/1..n
func MakeResults(kind domain.SourceKind, prefix string, n int) []domain.SearchResult {
	out := make([]domain.SearchResult, n)
	for i := range out {
		out[i] = domain.SearchResult{
			Title:    string(kind) + " result",
			Link:     prefix + "/" + strconv.Itoa(i+1),
			Snippet:  string(kind) + " snippet",
			Source:   kind,
			Position: i + 1,
		}
	}
	return out
}
