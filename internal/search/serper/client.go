package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/research-bot/internal/domain"
	"github.com/kitbuilder587/research-bot/internal/search"
)

// Endpoint - вертикаль Serper, из которой берем выдачу
type Endpoint string

const (
	EndpointSearch  Endpoint = "search"
	EndpointScholar Endpoint = "scholar"
	EndpointNews    Endpoint = "news"
)

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client ходит в одну вертикаль Serper: web, scholar или news
type Client struct {
	apiKey   string
	baseURL  string
	endpoint Endpoint
	kind     domain.SourceKind
	client   *http.Client
	logger   *zap.Logger
}

func New(cfg Config, endpoint Endpoint, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://google.serper.dev"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:   cfg.APIKey,
		baseURL:  cfg.BaseURL,
		endpoint: endpoint,
		kind:     kindFor(endpoint),
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}
}

func kindFor(e Endpoint) domain.SourceKind {
	switch e {
	case EndpointScholar:
		return domain.SourceScholar
	case EndpointNews:
		return domain.SourceNews
	default:
		return domain.SourceWeb
	}
}

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num,omitempty"`
}

type serperResponse struct {
	Organic []serperItem `json:"organic"`
	News    []serperItem `json:"news"`
}

type serperItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	Publication string `json:"publication"`
	Description string `json:"description"`
}

func (c *Client) Search(ctx context.Context, req search.SearchRequest) (*search.SearchResponse, error) {
	if c.apiKey == "" {
		return nil, search.ErrMissingAPIKey
	}

	sReq := serperRequest{Q: req.Query}
	// num понимает только обычный поиск
	if c.endpoint == EndpointSearch {
		sReq.Num = req.MaxResults
	}

	body, err := json.Marshal(sReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+string(c.endpoint), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-KEY", c.apiKey)

	var resp serperResponse
	if err := search.Do(c.client, httpReq, &resp, c.logger); err != nil {
		return nil, err
	}

	return c.toSearchResponse(req.Query, &resp), nil
}

func (c *Client) toSearchResponse(query string, resp *serperResponse) *search.SearchResponse {
	items := resp.Organic
	if c.endpoint == EndpointNews {
		items = resp.News
	}

	results := make([]domain.SearchResult, 0, len(items))
	for i, it := range items {
		results = append(results, domain.SearchResult{
			Title:    it.Title,
			Link:     it.Link,
			Snippet:  c.snippet(it),
			Source:   c.kind,
			Position: i + 1,
		})
	}

	return &search.SearchResponse{
		Query:   query,
		Results: results,
	}
}

func (c *Client) snippet(it serperItem) string {
	if it.Snippet != "" {
		return it.Snippet
	}
	switch c.endpoint {
	case EndpointScholar:
		return it.Publication
	case EndpointNews:
		return it.Description
	}
	return ""
}
