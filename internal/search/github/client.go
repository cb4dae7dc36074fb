package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/research-bot/internal/domain"
	"github.com/kitbuilder587/research-bot/internal/search"
)

// MaxResults - больше репозиториев в отчет не берем
const MaxResults = 5

type Config struct {
	// Token опционален, без него действует анонимный лимит GitHub
	Token   string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	token   string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.github.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		token:   cfg.Token,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

type repoSearchResponse struct {
	Items []repoItem `json:"items"`
}

type repoItem struct {
	Name        string `json:"name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
}

func (c *Client) Search(ctx context.Context, req search.SearchRequest) (*search.SearchResponse, error) {
	params := url.Values{}
	params.Set("q", req.Query)
	params.Set("sort", "stars")
	params.Set("order", "desc")
	params.Set("per_page", strconv.Itoa(MaxResults))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/repositories?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/vnd.github.v3+json")
	httpReq.Header.Set("User-Agent", "research-bot/1.0")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	var resp repoSearchResponse
	if err := search.Do(c.client, httpReq, &resp, c.logger); err != nil {
		return nil, err
	}

	items := resp.Items
	if len(items) > MaxResults {
		items = items[:MaxResults]
	}

	results := make([]domain.SearchResult, 0, len(items))
	for i, it := range items {
		results = append(results, domain.SearchResult{
			Title:    it.Name,
			Link:     it.HTMLURL,
			Snippet:  it.Description,
			Source:   domain.SourceGitHub,
			Position: i + 1,
		})
	}

	return &search.SearchResponse{Query: req.Query, Results: results}, nil
}
