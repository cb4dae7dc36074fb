package wikipedia

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/research-bot/internal/domain"
	"github.com/kitbuilder587/research-bot/internal/search"
)

type Config struct {
	// BaseURL - хост MediaWiki API, без /w/api.php
	BaseURL string
	// ArticleURL - префикс ссылок на статьи
	ArticleURL string
	Timeout    time.Duration
}

type Client struct {
	baseURL    string
	articleURL string
	client     *http.Client
	logger     *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://en.wikipedia.org"
	}
	if cfg.ArticleURL == "" {
		cfg.ArticleURL = "https://en.wikipedia.org/wiki/"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		articleURL: cfg.ArticleURL,
		client:     &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type wikiResponse struct {
	Query struct {
		Search []wikiHit `json:"search"`
	} `json:"query"`
}

type wikiHit struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

var tagPattern = regexp.MustCompile(`</?[^>]+(>|$)`)

func (c *Client) Search(ctx context.Context, req search.SearchRequest) (*search.SearchResponse, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", req.Query)
	params.Set("format", "json")
	params.Set("origin", "*")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/w/api.php?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "research-bot/1.0")

	var resp wikiResponse
	if err := search.Do(c.client, httpReq, &resp, c.logger); err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(resp.Query.Search))
	for i, hit := range resp.Query.Search {
		results = append(results, domain.SearchResult{
			Title:    hit.Title,
			Link:     c.ArticleLink(hit.Title),
			Snippet:  cleanSnippet(hit.Snippet),
			Source:   domain.SourceWikipedia,
			Position: i + 1,
		})
	}

	return &search.SearchResponse{Query: req.Query, Results: results}, nil
}

// ArticleLink строит ссылку на статью по заголовку: пробелы -> подчеркивания
func (c *Client) ArticleLink(title string) string {
	return c.articleURL + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}

// в сниппетах MediaWiki подсвечивает совпадения тегами <span class="searchmatch">
func cleanSnippet(s string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(s, ""))
}
