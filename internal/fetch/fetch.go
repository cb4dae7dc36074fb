package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kitbuilder587/research-bot/internal/domain"
)

var (
	ErrFetchFailed  = errors.New("fetch failed")
	ErrBadStatus    = errors.New("unexpected response status")
	ErrParseFailed  = errors.New("parse html failed")
	ErrEmptyContent = errors.New("no readable content")
)

const (
	DefaultMaxChars = 8000
	maxBodySize     = 4 << 20
	truncateSuffix  = "..."
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Fetcher достает видимый текст страницы
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Extractor превращает сырой HTML в текст. Нормализацию и обрезку делает Client.
type Extractor interface {
	Extract(body []byte, pageURL *url.URL) (string, error)
}

type Config struct {
	Timeout  time.Duration
	MaxChars int
	// Extractor: "dom" (по умолчанию) или "readability"
	Extractor string
}

type Client struct {
	client    *http.Client
	extractor Extractor
	maxChars  int
	logger    *zap.Logger
}

var _ Fetcher = (*Client)(nil)

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultMaxChars
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var ext Extractor = DOMExtractor{}
	if cfg.Extractor == "readability" {
		ext = ReadabilityExtractor{}
	}

	return &Client{
		client:    &http.Client{Timeout: cfg.Timeout},
		extractor: ext,
		maxChars:  cfg.MaxChars,
		logger:    logger,
	}
}

func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", domain.ErrEmptyURL
	}

	pageURL, err := url.Parse(rawURL)
	if err != nil || pageURL.Host == "" {
		return "", fmt.Errorf("%w: %q is not an absolute url", domain.ErrInvalidRequest, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrFetchFailed, err)
	}

	text, err := c.extractor.Extract(body, pageURL)
	if err != nil {
		return "", err
	}

	text = Truncate(Normalize(text), c.maxChars)
	if text == "" {
		return "", ErrEmptyContent
	}

	c.logger.Debug("page fetched",
		zap.String("url", rawURL),
		zap.Int("chars", utf8.RuneCountInString(text)),
	)
	return text, nil
}

var spacePattern = regexp.MustCompile(`[\s\p{Cc}]+`)

// Normalize схлопывает пробелы и управляющие символы в один пробел
func Normalize(s string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

// Truncate режет по символам, а не байтам, и дописывает "..."
func Truncate(s string, maxChars int) string {
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxChars]) + truncateSuffix
}
