package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/kitbuilder587/research-bot/internal/domain"
)

var (
	ErrUnauthorized      = errors.New("invalid API key")
	ErrRateLimit         = errors.New("rate limit exceeded")
	ErrInvalidRequest    = errors.New("invalid request parameters")
	ErrSearchFailed      = errors.New("search request failed")
	ErrMalformedResponse = errors.New("malformed search response")
	ErrMissingAPIKey     = fmt.Errorf("%w: search API key is not set", domain.ErrConfigurationMissing)
)

// ответы поисковиков бывают большими, но не настолько
const maxBodySize = 4 << 20

// Searcher - адаптер одного поискового бэкенда
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

type SearchRequest struct {
	Query string
	// MaxResults учитывают только бэкенды, у которых есть такой параметр
	MaxResults int
}

type SearchResponse struct {
	Query   string
	Results []domain.SearchResult
}

// Do выполняет запрос и декодирует JSON-ответ в out, маппя HTTP-статусы на ошибки пакета.
// Неуспешные ответы пишутся в logger на уровне Debug, решение об ошибке принимает вызывающий.
func Do(client *http.Client, req *http.Request, out any, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	url := req.URL.Redacted()

	resp, err := client.Do(req)
	if err != nil {
		logger.Debug("search request failed", zap.String("url", url), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Debug("search API error",
			zap.Int("status", resp.StatusCode),
			zap.String("url", url),
			zap.String("body", truncateBody(body)),
		)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimit
	case resp.StatusCode == http.StatusBadRequest:
		return ErrInvalidRequest
	default:
		return fmt.Errorf("%w: status %d", ErrSearchFailed, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		logger.Debug("malformed search response", zap.String("url", url), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func truncateBody(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
