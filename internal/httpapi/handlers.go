package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kitbuilder587/research-bot/internal/domain"
	"github.com/kitbuilder587/research-bot/internal/fetch"
	"github.com/kitbuilder587/research-bot/internal/llm"
	"github.com/kitbuilder587/research-bot/internal/report"
	"github.com/kitbuilder587/research-bot/internal/service"
)

const defaultSearchResults = 5

type researchRequest struct {
	Topic    string `json:"topic"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Depth    string `json:"depth"`
	// nil - значение по умолчанию (true)
	IncludeSources *bool `json:"includeSources"`
	// nil - источники по умолчанию, пустой список - ошибка валидации
	Sources    *[]string `json:"sources"`
	MaxResults int       `json:"maxResults"`
}

type completionRequest struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (r researchRequest) toDomain() domain.ResearchRequest {
	provider, _ := domain.ParseProvider(r.Provider)

	req := domain.ResearchRequest{
		Topic:          r.Topic,
		Provider:       provider,
		Model:          r.Model,
		Depth:          domain.Depth(strings.ToLower(strings.TrimSpace(r.Depth))),
		IncludeSources: r.IncludeSources == nil || *r.IncludeSources,
		MaxResults:     r.MaxResults,
	}
	if r.Sources != nil {
		req.Sources = parseSources(*r.Sources)
	}
	return req
}

// неизвестные имена отбрасываются; результат не nil, чтобы не подставились источники по умолчанию
func parseSources(names []string) []domain.SourceKind {
	kinds, _ := domain.ParseSources(names)
	if kinds == nil {
		kinds = []domain.SourceKind{}
	}
	return kinds
}

func (s *Server) handleResearch(c *gin.Context) {
	var body researchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	if s.researchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.researchTimeout)
		defer cancel()
	}

	req := body.toDomain()
	rep, err := s.research.Research(ctx, req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if strings.EqualFold(c.Query("format"), "markdown") {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(req.Topic, rep, report.Options{})))
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (s *Server) handleSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "missing required parameter: query"})
		return
	}

	num := defaultSearchResults
	if raw := c.Query("num"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > domain.MaxResultBudget {
			c.JSON(http.StatusBadRequest, errorResponse{Error: domain.ErrInvalidBudget.Error()})
			return
		}
		num = n
	}

	sources := domain.DefaultSources()
	if raw, ok := c.GetQuery("sources"); ok {
		sources = parseSources(strings.Split(raw, ","))
		if len(sources) == 0 {
			c.JSON(http.StatusBadRequest, errorResponse{Error: domain.ErrNoSources.Error()})
			return
		}
	}

	results := s.search.Aggregate(c.Request.Context(), query, num, sources)
	c.JSON(http.StatusOK, gin.H{"query": query, "results": results})
}

func (s *Server) handleFetch(c *gin.Context) {
	rawURL := strings.TrimSpace(c.Query("url"))
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "missing required parameter: url"})
		return
	}

	content, err := s.fetcher.Fetch(c.Request.Context(), rawURL)
	if errors.Is(err, fetch.ErrEmptyContent) {
		// страница без видимого текста - не ошибка клиента и не сбой
		s.metrics.RecordFetch("empty")
		c.JSON(http.StatusOK, gin.H{"content": ""})
		return
	}
	if err != nil {
		s.metrics.RecordFetch("error")
		s.writeError(c, err)
		return
	}
	s.metrics.RecordFetch("ok")
	c.JSON(http.StatusOK, gin.H{"content": content})
}

func (s *Server) handleCompletion(c *gin.Context) {
	var body completionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	provider, _ := domain.ParseProvider(body.Provider)
	resp, err := s.research.Complete(c.Request.Context(), provider, llm.Request{
		Model:       strings.TrimSpace(body.Model),
		Prompt:      body.Prompt,
		Temperature: body.Temperature,
		MaxTokens:   body.MaxTokens,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// без provider - каталог по всем провайдерам
func (s *Server) handleModels(c *gin.Context) {
	ctx := c.Request.Context()

	raw := c.Query("provider")
	if raw == "" {
		c.JSON(http.StatusOK, gin.H{"providers": s.catalog.All(ctx)})
		return
	}

	id, ok := domain.ParseProvider(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, errorResponse{Error: domain.ErrUnknownProvider.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider": id, "models": s.catalog.Models(ctx, id)})
}

// недоступная Ollama - не ошибка, отдаем пустой список
func (s *Server) handleOllamaModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": s.catalog.Models(c.Request.Context(), domain.ProviderOllama)})
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	logger := s.logger.With(
		zap.String("request_id", service.RequestID(c.Request.Context())),
		zap.String("path", c.FullPath()),
	)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
	} else {
		logger.Info("request rejected", zap.Error(err))
	}
	c.JSON(status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	if errors.Is(err, domain.ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
