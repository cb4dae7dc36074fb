package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/research-bot/internal/domain"
	"github.com/kitbuilder587/research-bot/internal/fetch"
	"github.com/kitbuilder587/research-bot/internal/llm"
	"github.com/kitbuilder587/research-bot/internal/metrics"
	"github.com/kitbuilder587/research-bot/internal/prompt"
)

// температуры этапов
const (
	summaryTemperature  = 0.5
	analysisTemperature = 0.7
	topicsTemperature   = 0.8
)

type SearchAggregator interface {
	Aggregate(ctx context.Context, query string, budget int, sources []domain.SourceKind) []domain.SearchResult
}

// Generator - вызов LLM по идентификатору провайдера, его реализует llm.Registry
type Generator interface {
	Generate(ctx context.Context, provider domain.ProviderID, req llm.Request) (*llm.Response, error)
}

type ResearchConfig struct {
	FetchTimeout time.Duration
	LLMTimeout   time.Duration
}

type ResearchDeps struct {
	Aggregator SearchAggregator
	Fetcher    fetch.Fetcher
	LLM        Generator
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	Config     ResearchConfig
}

// ResearchService ведет запрос через этапы: валидация, поиск, обогащение, сводка, анализ.
type ResearchService struct {
	aggregator SearchAggregator
	fetcher    fetch.Fetcher
	llm        Generator
	logger     *zap.Logger
	metrics    *metrics.Metrics
	config     ResearchConfig
}

func NewResearchService(deps ResearchDeps) *ResearchService {
	if deps.Config.FetchTimeout == 0 {
		deps.Config.FetchTimeout = 20 * time.Second
	}
	if deps.Config.LLMTimeout == 0 {
		deps.Config.LLMTimeout = 120 * time.Second
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &ResearchService{
		aggregator: deps.Aggregator,
		fetcher:    deps.Fetcher,
		llm:        deps.LLM,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		config:     deps.Config,
	}
}

func (s *ResearchService) Research(ctx context.Context, req domain.ResearchRequest) (*domain.ResearchReport, error) {
	startTime := time.Now()
	s.metrics.IncRequestsInFlight()
	defer s.metrics.DecRequestsInFlight()

	logger := loggerFor(ctx, s.logger)

	req.Normalize()
	if err := req.Validate(); err != nil {
		s.metrics.RecordRequest("research", "validation_error", time.Since(startTime))
		return nil, err
	}

	budget := req.Budget()
	logger.Info("research started",
		zap.String("provider", string(req.Provider)),
		zap.String("model", req.Model),
		zap.String("depth", string(req.Depth)),
		zap.String("sources", domain.JoinSources(req.Sources)),
		zap.Int("result_budget", budget.Results),
		zap.Int("topic_length", len(req.Topic)),
	)

	results := s.aggregator.Aggregate(ctx, req.Topic, budget.Results, req.Sources)

	content := s.enrich(ctx, req.Depth, budget.FetchCount, results)

	summaryPrompt := prompt.Research(req.Topic, content, req.Depth, req.Sources)
	summary, err := s.generate(ctx, "summary", req.Provider, llm.Request{
		Model:       req.Model,
		Prompt:      summaryPrompt,
		Temperature: summaryTemperature,
		MaxTokens:   budget.SummaryTokens,
	})
	if err != nil {
		s.metrics.RecordRequest("research", "generation_error", time.Since(startTime))
		return nil, err
	}

	report := &domain.ResearchReport{
		Summary: summary,
		Sources: []domain.SearchResult{},
	}

	if req.Depth.Deep() {
		analysis, topics, err := s.analyze(ctx, req, budget)
		if err != nil {
			s.metrics.RecordRequest("research", "generation_error", time.Since(startTime))
			return nil, err
		}
		report.DetailedAnalysis = analysis
		report.RelatedTopics = topics
	}

	if req.IncludeSources {
		report.Sources = results
	}

	s.metrics.RecordRequest("research", "success", time.Since(startTime))
	logger.Info("research completed",
		zap.Int("sources", len(results)),
		zap.Int("summary_length", len(report.Summary)),
		zap.Int("related_topics", len(report.RelatedTopics)),
		zap.Duration("duration", time.Since(startTime)),
	)
	return report, nil
}

// enrich собирает контекст для промпта. Для basic - только сниппеты,
// иначе тексты первых n страниц; упавшая страница заменяется своим сниппетом.
func (s *ResearchService) enrich(ctx context.Context, depth domain.Depth, n int, results []domain.SearchResult) string {
	if !depth.Deep() || n <= 0 || s.fetcher == nil {
		snippets := make([]string, len(results))
		for i, r := range results {
			snippets[i] = r.Snippet
		}
		return strings.Join(snippets, "\n\n")
	}

	if n > len(results) {
		n = len(results)
	}
	top := results[:n]

	tasks := make([]task[string], len(top))
	for i, r := range top {
		tasks[i] = func(ctx context.Context) (string, error) {
			return s.fetcher.Fetch(ctx, r.Link)
		}
	}

	logger := loggerFor(ctx, s.logger)
	outcomes := gather(ctx, s.config.FetchTimeout, tasks)

	blocks := make([]string, len(top))
	for i, o := range outcomes {
		if o.Err != nil {
			logger.Warn("page fetch failed, using snippet",
				zap.String("url", top[i].Link),
				zap.String("source", string(top[i].Source)),
				zap.Error(o.Err),
			)
			s.metrics.RecordFetch("error")
			blocks[i] = top[i].Snippet
			continue
		}
		s.metrics.RecordFetch("ok")
		blocks[i] = o.Value
	}
	return strings.Join(blocks, "\n\n")
}

// analyze делает анализ и связанные темы параллельно. Любая ошибка валит оба.
func (s *ResearchService) analyze(ctx context.Context, req domain.ResearchRequest, budget domain.Budget) (string, []string, error) {
	var analysis, topicsRaw string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		analysis, err = s.generate(gctx, "analysis", req.Provider, llm.Request{
			Model:       req.Model,
			Prompt:      prompt.Analysis(req.Topic, req.Sources),
			Temperature: analysisTemperature,
			MaxTokens:   budget.AnalysisTokens,
		})
		return err
	})
	g.Go(func() error {
		var err error
		topicsRaw, err = s.generate(gctx, "related_topics", req.Provider, llm.Request{
			Model:       req.Model,
			Prompt:      prompt.RelatedTopics(req.Topic, req.Sources),
			Temperature: topicsTemperature,
			MaxTokens:   budget.TopicsTokens,
		})
		return err
	})

	if err := g.Wait(); err != nil {
		return "", nil, err
	}
	topics := prompt.ParseTopics(topicsRaw)
	if topics == nil {
		topics = []string{}
	}
	return analysis, topics, nil
}

func (s *ResearchService) generate(ctx context.Context, stage string, provider domain.ProviderID, req llm.Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.LLMTimeout)
	defer cancel()

	start := time.Now()
	resp, err := s.llm.Generate(ctx, provider, req)
	if err != nil {
		s.metrics.RecordLLMRequest(string(provider), stage, "error", time.Since(start))
		loggerFor(ctx, s.logger).Error("llm generation failed",
			zap.String("stage", stage),
			zap.String("provider", string(provider)),
			zap.String("model", req.Model),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %s: %w", domain.ErrGenerationFailed, stage, err)
	}

	s.metrics.RecordLLMRequest(string(provider), stage, "ok", time.Since(start))
	s.metrics.RecordLLMTokens(string(provider), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	return resp.Content, nil
}

// Complete - один вызов LLM без поиска, для /api/completion
func (s *ResearchService) Complete(ctx context.Context, provider domain.ProviderID, req llm.Request) (*llm.Response, error) {
	if !provider.IsValid() {
		if provider == "" {
			return nil, domain.ErrEmptyProvider
		}
		return nil, domain.ErrUnknownProvider
	}
	if strings.TrimSpace(req.Model) == "" {
		return nil, domain.ErrEmptyModel
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, domain.ErrEmptyPrompt
	}
	if req.Temperature == 0 {
		req.Temperature = 0.7
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 10000
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.LLMTimeout)
	defer cancel()

	start := time.Now()
	resp, err := s.llm.Generate(ctx, provider, req)
	if err != nil {
		s.metrics.RecordLLMRequest(string(provider), "completion", "error", time.Since(start))
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	s.metrics.RecordLLMRequest(string(provider), "completion", "ok", time.Since(start))
	s.metrics.RecordLLMTokens(string(provider), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	return resp, nil
}
