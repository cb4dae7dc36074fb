package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/research-bot/internal/domain"
	"github.com/kitbuilder587/research-bot/internal/metrics"
	"github.com/kitbuilder587/research-bot/internal/search"
)

type AggregatorConfig struct {
	// SourceTimeout - таймаут одного поискового бэкенда
	SourceTimeout time.Duration
}

type AggregatorDeps struct {
	Searchers map[domain.SourceKind]search.Searcher
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
	Config    AggregatorConfig
}

// Aggregator опрашивает выбранные источники параллельно и сливает выдачу.
// Упавший источник превращается в пустой список, сам вызов не падает никогда.
type Aggregator struct {
	searchers map[domain.SourceKind]search.Searcher
	logger    *zap.Logger
	metrics   *metrics.Metrics
	config    AggregatorConfig
}

func NewAggregator(deps AggregatorDeps) *Aggregator {
	if deps.Config.SourceTimeout == 0 {
		deps.Config.SourceTimeout = 15 * time.Second
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Aggregator{
		searchers: deps.Searchers,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		config:    deps.Config,
	}
}

// Aggregate возвращает не больше budget результатов без повторов по ссылке.
// budget <= 0 - без ограничения.
func (a *Aggregator) Aggregate(ctx context.Context, query string, budget int, sources []domain.SourceKind) []domain.SearchResult {
	logger := loggerFor(ctx, a.logger)
	sources = domain.DistinctSources(sources)

	tasks := make([]task[[]domain.SearchResult], len(sources))
	for i, src := range sources {
		tasks[i] = func(ctx context.Context) ([]domain.SearchResult, error) {
			return a.searchOne(ctx, src, query, budget)
		}
	}

	outcomes := gather(ctx, a.config.SourceTimeout, tasks)

	bySource := make(map[domain.SourceKind][]domain.SearchResult, len(sources))
	for i, o := range outcomes {
		if o.Err != nil {
			logger.Warn("search source failed",
				zap.String("source", string(sources[i])),
				zap.Error(fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, o.Err)),
			)
			continue
		}
		bySource[sources[i]] = o.Value
	}

	merged := Merge(bySource, budget)

	logger.Info("search aggregated",
		zap.Int("sources", len(sources)),
		zap.Int("results", len(merged)),
		zap.Int("budget", budget),
	)
	return merged
}

func (a *Aggregator) searchOne(ctx context.Context, src domain.SourceKind, query string, budget int) ([]domain.SearchResult, error) {
	s, ok := a.searchers[src]
	if !ok || s == nil {
		return nil, fmt.Errorf("%w: no searcher for %s", domain.ErrConfigurationMissing, src)
	}

	start := time.Now()
	resp, err := s.Search(ctx, search.SearchRequest{Query: query, MaxResults: budget})
	if err != nil {
		a.metrics.RecordSearchRequest(string(src), "error", time.Since(start))
		return nil, err
	}
	a.metrics.RecordSearchRequest(string(src), "ok", time.Since(start))

	if resp == nil {
		return nil, nil
	}
	return resp.Results, nil
}

// Merge сливает выдачу в порядке domain.RegistrationOrder, внутри источника порядок сохраняется.
// Из дублей по ссылке остается первый, затем режем до budget.
func Merge(bySource map[domain.SourceKind][]domain.SearchResult, budget int) []domain.SearchResult {
	merged := make([]domain.SearchResult, 0)
	seen := make(map[string]bool)

	for _, src := range domain.RegistrationOrder {
		for _, r := range bySource[src] {
			if seen[r.Link] {
				continue
			}
			seen[r.Link] = true
			merged = append(merged, r)
		}
	}

	if budget > 0 && len(merged) > budget {
		merged = merged[:budget]
	}
	return merged
}
