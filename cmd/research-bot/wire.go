package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/kitbuilder587/research-bot/internal/config"
	"github.com/kitbuilder587/research-bot/internal/domain"
	"github.com/kitbuilder587/research-bot/internal/fetch"
	"github.com/kitbuilder587/research-bot/internal/llm"
	"github.com/kitbuilder587/research-bot/internal/llm/anthropic"
	"github.com/kitbuilder587/research-bot/internal/llm/ollama"
	"github.com/kitbuilder587/research-bot/internal/llm/openai"
	"github.com/kitbuilder587/research-bot/internal/metrics"
	"github.com/kitbuilder587/research-bot/internal/search"
	"github.com/kitbuilder587/research-bot/internal/search/github"
	"github.com/kitbuilder587/research-bot/internal/search/serper"
	"github.com/kitbuilder587/research-bot/internal/search/wikipedia"
	"github.com/kitbuilder587/research-bot/internal/service"
)

// app - все компоненты, собранные один раз из конфига
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	metrics    *metrics.Metrics
	aggregator *service.Aggregator
	fetcher    *fetch.Client
	llm        *llm.Registry
	catalog    *llm.Catalog
	research   *service.ResearchService
}

func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return newApp(cfg, logger), nil
}

func newApp(cfg *config.Config, logger *zap.Logger) *app {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	serperCfg := serper.Config{
		APIKey:  cfg.Search.SerperAPIKey,
		BaseURL: cfg.Search.SerperBaseURL,
		Timeout: cfg.Timeouts.Source,
	}
	searchers := map[domain.SourceKind]search.Searcher{
		domain.SourceWeb:     serper.New(serperCfg, serper.EndpointSearch, logger),
		domain.SourceScholar: serper.New(serperCfg, serper.EndpointScholar, logger),
		domain.SourceNews:    serper.New(serperCfg, serper.EndpointNews, logger),
		domain.SourceWikipedia: wikipedia.New(wikipedia.Config{
			BaseURL: cfg.Search.WikipediaURL,
			Timeout: cfg.Timeouts.Source,
		}, logger),
		domain.SourceGitHub: github.New(github.Config{
			Token:   cfg.Search.GitHubToken,
			BaseURL: cfg.Search.GitHubURL,
			Timeout: cfg.Timeouts.Source,
		}, logger),
	}

	aggregator := service.NewAggregator(service.AggregatorDeps{
		Searchers: searchers,
		Logger:    logger,
		Metrics:   m,
		Config:    service.AggregatorConfig{SourceTimeout: cfg.Timeouts.Source},
	})

	fetcher := fetch.New(fetch.Config{
		Timeout:   cfg.Timeouts.Fetch,
		MaxChars:  cfg.Fetch.MaxChars,
		Extractor: cfg.Fetch.Extractor,
	}, logger)

	ollamaClient := ollama.New(ollama.Config{
		BaseURL: cfg.LLM.Ollama.BaseURL,
		Timeout: cfg.Timeouts.LLM,
	}, logger)

	// адаптеры без ключей создаются всегда, ошибка конфигурации всплывет при вызове
	registry := &llm.Registry{
		OpenAI: openai.New(openai.Config{
			APIKey:  cfg.LLM.OpenAI.APIKey,
			BaseURL: cfg.LLM.OpenAI.BaseURL,
			Timeout: cfg.Timeouts.LLM,
		}, logger),
		Anthropic: anthropic.New(anthropic.Config{
			APIKey:  cfg.LLM.Anthropic.APIKey,
			BaseURL: cfg.LLM.Anthropic.BaseURL,
			Timeout: cfg.Timeouts.LLM,
		}, logger),
		Ollama: ollamaClient,
	}

	research := service.NewResearchService(service.ResearchDeps{
		Aggregator: aggregator,
		Fetcher:    fetcher,
		LLM:        registry,
		Logger:     logger,
		Metrics:    m,
		Config: service.ResearchConfig{
			FetchTimeout: cfg.Timeouts.Fetch,
			LLMTimeout:   cfg.Timeouts.LLM,
		},
	})

	return &app{
		cfg:        cfg,
		logger:     logger,
		metrics:    m,
		aggregator: aggregator,
		fetcher:    fetcher,
		llm:        registry,
		catalog:    llm.NewCatalog(ollamaClient, logger),
		research:   research,
	}
}

// defaultProvider уже проверен в config.Validate
func (a *app) defaultProvider() domain.ProviderID {
	id, _ := domain.ParseProvider(a.cfg.Research.Provider)
	return id
}
