// Package httpapi - HTTP вход в сервис: исследование, поиск, загрузка страниц, completion, каталог моделей.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kitbuilder587/research-bot/internal/domain"
	"github.com/kitbuilder587/research-bot/internal/fetch"
	"github.com/kitbuilder587/research-bot/internal/llm"
	"github.com/kitbuilder587/research-bot/internal/metrics"
	"github.com/kitbuilder587/research-bot/internal/service"
)

const requestIDHeader = "X-Request-ID"

type Researcher interface {
	Research(ctx context.Context, req domain.ResearchRequest) (*domain.ResearchReport, error)
	Complete(ctx context.Context, provider domain.ProviderID, req llm.Request) (*llm.Response, error)
}

type ModelCatalog interface {
	Models(ctx context.Context, id domain.ProviderID) []llm.Model
	All(ctx context.Context) map[domain.ProviderID][]llm.Model
}

type Deps struct {
	Research    Researcher
	Search      service.SearchAggregator
	Fetcher     fetch.Fetcher
	Catalog     ModelCatalog
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
	CORSOrigins []string
	// ResearchTimeout ограничивает весь POST /api/research, 0 - без ограничения
	ResearchTimeout time.Duration
}

type Server struct {
	research        Researcher
	search          service.SearchAggregator
	fetcher         fetch.Fetcher
	catalog         ModelCatalog
	metrics         *metrics.Metrics
	logger          *zap.Logger
	researchTimeout time.Duration
	engine          *gin.Engine
}

func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if len(deps.CORSOrigins) == 0 {
		deps.CORSOrigins = []string{"*"}
	}

	s := &Server{
		research:        deps.Research,
		search:          deps.Search,
		fetcher:         deps.Fetcher,
		catalog:         deps.Catalog,
		metrics:         deps.Metrics,
		logger:          deps.Logger,
		researchTimeout: deps.ResearchTimeout,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(deps.CORSOrigins)))
	r.Use(s.requestID())
	r.Use(s.accessLog())

	s.registerRoutes(r)
	s.engine = r
	return s
}

// Handler - готовый http.Handler для http.Server и тестов
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/research", s.handleResearch)
		api.GET("/search", s.handleSearch)
		api.GET("/fetch-webpage", s.handleFetch)
		api.POST("/completion", s.handleCompletion)
		api.GET("/models", s.handleModels)
		api.GET("/ollama/models", s.handleOllamaModels)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	// с "*" credentials запрещены
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

// requestID берет id из заголовка или генерирует uuid и кладет его в контекст запроса
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := service.WithRequestID(c.Request.Context(), c.GetHeader(requestIDHeader))
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, service.RequestID(ctx))
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info("http request",
			zap.String("request_id", service.RequestID(c.Request.Context())),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
