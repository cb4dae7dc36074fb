package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/research-bot/internal/domain"
	"github.com/kitbuilder587/research-bot/internal/httpapi"
	"github.com/kitbuilder587/research-bot/internal/telegram"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and, when enabled, the Telegram bot",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	api := httpapi.New(httpapi.Deps{
		Research:        a.research,
		Search:          a.aggregator,
		Fetcher:         a.fetcher,
		Catalog:         a.catalog,
		Metrics:         a.metrics,
		Logger:          a.logger,
		CORSOrigins:     a.cfg.HTTP.CORSOrigins,
		ResearchTimeout: a.cfg.Timeouts.Total,
	})

	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})

	if a.cfg.Telegram.Enabled {
		bot, err := telegram.New(telegram.BotConfig{
			Token: a.cfg.Telegram.Token,
			Debug: a.cfg.Log.Level == "debug",
			Defaults: telegram.Defaults{
				Provider: a.defaultProvider(),
				Model:    a.cfg.Research.Model,
				Depth:    domain.Depth(a.cfg.Research.Depth),
			},
		}, a.research, a.catalog, a.logger, a.metrics)
		if err != nil {
			stop()
			_ = g.Wait()
			return err
		}

		g.Go(func() error {
			if err := bot.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("telegram bot: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		a.logger.Error("server stopped with error", zap.Error(err))
		return err
	}
	a.logger.Info("server stopped")
	return nil
}
