package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kitbuilder587/research-bot/internal/domain"
	"github.com/kitbuilder587/research-bot/internal/llm"
	"github.com/kitbuilder587/research-bot/internal/metrics"
	"github.com/kitbuilder587/research-bot/internal/service"
)

// лимит длины одного сообщения телеграма
const maxMessageLen = 4096

type Researcher interface {
	Research(ctx context.Context, req domain.ResearchRequest) (*domain.ResearchReport, error)
}

type ModelCatalog interface {
	All(ctx context.Context) map[domain.ProviderID][]llm.Model
}

// Sender - часть tgbotapi.BotAPI, которой бот отправляет сообщения
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Defaults - провайдер, модель и глубина для запросов из чата
type Defaults struct {
	Provider domain.ProviderID
	Model    string
	Depth    domain.Depth
}

type BotConfig struct {
	Token    string
	Debug    bool
	Defaults Defaults
}

type Bot struct {
	api      *tgbotapi.BotAPI
	sender   Sender
	research Researcher
	catalog  ModelCatalog
	defaults Defaults
	logger   *zap.Logger
	metrics  *metrics.Metrics
	handler  *Handler
	wg       sync.WaitGroup
}

func New(cfg BotConfig, research Researcher, catalog ModelCatalog, logger *zap.Logger, m *metrics.Metrics) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	api.Debug = cfg.Debug

	bot := newBot(api, cfg.Defaults, research, catalog, logger, m)
	bot.api = api

	bot.logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
	)

	return bot, nil
}

func newBot(sender Sender, defaults Defaults, research Researcher, catalog ModelCatalog, logger *zap.Logger, m *metrics.Metrics) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaults.Depth == "" {
		defaults.Depth = domain.DepthDetailed
	}

	bot := &Bot{
		sender:   sender,
		research: research,
		catalog:  catalog,
		defaults: defaults,
		logger:   logger,
		metrics:  m,
	}
	bot.handler = NewHandler(bot)
	return bot
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("bot started, waiting for updates")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("bot stopping, waiting for handlers to finish")
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			b.logger.Info("all handlers finished")
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			b.wg.Add(1)
			go func(upd tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	startTime := time.Now()
	ctx = service.WithRequestID(ctx, "")

	defer func() {
		if r := recover(); r != nil {
			chatID := int64(0)
			if update.Message != nil && update.Message.Chat != nil {
				chatID = update.Message.Chat.ID
			}
			b.logger.Error("panic in update handler",
				zap.Any("panic", r),
				zap.Int64("chat_id", chatID),
				zap.String("request_id", service.RequestID(ctx)),
			)
			b.metrics.RecordRequest("telegram", "panic", time.Since(startTime))
		}
	}()

	b.handler.HandleMessage(ctx, update.Message)
}

func (b *Bot) Send(chatID int64, text string) error {
	if b.sender == nil {
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := b.sender.Send(msg)
	return err
}

// SendLong режет текст по лимиту телеграма и шлет частями
func (b *Bot) SendLong(chatID int64, text string) {
	for _, part := range SplitMessage(text, maxMessageLen) {
		if err := b.Send(chatID, part); err != nil {
			b.logger.Error("failed to send message", zap.Error(err), zap.Int64("chat_id", chatID))
		}
	}
}

func (b *Bot) SendTyping(chatID int64) {
	if b.sender == nil {
		return
	}
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	_, _ = b.sender.Send(action)
}
