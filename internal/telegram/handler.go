package telegram

import (
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kitbuilder587/research-bot/internal/domain"
	"github.com/kitbuilder587/research-bot/internal/service"
)

type Handler struct {
	bot *Bot
}

func NewHandler(bot *Bot) *Handler {
	return &Handler{bot: bot}
}

func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	h.logger(ctx).Info("received message",
		zap.Int64("user_id", msg.From.ID),
		zap.String("username", msg.From.UserName),
		zap.Bool("is_command", msg.IsCommand()),
	)

	if msg.IsCommand() {
		cmd := msg.Command()
		if cmd == "quick" || cmd == "deep" || cmd == "research" {
			h.handleQuery(ctx, msg)
			return
		}
		h.handleCommand(ctx, msg)
	} else {
		h.handleQuery(ctx, msg)
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		h.bot.Send(msg.Chat.ID, "Добро пожаловать! Я собираю информацию из веба, Википедии, научных статей, GitHub и новостей и готовлю по ней отчет.\n\nИспользуйте /help для просмотра доступных команд.")
	case "help":
		h.handleHelp(msg)
	case "models":
		h.handleModels(ctx, msg)
	default:
		h.bot.Send(msg.Chat.ID, "Неизвестная команда. Используйте /help для справки.")
	}
}

func (h *Handler) handleHelp(msg *tgbotapi.Message) {
	helpText := `<b>Доступные команды:</b>

/start - Приветствие
/help - Показать эту справку
/models - Список доступных моделей

<b>Режимы исследования:</b>
/quick тема - Быстрый обзор (только сниппеты, без анализа)
/research тема - Подробное исследование (тексты страниц, анализ, связанные темы)
/deep тема - Глубокий анализ (больше источников и развернутый отчет)

<b>Как использовать:</b>
Просто отправьте тему, и я найду источники и подготовлю отчет.

<b>Примеры:</b>
• Обычный запрос: "термоядерный синтез"
• Быстрый обзор: /quick что такое WebAssembly?
• Глубокий анализ: /deep рынок квантовых вычислений`

	h.bot.Send(msg.Chat.ID, helpText)
}

func (h *Handler) handleModels(ctx context.Context, msg *tgbotapi.Message) {
	if h.bot.catalog == nil {
		h.bot.Send(msg.Chat.ID, "Каталог моделей недоступен.")
		return
	}

	h.bot.SendLong(msg.Chat.ID, FormatModels(h.bot.catalog.All(ctx)))
}

func (h *Handler) handleQuery(ctx context.Context, msg *tgbotapi.Message) {
	topic, depth := ParseQueryCommand(msg.Text, h.bot.defaults.Depth)
	h.processResearch(ctx, msg, topic, depth)
}

func (h *Handler) processResearch(ctx context.Context, msg *tgbotapi.Message, topic string, depth domain.Depth) {
	startTime := time.Now()
	logger := h.logger(ctx)

	h.bot.SendTyping(msg.Chat.ID)

	req := domain.ResearchRequest{
		Topic:          topic,
		Provider:       h.bot.defaults.Provider,
		Model:          h.bot.defaults.Model,
		Depth:          depth,
		IncludeSources: true,
	}

	logger.Info("processing research request",
		zap.Int64("user_id", msg.From.ID),
		zap.String("depth", string(depth)),
		zap.String("provider", string(req.Provider)),
		zap.String("model", req.Model),
	)

	rep, err := h.bot.research.Research(ctx, req)
	if err != nil {
		logger.Error("research failed",
			zap.Error(err),
			zap.Int64("user_id", msg.From.ID),
		)
		h.bot.metrics.RecordRequest("telegram", "error", time.Since(startTime))
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.metrics.RecordRequest("telegram", "success", time.Since(startTime))
	h.bot.SendLong(msg.Chat.ID, FormatReport(topic, depth, rep))
}

func (h *Handler) logger(ctx context.Context) *zap.Logger {
	if id := service.RequestID(ctx); id != "" {
		return h.bot.logger.With(zap.String("request_id", id))
	}
	return h.bot.logger
}

func mapErrorToMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyTopic):
		return "Пустой запрос. Укажите тему, например: /research термоядерный синтез"
	case errors.Is(err, domain.ErrTopicTooLong):
		return "Тема слишком длинная. Максимум 1000 символов."
	case errors.Is(err, domain.ErrEmptyProvider),
		errors.Is(err, domain.ErrUnknownProvider),
		errors.Is(err, domain.ErrEmptyModel):
		return "Модель по умолчанию настроена неверно. Обратитесь к администратору."
	case errors.Is(err, domain.ErrInvalidRequest):
		return "Некорректный запрос."
	case errors.Is(err, domain.ErrConfigurationMissing):
		return "Провайдер LLM не настроен. Обратитесь к администратору."
	case errors.Is(err, context.DeadlineExceeded):
		return "Превышено время ожидания. Попробуйте /quick или повторите позже."
	case errors.Is(err, domain.ErrGenerationFailed):
		return "Не удалось сформировать отчет. Попробуйте позже."
	default:
		return "Произошла ошибка. Попробуйте позже."
	}
}
