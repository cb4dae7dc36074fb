package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kitbuilder587/research-bot/internal/domain"
	"github.com/kitbuilder587/research-bot/internal/llm"
	"github.com/kitbuilder587/research-bot/internal/service"
)

func TestMapErrorToMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"empty topic", domain.ErrEmptyTopic, "Пустой запрос. Укажите тему, например: /research термоядерный синтез"},
		{"too long", domain.ErrTopicTooLong, "Тема слишком длинная. Максимум 1000 символов."},
		{"bad model", domain.ErrEmptyModel, "Модель по умолчанию настроена неверно. Обратитесь к администратору."},
		{"other validation", domain.ErrNoSources, "Некорректный запрос."},
		{"missing key", fmt.Errorf("%w: summary: %w", domain.ErrGenerationFailed, llm.ErrMissingAPIKey), "Провайдер LLM не настроен. Обратитесь к администратору."},
		{"timeout", fmt.Errorf("%w: summary: %w", domain.ErrGenerationFailed, context.DeadlineExceeded), "Превышено время ожидания. Попробуйте /quick или повторите позже."},
		{"generation", fmt.Errorf("%w: analysis: %w", domain.ErrGenerationFailed, llm.ErrRateLimit), "Не удалось сформировать отчет. Попробуйте позже."},
		{"unknown", errors.New("some random error"), "Произошла ошибка. Попробуйте позже."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapErrorToMessage(tt.err)
			if got != tt.want {
				t.Errorf("mapErrorToMessage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func createTestMessage(userID int64, text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{
			ID:       userID,
			UserName: "testuser",
		},
		Chat: &tgbotapi.Chat{
			ID: userID,
		},
		Text: text,
	}
	// IsCommand смотрит на entities, как в настоящем апдейте
	if strings.HasPrefix(text, "/") {
		cmdLen := len(strings.SplitN(text, " ", 2)[0])
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}}
	}
	return msg
}

func TestHandler_DepthCommands(t *testing.T) {
	tests := []struct {
		text      string
		wantTopic string
		wantDepth domain.Depth
	}{
		{"/quick что такое API?", "что такое API?", domain.DepthBasic},
		{"/research финтех   тренды", "финтех тренды", domain.DepthDetailed},
		{"/deep анализ рынка", "анализ рынка", domain.DepthComprehensive},
		{"обычный вопрос без команды", "обычный вопрос без команды", domain.DepthDetailed},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			research := &TrackingResearcher{}
			bot, sender := createTestBot(research)

			bot.handler.HandleMessage(context.Background(), createTestMessage(123, tt.text))

			if research.CallCount != 1 {
				t.Fatalf("CallCount = %d, want 1", research.CallCount)
			}
			req := research.LastRequest
			if req.Topic != tt.wantTopic || req.Depth != tt.wantDepth {
				t.Errorf("request = %+v", req)
			}
			if req.Provider != domain.ProviderOpenAI || req.Model != "gpt-4-turbo" || !req.IncludeSources {
				t.Errorf("defaults not applied: %+v", req)
			}
			if sender.Actions != 1 {
				t.Errorf("typing actions = %d, want 1", sender.Actions)
			}
			if texts := sender.Texts(); len(texts) != 1 || !strings.Contains(texts[0], "Mock summary") {
				t.Errorf("replies = %v", texts)
			}
		})
	}
}

func TestHandler_ReportFormatting(t *testing.T) {
	research := &TrackingResearcher{
		Report: &domain.ResearchReport{
			Summary:          "Summary <with> tags",
			DetailedAnalysis: "Analysis",
			RelatedTopics:    []string{"Topic A"},
			Sources: []domain.SearchResult{
				{Title: "Page", Link: "https://example.com/a", Source: domain.SourceWeb},
			},
		},
	}
	bot, sender := createTestBot(research)

	bot.handler.HandleMessage(context.Background(), createTestMessage(1, "/research тема"))

	texts := sender.Texts()
	if len(texts) != 1 {
		t.Fatalf("replies = %v", texts)
	}
	for _, want := range []string{"Summary &lt;with&gt; tags", "Подробный анализ", "• Topic A", `<a href="https://example.com/a">`} {
		if !strings.Contains(texts[0], want) {
			t.Errorf("reply missing %q:\n%s", want, texts[0])
		}
	}
}

func TestHandler_EmptyTopic(t *testing.T) {
	research := &TrackingResearcher{Error: domain.ErrEmptyTopic}
	bot, sender := createTestBot(research)

	bot.handler.HandleMessage(context.Background(), createTestMessage(123, "/quick "))

	if research.CallCount != 1 {
		t.Errorf("CallCount = %d, want 1", research.CallCount)
	}
	if research.LastRequest.Depth != domain.DepthBasic {
		t.Errorf("Depth = %v, want basic", research.LastRequest.Depth)
	}
	if texts := sender.Texts(); len(texts) != 1 || !strings.HasPrefix(texts[0], "Пустой запрос") {
		t.Errorf("replies = %v", texts)
	}
}

func TestHandler_ResearchFailure(t *testing.T) {
	research := &TrackingResearcher{Error: fmt.Errorf("%w: summary: boom", domain.ErrGenerationFailed)}
	bot, sender := createTestBot(research)

	bot.handler.HandleMessage(context.Background(), createTestMessage(1, "тема"))

	if texts := sender.Texts(); len(texts) != 1 || texts[0] != "Не удалось сформировать отчет. Попробуйте позже." {
		t.Errorf("replies = %v", texts)
	}
}

func TestHandler_Commands(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"/start", "Добро пожаловать!"},
		{"/help", "/deep тема"},
		{"/models", "<code>gpt-4</code>"},
		{"/unknown", "Неизвестная команда"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			research := &TrackingResearcher{}
			bot, sender := createTestBot(research)

			bot.handler.HandleMessage(context.Background(), createTestMessage(1, tt.text))

			if research.CallCount != 0 {
				t.Errorf("command %s started research", tt.text)
			}
			texts := sender.Texts()
			if len(texts) != 1 || !strings.Contains(texts[0], tt.want) {
				t.Errorf("replies = %v, want substring %q", texts, tt.want)
			}
		})
	}
}

func TestHandler_ModelsWithoutCatalog(t *testing.T) {
	sender := &MockSender{}
	bot := newBot(sender, testDefaults, &TrackingResearcher{}, nil, nil, nil)

	bot.handler.HandleMessage(context.Background(), createTestMessage(1, "/models"))

	if texts := sender.Texts(); len(texts) != 1 || texts[0] != "Каталог моделей недоступен." {
		t.Errorf("replies = %v", texts)
	}
}

type ctxResearcher struct {
	requestID string
}

func (r *ctxResearcher) Research(ctx context.Context, req domain.ResearchRequest) (*domain.ResearchReport, error) {
	r.requestID = service.RequestID(ctx)
	return &domain.ResearchReport{Summary: "s", Sources: []domain.SearchResult{}}, nil
}

func TestBot_HandleUpdateAssignsRequestID(t *testing.T) {
	research := &ctxResearcher{}
	bot := newBot(&MockSender{}, testDefaults, research, nil, nil, nil)

	bot.handleUpdate(context.Background(), tgbotapi.Update{Message: createTestMessage(1, "тема")})

	if research.requestID == "" {
		t.Error("research context has no request id")
	}
}
