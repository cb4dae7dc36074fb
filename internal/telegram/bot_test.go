package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kitbuilder587/research-bot/internal/domain"
	"github.com/kitbuilder587/research-bot/internal/llm"
)

type MockSender struct {
	mu       sync.Mutex
	Messages []tgbotapi.MessageConfig
	Actions  int
	Err      error
}

func (m *MockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		m.Messages = append(m.Messages, v)
	case tgbotapi.ChatActionConfig:
		m.Actions++
	}
	return tgbotapi.Message{}, m.Err
}

func (m *MockSender) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Messages))
	for i, msg := range m.Messages {
		out[i] = msg.Text
	}
	return out
}

type TrackingResearcher struct {
	LastRequest domain.ResearchRequest
	CallCount   int
	Report      *domain.ResearchReport
	Error       error
}

func (m *TrackingResearcher) Research(ctx context.Context, req domain.ResearchRequest) (*domain.ResearchReport, error) {
	m.CallCount++
	m.LastRequest = req

	if m.Error != nil {
		return nil, m.Error
	}
	if m.Report != nil {
		return m.Report, nil
	}
	return &domain.ResearchReport{
		Summary: "Mock summary",
		Sources: []domain.SearchResult{},
	}, nil
}

type StaticCatalog map[domain.ProviderID][]llm.Model

func (c StaticCatalog) All(ctx context.Context) map[domain.ProviderID][]llm.Model {
	out := make(map[domain.ProviderID][]llm.Model, len(domain.Providers()))
	for _, id := range domain.Providers() {
		out[id] = c[id]
		if out[id] == nil {
			out[id] = []llm.Model{}
		}
	}
	return out
}

var testDefaults = Defaults{
	Provider: domain.ProviderOpenAI,
	Model:    "gpt-4-turbo",
	Depth:    domain.DepthDetailed,
}

func createTestBot(research *TrackingResearcher) (*Bot, *MockSender) {
	sender := &MockSender{}
	catalog := StaticCatalog{
		domain.ProviderOpenAI: {{ID: "gpt-4", Name: "GPT-4 (8K)", Provider: domain.ProviderOpenAI}},
	}
	return newBot(sender, testDefaults, research, catalog, zap.NewNop(), nil), sender
}

func TestNewBot_DefaultDepth(t *testing.T) {
	bot := newBot(nil, Defaults{Provider: domain.ProviderOllama, Model: "llama3"}, &TrackingResearcher{}, nil, nil, nil)

	if bot.defaults.Depth != domain.DepthDetailed {
		t.Errorf("default depth = %q, want detailed", bot.defaults.Depth)
	}
	if bot.logger == nil || bot.handler == nil {
		t.Error("bot is not fully initialised")
	}
}

func TestBot_SendUsesHTML(t *testing.T) {
	bot, sender := createTestBot(&TrackingResearcher{})

	if err := bot.Send(42, "<b>hi</b>"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(sender.Messages) != 1 {
		t.Fatalf("sent %d messages", len(sender.Messages))
	}
	msg := sender.Messages[0]
	if msg.ChatID != 42 || msg.ParseMode != tgbotapi.ModeHTML || !msg.DisableWebPagePreview {
		t.Errorf("message = %+v", msg)
	}
}

func TestBot_SendWithoutSender(t *testing.T) {
	bot := newBot(nil, testDefaults, &TrackingResearcher{}, nil, nil, nil)

	if err := bot.Send(1, "text"); err != nil {
		t.Errorf("Send() without sender = %v", err)
	}
	bot.SendTyping(1)
}

func TestBot_SendLongSplits(t *testing.T) {
	bot, sender := createTestBot(&TrackingResearcher{})

	bot.SendLong(1, strings.Repeat("слово ", 2000))

	texts := sender.Texts()
	if len(texts) < 2 {
		t.Fatalf("sent %d messages, want split", len(texts))
	}
	for i, text := range texts {
		if len(text) > maxMessageLen {
			t.Errorf("part %d is %d bytes", i, len(text))
		}
	}
}

func TestBot_SendLongLogsErrors(t *testing.T) {
	bot, sender := createTestBot(&TrackingResearcher{})
	sender.Err = errors.New("network down")

	// ошибка отправки не должна ронять бота
	bot.SendLong(1, "text")

	if len(sender.Messages) != 1 {
		t.Errorf("attempted %d sends", len(sender.Messages))
	}
}

func TestBot_HandleUpdateRecoversPanic(t *testing.T) {
	bot, _ := createTestBot(&TrackingResearcher{})

	// Message без From вызывает панику в обработчике
	update := tgbotapi.Update{Message: &tgbotapi.Message{Text: "topic", Chat: &tgbotapi.Chat{ID: 1}}}

	bot.handleUpdate(context.Background(), update)
}
