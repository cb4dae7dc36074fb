package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/research-bot/internal/domain"
	"github.com/kitbuilder587/research-bot/internal/llm"
)

func TestClient_Generate(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name       string
		response   interface{}
		statusCode int
		wantErr    error
	}{
		{
			name: "successful completion",
			response: llm.ChatResponse{
				Model: "gpt-4-turbo-2024-04-09",
				Choices: []llm.Choice{
					{Message: llm.Message{Role: "assistant", Content: "Test response"}},
				},
				Usage: &llm.ChatUsage{PromptTokens: 12, CompletionTokens: 3},
			},
			statusCode: http.StatusOK,
		},
		{
			name:       "unauthorized",
			response:   map[string]string{"error": "unauthorized"},
			statusCode: http.StatusUnauthorized,
			wantErr:    llm.ErrAuthFailed,
		},
		{
			name:       "rate limit",
			response:   map[string]string{"error": "rate limit"},
			statusCode: http.StatusTooManyRequests,
			wantErr:    llm.ErrRateLimit,
		},
		{
			name:       "server error",
			response:   map[string]string{"error": "boom"},
			statusCode: http.StatusInternalServerError,
			wantErr:    llm.ErrRequestFailed,
		},
		{
			name: "empty response",
			response: llm.ChatResponse{
				Choices: []llm.Choice{},
			},
			statusCode: http.StatusOK,
			wantErr:    llm.ErrEmptyResponse,
		},
		{
			name: "error in body",
			response: map[string]any{
				"error": map[string]string{"message": "model overloaded"},
			},
			statusCode: http.StatusOK,
			wantErr:    llm.ErrRequestFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "Bearer test-key" {
					t.Error("missing authorization header")
				}
				if r.URL.Path != "/chat/completions" {
					t.Errorf("path = %q", r.URL.Path)
				}

				w.WriteHeader(tt.statusCode)
				json.NewEncoder(w).Encode(tt.response)
			}))
			defer server.Close()

			client := New(Config{
				APIKey:  "test-key",
				BaseURL: server.URL,
				Timeout: 5 * time.Second,
			}, logger)

			result, err := client.Generate(context.Background(), llm.Request{Model: "gpt-4-turbo", Prompt: "prompt", Temperature: 0.5, MaxTokens: 100})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Generate() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("Generate() unexpected error = %v", err)
			}
			if result.Content != "Test response" {
				t.Errorf("Content = %q", result.Content)
			}
			if result.Model != "gpt-4-turbo-2024-04-09" {
				t.Errorf("Model = %q", result.Model)
			}
			if result.Usage.PromptTokens != 12 || result.Usage.CompletionTokens != 3 || result.Usage.TotalTokens != 15 {
				t.Errorf("Usage = %+v", result.Usage)
			}
		})
	}
}

func TestClient_Generate_RequestBody(t *testing.T) {
	var got llm.ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(llm.ChatResponse{
			Choices: []llm.Choice{{Message: llm.Message{Role: "assistant", Content: "ok"}}},
		})
	}))
	defer server.Close()

	client := New(Config{APIKey: "k", BaseURL: server.URL}, nil)
	resp, err := client.Generate(context.Background(), llm.Request{
		Model:       "gpt-4",
		Prompt:      "Summarize",
		Temperature: 0.8,
		MaxTokens:   1500,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if got.Model != "gpt-4" || got.Temperature != 0.8 || got.MaxTokens != 1500 {
		t.Errorf("request = %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content != "Summarize" {
		t.Errorf("messages = %+v", got.Messages)
	}
	// модель не пришла в ответе - берем из запроса
	if resp.Model != "gpt-4" {
		t.Errorf("Model = %q, want gpt-4", resp.Model)
	}
}

func TestClient_Generate_MissingKey(t *testing.T) {
	client := New(Config{}, nil)

	_, err := client.Generate(context.Background(), llm.Request{Model: "gpt-4", Prompt: "p"})
	if !errors.Is(err, domain.ErrConfigurationMissing) {
		t.Errorf("Generate() error = %v, want ErrConfigurationMissing", err)
	}
}

func TestClient_Generate_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	client := New(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 50 * time.Millisecond,
	}, zap.NewNop())

	_, err := client.Generate(context.Background(), llm.Request{Model: "gpt-4", Prompt: "prompt"})
	if !errors.Is(err, llm.ErrRequestFailed) {
		t.Errorf("Generate() error = %v, want ErrRequestFailed", err)
	}
}
