package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func validRequest() ResearchRequest {
	return ResearchRequest{
		Topic:    "quantum computing",
		Provider: ProviderOpenAI,
		Model:    "gpt-4",
		Depth:    DepthDetailed,
		Sources:  DefaultSources(),
	}
}

func TestResearchRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *ResearchRequest)
		wantErr error
	}{
		{"ok", func(r *ResearchRequest) {}, nil},
		{"empty topic", func(r *ResearchRequest) { r.Topic = "" }, ErrEmptyTopic},
		{"topic too long", func(r *ResearchRequest) { r.Topic = strings.Repeat("a", MaxTopicLength+1) }, ErrTopicTooLong},
		{"empty provider", func(r *ResearchRequest) { r.Provider = "" }, ErrEmptyProvider},
		{"unknown provider", func(r *ResearchRequest) { r.Provider = "gigachat" }, ErrUnknownProvider},
		{"empty model", func(r *ResearchRequest) { r.Model = "" }, ErrEmptyModel},
		{"bad depth", func(r *ResearchRequest) { r.Depth = "deep" }, ErrInvalidDepth},
		{"no sources", func(r *ResearchRequest) { r.Sources = []SourceKind{} }, ErrNoSources},
		{"bad source", func(r *ResearchRequest) { r.Sources = []SourceKind{"bing"} }, ErrNoSources},
		{"negative budget", func(r *ResearchRequest) { r.MaxResults = -1 }, ErrInvalidBudget},
		{"budget too big", func(r *ResearchRequest) { r.MaxResults = MaxResultBudget + 1 }, ErrInvalidBudget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := req.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ResearchRequest.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil && !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("validation error %v does not wrap ErrInvalidRequest", err)
			}
		})
	}
}

func TestResearchRequest_Normalize(t *testing.T) {
	req := ResearchRequest{Topic: "  Go generics \n", Model: " gpt-4 "}
	req.Normalize()

	if req.Topic != "Go generics" {
		t.Errorf("Topic = %q, want %q", req.Topic, "Go generics")
	}
	if req.Model != "gpt-4" {
		t.Errorf("Model = %q, want %q", req.Model, "gpt-4")
	}
	if req.Depth != DepthBasic {
		t.Errorf("Depth = %v, want %v", req.Depth, DepthBasic)
	}
	if len(req.Sources) != 5 {
		t.Errorf("len(Sources) = %d, want 5", len(req.Sources))
	}
}

func TestResearchRequest_NormalizeKeepsEmptySources(t *testing.T) {
	// явно пустой список не подменяется дефолтом, Validate должен его отклонить
	req := ResearchRequest{Topic: "x", Provider: ProviderOllama, Model: "llama3", Sources: []SourceKind{}}
	req.Normalize()

	if err := req.Validate(); !errors.Is(err, ErrNoSources) {
		t.Errorf("Validate() error = %v, want %v", err, ErrNoSources)
	}
}

func TestResearchRequest_Budget(t *testing.T) {
	req := validRequest()
	if got := req.Budget().Results; got != 5 {
		t.Errorf("Budget().Results = %d, want 5", got)
	}

	req.MaxResults = 2
	if got := req.Budget().Results; got != 2 {
		t.Errorf("Budget().Results with override = %d, want 2", got)
	}
}

func TestResearchRequest_NormalizeDedupsSources(t *testing.T) {
	req := ResearchRequest{Sources: []SourceKind{SourceWeb, SourceWeb, SourceWeb, SourceWeb, SourceWeb, SourceNews}}
	req.Normalize()

	if len(req.Sources) != 2 || req.Sources[0] != SourceWeb || req.Sources[1] != SourceNews {
		t.Errorf("Sources = %v, want [web news]", req.Sources)
	}
}

func TestResearchReport_MarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		report  ResearchReport
		want    []string
		notWant []string
	}{
		{
			name:    "basic report has no analysis fields",
			report:  ResearchReport{Summary: "s", Sources: []SearchResult{}},
			want:    []string{`"summary":"s"`, `"sources":[]`},
			notWant: []string{"detailedAnalysis", "relatedTopics"},
		},
		{
			name:   "deep report keeps empty topics",
			report: ResearchReport{Summary: "s", Sources: []SearchResult{}, DetailedAnalysis: "a", RelatedTopics: []string{}},
			want:   []string{`"detailedAnalysis":"a"`, `"relatedTopics":[]`},
		},
		{
			name:   "deep report keeps empty analysis",
			report: ResearchReport{Summary: "s", Sources: []SearchResult{}, RelatedTopics: []string{"t"}},
			want:   []string{`"detailedAnalysis":""`, `"relatedTopics":["t"]`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(tt.report)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(string(body), w) {
					t.Errorf("json %s does not contain %s", body, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(string(body), w) {
					t.Errorf("json %s contains %s", body, w)
				}
			}
		})
	}
}
