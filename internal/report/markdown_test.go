package report

import (
	"strings"
	"testing"
	"time"

	"github.com/kitbuilder587/research-bot/internal/domain"
)

func fullReport() *domain.ResearchReport {
	return &domain.ResearchReport{
		Summary:          "First paragraph.\n\n\nSecond paragraph.",
		DetailedAnalysis: "Analysis body.",
		RelatedTopics:    []string{"Tokamaks", "Stellarators"},
		Sources: []domain.SearchResult{
			{Title: "Fusion power", Link: "https://web.example/1", Snippet: "web snippet", Source: domain.SourceWeb},
			{Title: "Nuclear fusion", Link: "https://en.wikipedia.org/wiki/Nuclear_fusion", Source: domain.SourceWikipedia},
			{Title: "Fusion [review]", Link: "https://web.example/2", Snippet: "second", Source: domain.SourceWeb},
		},
	}
}

func TestMarkdown_Full(t *testing.T) {
	got := Markdown("fusion energy", fullReport(), Options{})

	want := `# Research: fusion energy

## Summary

First paragraph.

Second paragraph.

## Detailed Analysis

Analysis body.

## Sources & Citations

### Web Sources

1. [Fusion power](https://web.example/1)
   web snippet
2. [Fusion \[review\]](https://web.example/2)
   second

### Wikipedia Sources

1. [Nuclear fusion](https://en.wikipedia.org/wiki/Nuclear_fusion)

## Related Research Topics

- Tokamaks
- Stellarators
`
	if got != want {
		t.Errorf("Markdown() mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestMarkdown_Deterministic(t *testing.T) {
	a := Markdown("topic", fullReport(), Options{})
	b := Markdown("topic", fullReport(), Options{})
	if a != b {
		t.Error("Markdown() is not deterministic")
	}
}

func TestMarkdown_BasicReportOmitsEmptySections(t *testing.T) {
	got := Markdown("topic", &domain.ResearchReport{Summary: "Only summary.", Sources: []domain.SearchResult{}}, Options{})

	for _, section := range []string{"Detailed Analysis", "Sources & Citations", "Related Research Topics"} {
		if strings.Contains(got, section) {
			t.Errorf("unexpected section %q in:\n%s", section, got)
		}
	}
	if !strings.HasSuffix(got, "Only summary.\n") {
		t.Errorf("Markdown() = %q", got)
	}
}

func TestMarkdown_GeneratedAt(t *testing.T) {
	ts := time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)
	got := Markdown("topic", &domain.ResearchReport{Summary: "s"}, Options{GeneratedAt: ts})

	if !strings.Contains(got, "_Generated on 2024-03-09_") {
		t.Errorf("missing date line:\n%s", got)
	}
}

func TestMarkdown_LongSnippetShortened(t *testing.T) {
	long := strings.Repeat("ж", 250)
	r := &domain.ResearchReport{
		Summary: "s",
		Sources: []domain.SearchResult{{Title: "t", Link: "l", Snippet: long, Source: domain.SourceNews}},
	}

	got := Markdown("topic", r, Options{})

	if !strings.Contains(got, "### News Sources") {
		t.Errorf("missing news heading:\n%s", got)
	}
	if !strings.Contains(got, strings.Repeat("ж", 200)+"...") || strings.Contains(got, strings.Repeat("ж", 201)) {
		t.Error("snippet was not cut at 200 runes")
	}
}

func TestMarkdown_NilReport(t *testing.T) {
	if got := Markdown(" topic ", nil, Options{}); got != "# Research: topic\n\n" {
		t.Errorf("Markdown(nil) = %q", got)
	}
}
