// Package report рендерит готовый отчет исследования в markdown.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/kitbuilder587/research-bot/internal/domain"
)

// maxSnippetRunes - сколько символов описания источника попадает в отчет
const maxSnippetRunes = 200

var sourceHeadings = map[domain.SourceKind]string{
	domain.SourceWeb:       "Web Sources",
	domain.SourceWikipedia: "Wikipedia Sources",
	domain.SourceScholar:   "Academic Sources",
	domain.SourceGitHub:    "GitHub Sources",
	domain.SourceNews:      "News Sources",
}

type Options struct {
	// GeneratedAt печатается под заголовком, нулевое значение - строки нет
	GeneratedAt time.Time
}

// Markdown возвращает отчет как markdown документ.
// Один и тот же вход всегда дает одинаковый текст.
func Markdown(topic string, r *domain.ResearchReport, opts Options) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Research: %s\n\n", strings.TrimSpace(topic))
	if !opts.GeneratedAt.IsZero() {
		fmt.Fprintf(&sb, "_Generated on %s_\n\n", opts.GeneratedAt.UTC().Format("2006-01-02"))
	}
	if r == nil {
		return sb.String()
	}

	sb.WriteString("## Summary\n\n")
	writeParagraphs(&sb, r.Summary)

	if strings.TrimSpace(r.DetailedAnalysis) != "" {
		sb.WriteString("## Detailed Analysis\n\n")
		writeParagraphs(&sb, r.DetailedAnalysis)
	}

	if len(r.Sources) > 0 {
		sb.WriteString("## Sources & Citations\n\n")
		writeSources(&sb, r.Sources)
	}

	if len(r.RelatedTopics) > 0 {
		sb.WriteString("## Related Research Topics\n\n")
		for _, t := range r.RelatedTopics {
			fmt.Fprintf(&sb, "- %s\n", t)
		}
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// пустые строки между абзацами схлопываются
func writeParagraphs(sb *strings.Builder, text string) {
	for _, p := range strings.Split(text, "\n") {
		if p = strings.TrimSpace(p); p == "" {
			continue
		}
		sb.WriteString(p)
		sb.WriteString("\n\n")
	}
}

// группы идут в порядке первого появления, нумерация внутри группы своя
func writeSources(sb *strings.Builder, sources []domain.SearchResult) {
	var order []domain.SourceKind
	groups := make(map[domain.SourceKind][]domain.SearchResult)
	for _, s := range sources {
		kind := s.Source
		if kind == "" {
			kind = domain.SourceWeb
		}
		if _, ok := groups[kind]; !ok {
			order = append(order, kind)
		}
		groups[kind] = append(groups[kind], s)
	}

	for _, kind := range order {
		fmt.Fprintf(sb, "### %s\n\n", headingFor(kind))
		for i, s := range groups[kind] {
			fmt.Fprintf(sb, "%d. [%s](%s)", i+1, escapeLinkText(s.Title), s.Link)
			if snippet := strings.TrimSpace(s.Snippet); snippet != "" {
				fmt.Fprintf(sb, "\n   %s", shorten(snippet, maxSnippetRunes))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
}

func headingFor(kind domain.SourceKind) string {
	if h, ok := sourceHeadings[kind]; ok {
		return h
	}
	return fmt.Sprintf("%s Sources", kind)
}

func escapeLinkText(s string) string {
	r := strings.NewReplacer("[", `\[`, "]", `\]`)
	return r.Replace(s)
}

func shorten(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
