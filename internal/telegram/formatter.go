package telegram

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/kitbuilder587/research-bot/internal/domain"
	"github.com/kitbuilder587/research-bot/internal/llm"
)

const separator = "━━━━━━━━━━━━━━━━━━━━━"

// FormatReport собирает отчет в Telegram HTML
func FormatReport(topic string, depth domain.Depth, rep *domain.ResearchReport) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("<b>Исследование:</b> %s\n", html.EscapeString(topic)))
	sb.WriteString(fmt.Sprintf("<i>%s</i>\n\n", depthLabel(depth)))
	sb.WriteString(html.EscapeString(strings.TrimSpace(rep.Summary)))

	if analysis := strings.TrimSpace(rep.DetailedAnalysis); analysis != "" {
		sb.WriteString("\n\n<b>Подробный анализ</b>\n")
		sb.WriteString(html.EscapeString(analysis))
	}

	if len(rep.RelatedTopics) > 0 {
		sb.WriteString("\n\n<b>Связанные темы:</b>\n")
		for _, t := range rep.RelatedTopics {
			sb.WriteString("• " + html.EscapeString(t) + "\n")
		}
	}

	if len(rep.Sources) > 0 {
		sb.WriteString("\n\n" + separator + "\n")
		sb.WriteString("<b>Источники:</b>\n")

		for i, src := range rep.Sources {
			sb.WriteString(fmt.Sprintf("%d. %s\n   <a href=\"%s\">%s</a> [%s]\n",
				i+1,
				html.EscapeString(src.Title),
				html.EscapeString(src.Link),
				html.EscapeString(truncateURL(src.Link, 50)),
				src.Source,
			))
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// FormatModels - список моделей по провайдерам в порядке domain.Providers()
func FormatModels(catalog map[domain.ProviderID][]llm.Model) string {
	var sb strings.Builder
	sb.WriteString("<b>Доступные модели:</b>\n")

	for _, id := range domain.Providers() {
		models := catalog[id]
		sb.WriteString(fmt.Sprintf("\n<b>%s</b>\n", id))
		if len(models) == 0 {
			sb.WriteString("   нет доступных моделей\n")
			continue
		}
		for _, m := range models {
			sb.WriteString(fmt.Sprintf("• <code>%s</code> %s\n", html.EscapeString(m.ID), html.EscapeString(m.Name)))
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

func depthLabel(depth domain.Depth) string {
	switch depth {
	case domain.DepthBasic:
		return "Быстрый обзор"
	case domain.DepthDetailed:
		return "Подробное исследование"
	case domain.DepthComprehensive:
		return "Глубокий анализ"
	default:
		return string(depth)
	}
}

func SplitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var messages []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			messages = append(messages, text)
			break
		}

		splitPoint := findSafeSplitPoint(text, maxLen)
		if splitPoint <= 0 || splitPoint > maxLen {
			splitPoint = runeBoundary(text, maxLen)
		}

		messages = append(messages, text[:splitPoint])
		text = text[splitPoint:]
	}

	return messages
}

func findSafeSplitPoint(text string, maxLen int) int {
	// ищем пробел или перевод строки, не ломая HTML-теги
	for i := maxLen - 1; i > maxLen/2; i-- {
		if i >= len(text) {
			continue
		}
		if isInsideHTMLTag(text, i) {
			continue
		}

		if text[i] == '\n' || text[i] == ' ' {
			return i + 1
		}
	}

	// maxLen попал внутрь тега - режем перед его началом
	if isInsideHTMLTag(text, maxLen) {
		if start := strings.LastIndexByte(text[:maxLen], '<'); start > 0 {
			return start
		}
	}

	for i := maxLen - 1; i > 0; i-- {
		if (text[i] == ' ' || text[i] == '\n') && !isInsideHTMLTag(text, i) {
			return i + 1
		}
	}

	return runeBoundary(text, maxLen)
}

// runeBoundary сдвигает позицию назад, чтобы не резать многобайтовый символ
func runeBoundary(text string, pos int) int {
	if pos >= len(text) {
		return len(text)
	}
	for pos > 0 && !utf8.RuneStart(text[pos]) {
		pos--
	}
	return pos
}

func isInsideHTMLTag(text string, pos int) bool {
	if pos >= len(text) || pos < 0 {
		return false
	}
	for i := pos; i >= 0; i-- {
		if text[i] == '>' {
			return false
		}
		if text[i] == '<' {
			return true
		}
	}
	return false
}

func truncateURL(url string, maxLen int) string {
	if len(url) <= maxLen {
		return url
	}
	return url[:runeBoundary(url, maxLen-3)] + "..."
}
