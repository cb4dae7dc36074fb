package telegram

import (
	"strings"

	"github.com/kitbuilder587/research-bot/internal/domain"
)

// ParseQueryCommand: /quick -> basic, /research -> detailed, /deep -> comprehensive,
// обычный текст -> defaultDepth
func ParseQueryCommand(text string, defaultDepth domain.Depth) (topic string, depth domain.Depth) {
	text = strings.TrimSpace(text)

	if text == "" {
		return "", defaultDepth
	}

	if !strings.HasPrefix(text, "/") {
		return normalizeSpaces(text), defaultDepth
	}

	parts := strings.SplitN(text, " ", 2)
	command := strings.ToLower(parts[0])
	// в группах команда приходит как /deep@botname
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}

	var rest string
	if len(parts) > 1 {
		rest = normalizeSpaces(parts[1])
	}

	switch command {
	case "/quick":
		return rest, domain.DepthBasic
	case "/research":
		return rest, domain.DepthDetailed
	case "/deep":
		return rest, domain.DepthComprehensive
	default:
		return text, defaultDepth
	}
}

func normalizeSpaces(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
