package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// Depth - насколько глубоко исследуем тему
type Depth string

const (
	DepthBasic         Depth = "basic"
	DepthDetailed      Depth = "detailed"
	DepthComprehensive Depth = "comprehensive"
)

func (d Depth) IsValid() bool {
	switch d {
	case DepthBasic, DepthDetailed, DepthComprehensive:
		return true
	}
	return false
}

func (d Depth) String() string { return string(d) }

// Deep - нужны ли анализ и связанные темы
func (d Depth) Deep() bool {
	return d == DepthDetailed || d == DepthComprehensive
}

// MaxResultBudget - верхняя граница для ручного переопределения бюджета результатов
const MaxResultBudget = 20

// Budget - лимиты одного запроса. Полностью определяется парой (depth, model).
type Budget struct {
	Results        int
	FetchCount     int
	SummaryTokens  int
	AnalysisTokens int
	TopicsTokens   int
}

type tokenPair struct{ std, large int }

type depthLimits struct {
	results  int
	fetch    int
	summary  tokenPair
	analysis tokenPair
	topics   tokenPair
}

var limitsByDepth = map[Depth]depthLimits{
	DepthBasic: {
		results: 3,
		fetch:   0,
		summary: tokenPair{1500, 2000},
	},
	DepthDetailed: {
		results:  5,
		fetch:    4,
		summary:  tokenPair{3000, 5000},
		analysis: tokenPair{2000, 3000},
		topics:   tokenPair{1500, 2000},
	},
	DepthComprehensive: {
		results:  8,
		fetch:    6,
		summary:  tokenPair{8000, 12000},
		analysis: tokenPair{3000, 5000},
		topics:   tokenPair{1500, 2000},
	},
}

// BudgetFor возвращает лимиты для глубины и модели.
// Для неизвестной глубины - лимиты basic.
func BudgetFor(depth Depth, model string) Budget {
	l, ok := limitsByDepth[depth]
	if !ok {
		l = limitsByDepth[DepthBasic]
	}

	pick := func(p tokenPair) int {
		if IsLargeContextModel(model) {
			return p.large
		}
		return p.std
	}

	return Budget{
		Results:        l.results,
		FetchCount:     l.fetch,
		SummaryTokens:  pick(l.summary),
		AnalysisTokens: pick(l.analysis),
		TopicsTokens:   pick(l.topics),
	}
}

var claudeGeneration = regexp.MustCompile(`claude-(?:[a-z]+-)?(\d+)`)

// IsLargeContextModel - модель с расширенным контекстом: 32k, turbo или claude третьего поколения и новее
func IsLargeContextModel(model string) bool {
	m := strings.ToLower(model)
	if strings.Contains(m, "32k") || strings.Contains(m, "turbo") {
		return true
	}
	match := claudeGeneration.FindStringSubmatch(m)
	if len(match) < 2 {
		return false
	}
	gen, err := strconv.Atoi(match[1])
	if err != nil {
		return false
	}
	return gen >= 3
}
