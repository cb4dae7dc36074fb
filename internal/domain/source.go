package domain

import "strings"

// SourceKind - поисковый бэкенд, из которого пришел результат
type SourceKind string

const (
	SourceWeb       SourceKind = "web"
	SourceWikipedia SourceKind = "wikipedia"
	SourceScholar   SourceKind = "scholar"
	SourceGitHub    SourceKind = "github"
	SourceNews      SourceKind = "news"
)

// MaxSources - сколько разных источников можно опросить за один запрос
const MaxSources = 5

// RegistrationOrder - фиксированный порядок слияния результатов.
// От него зависит, какой из дублей по ссылке выживет.
var RegistrationOrder = []SourceKind{
	SourceWeb,
	SourceWikipedia,
	SourceScholar,
	SourceGitHub,
	SourceNews,
}

// DefaultSources - что опрашиваем, если клиент не указал sources
func DefaultSources() []SourceKind {
	return []SourceKind{SourceWeb, SourceWikipedia, SourceNews, SourceScholar, SourceGitHub}
}

func (s SourceKind) IsValid() bool {
	switch s {
	case SourceWeb, SourceWikipedia, SourceScholar, SourceGitHub, SourceNews:
		return true
	}
	return false
}

func (s SourceKind) String() string { return string(s) }

// ParseSources превращает имена в упорядоченное множество источников.
// Дубли схлопываются, неизвестные имена возвращаются отдельно, лишнее сверх MaxSources отбрасывается.
func ParseSources(names []string) (kinds []SourceKind, unknown []string) {
	seen := make(map[SourceKind]bool)
	for _, n := range names {
		k := SourceKind(strings.ToLower(strings.TrimSpace(n)))
		if !k.IsValid() {
			unknown = append(unknown, n)
			continue
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		kinds = append(kinds, k)
	}
	if len(kinds) > MaxSources {
		kinds = kinds[:MaxSources]
	}
	return kinds, unknown
}

// DistinctSources схлопывает повторы с сохранением порядка и режет до MaxSources.
// Пустой не-nil список остается пустым не-nil.
func DistinctSources(sources []SourceKind) []SourceKind {
	seen := make(map[SourceKind]bool, len(sources))
	out := make([]SourceKind, 0, len(sources))
	for _, s := range sources {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) == MaxSources {
			break
		}
	}
	return out
}

// JoinSources - список источников для текста промпта, в порядке клиента
func JoinSources(kinds []SourceKind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// SearchResult - нормализованный результат поиска. После создания адаптером не меняется.
type SearchResult struct {
	Title    string     `json:"title"`
	Link     string     `json:"link"`
	Snippet  string     `json:"snippet"`
	Source   SourceKind `json:"source"`
	Position int        `json:"position"`
}
