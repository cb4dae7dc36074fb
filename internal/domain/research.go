package domain

import (
	"encoding/json"
	"strings"
)

const MaxTopicLength = 1000

type ResearchRequest struct {
	Topic          string
	Provider       ProviderID
	Model          string
	Depth          Depth
	Sources        []SourceKind
	IncludeSources bool
	// MaxResults переопределяет бюджет результатов глубины, 0 - по умолчанию
	MaxResults int
}

// Normalize подставляет значения по умолчанию и чистит поля. Вызывается до Validate.
func (r *ResearchRequest) Normalize() {
	r.Topic = strings.TrimSpace(r.Topic)
	r.Model = strings.TrimSpace(r.Model)
	if r.Depth == "" {
		r.Depth = DepthBasic
	}
	if r.Sources == nil {
		r.Sources = DefaultSources()
	}
	r.Sources = DistinctSources(r.Sources)
}

func (r *ResearchRequest) Validate() error {
	if r.Topic == "" {
		return ErrEmptyTopic
	}
	if len(r.Topic) > MaxTopicLength {
		return ErrTopicTooLong
	}
	if r.Provider == "" {
		return ErrEmptyProvider
	}
	if !r.Provider.IsValid() {
		return ErrUnknownProvider
	}
	if r.Model == "" {
		return ErrEmptyModel
	}
	if !r.Depth.IsValid() {
		return ErrInvalidDepth
	}
	if len(r.Sources) == 0 {
		return ErrNoSources
	}
	for _, s := range r.Sources {
		if !s.IsValid() {
			return ErrNoSources
		}
	}
	if r.MaxResults < 0 || r.MaxResults > MaxResultBudget {
		return ErrInvalidBudget
	}
	return nil
}

// Budget - лимиты запроса с учетом переопределения MaxResults
func (r *ResearchRequest) Budget() Budget {
	b := BudgetFor(r.Depth, r.Model)
	if r.MaxResults > 0 {
		b.Results = r.MaxResults
	}
	return b
}

// ResearchReport - итог исследования. У отчетов detailed и comprehensive
// RelatedTopics не nil, даже если модель не предложила ни одной темы.
type ResearchReport struct {
	Summary          string         `json:"summary"`
	Sources          []SearchResult `json:"sources"`
	DetailedAnalysis string         `json:"detailedAnalysis,omitempty"`
	RelatedTopics    []string       `json:"relatedTopics,omitempty"`
}

// MarshalJSON пишет detailedAnalysis и relatedTopics только для глубоких отчетов,
// признак глубокого отчета - RelatedTopics != nil.
func (r ResearchReport) MarshalJSON() ([]byte, error) {
	if r.RelatedTopics == nil {
		return json.Marshal(struct {
			Summary string         `json:"summary"`
			Sources []SearchResult `json:"sources"`
		}{r.Summary, r.Sources})
	}
	return json.Marshal(struct {
		Summary          string         `json:"summary"`
		Sources          []SearchResult `json:"sources"`
		DetailedAnalysis string         `json:"detailedAnalysis"`
		RelatedTopics    []string       `json:"relatedTopics"`
	}{r.Summary, r.Sources, r.DetailedAnalysis, r.RelatedTopics})
}
