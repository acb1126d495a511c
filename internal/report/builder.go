// Package report turns merged search results into a ScreeningReport.
package report

import (
	"github.com/sells-group/trustcheck/internal/entity"
	"github.com/sells-group/trustcheck/internal/model"
)

// Classifier finds adverse terms and types the event they describe.
type Classifier interface {
	FindAdverseHits(title, snippet string, lang model.Language) []model.NegativeHit
	TypeEvent(r model.RawResult) (model.RiskType, string)
}

// RelevanceFunc decides whether text concerns the queried entity.
type RelevanceFunc func(query, text string) bool

// Builder assembles reports. It holds no per-run state and is safe for
// concurrent use.
type Builder struct {
	classifier Classifier
	relevant   RelevanceFunc
	policy     model.ResultsPolicy
}

// Option configures a Builder.
type Option func(*Builder)

// WithRelevance replaces the entity matcher.
func WithRelevance(fn RelevanceFunc) Option {
	return func(b *Builder) {
		b.relevant = fn
	}
}

// NewBuilder returns a Builder applying policy to the results list. An
// invalid policy falls back to model.PolicyAll.
func NewBuilder(classifier Classifier, policy model.ResultsPolicy, opts ...Option) *Builder {
	if !policy.Valid() {
		policy = model.PolicyAll
	}
	b := &Builder{
		classifier: classifier,
		relevant:   entity.IsRelevant,
		policy:     policy,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Policy is the results policy the Builder applies.
func (b *Builder) Policy() model.ResultsPolicy {
	return b.policy
}

// Build analyzes merged in aggregation order. TotalAnalyzed always counts
// every merged result and AdverseCount every negative one; the policy only
// decides which records appear in Results.
func (b *Builder) Build(query string, merged []*model.MergedResult, lang model.Language) *model.ScreeningReport {
	rep := &model.ScreeningReport{
		Query:         query,
		Language:      lang,
		Policy:        b.policy,
		TotalAnalyzed: len(merged),
		Results:       make([]model.AnalyzedResult, 0, len(merged)),
	}

	for i, m := range merged {
		ar := b.analyze(query, m, lang)
		ar.Position = i + 1
		if ar.IsNegative {
			rep.AdverseCount++
		}
		if b.policy == model.PolicyAdverseOnly && !ar.IsNegative {
			continue
		}
		rep.Results = append(rep.Results, ar)
	}
	return rep
}

func (b *Builder) analyze(query string, m *model.MergedResult, lang model.Language) model.AnalyzedResult {
	source := m.DisplayLink
	ar := model.AnalyzedResult{
		Title:        m.Title,
		Snippet:      m.Snippet,
		Link:         m.Link,
		Source:       source,
		NegativeHits: []string{},
		QueryHits:    m.QueryHits(),
	}

	blob := m.Title + " " + m.Snippet + " " + m.Link + " " + source
	ar.Relevant = b.relevant(query, blob)
	if !ar.Relevant {
		return ar
	}

	hits := b.classifier.FindAdverseHits(m.Title, m.Snippet, lang)
	for _, h := range hits {
		ar.NegativeHits = append(ar.NegativeHits, h.String())
	}
	ar.IsNegative = len(hits) > 0
	if ar.IsNegative {
		ar.RiskType, ar.Authority = b.classifier.TypeEvent(m.RawResult)
	}
	return ar
}
