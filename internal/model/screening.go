package model

import (
	"fmt"
	"strings"
)

// Language selects the query templates and negative-term tables used for a
// screening.
type Language string

const (
	LanguageEN Language = "en"
	LanguageIT Language = "it"
)

// Languages lists every supported language in a stable order.
var Languages = []Language{LanguageEN, LanguageIT}

// ParseLanguage maps a caller-supplied selector to a Language. An empty
// selector yields fallback. Regional variants ("en-GB", "it_IT") are accepted.
func ParseLanguage(s string, fallback Language) (Language, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "":
		return fallback, nil
	case strings.HasPrefix(v, "en"):
		return LanguageEN, nil
	case strings.HasPrefix(v, "it"):
		return LanguageIT, nil
	}
	return "", &ValidationError{Field: "language", Reason: fmt.Sprintf("unsupported language %q", s)}
}

// ResultsPolicy decides which analyzed results populate ScreeningReport.Results.
type ResultsPolicy string

const (
	// PolicyAll reports every merged result, adverse or not.
	PolicyAll ResultsPolicy = "all"
	// PolicyAdverseOnly reports only results flagged IsNegative.
	PolicyAdverseOnly ResultsPolicy = "adverse_only"
)

// Valid reports whether p is a known policy.
func (p ResultsPolicy) Valid() bool {
	return p == PolicyAll || p == PolicyAdverseOnly
}

// ScreeningQuery is one expanded search string sent to the provider.
type ScreeningQuery struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// RawResult is a single search-provider hit. Link is the dedup key.
type RawResult struct {
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	Link        string `json:"link"`
	DisplayLink string `json:"displayLink"`
}

// MergedResult is a RawResult annotated with the set of expanded queries
// whose result pages contained its link. The set only grows.
type MergedResult struct {
	RawResult
	queryHits []string
}

// NewMergedResult creates a MergedResult first seen by queryID.
func NewMergedResult(r RawResult, queryID string) *MergedResult {
	return &MergedResult{RawResult: r, queryHits: []string{queryID}}
}

// AddHit unions queryID into the hit set. Stored result fields are untouched.
func (m *MergedResult) AddHit(queryID string) {
	if m.HasHit(queryID) {
		return
	}
	m.queryHits = append(m.queryHits, queryID)
}

// HasHit reports whether queryID already matched this result.
func (m *MergedResult) HasHit(queryID string) bool {
	for _, id := range m.queryHits {
		if id == queryID {
			return true
		}
	}
	return false
}

// QueryHits returns the query ids in the order they first matched.
func (m *MergedResult) QueryHits() []string {
	return append([]string(nil), m.queryHits...)
}

// Location names the result field an adverse term was found in.
type Location string

const (
	InTitle   Location = "title"
	InSnippet Location = "snippet"
)

// NegativeHit is one matched adverse-event term at one location.
type NegativeHit struct {
	Keyword string   `json:"keyword"`
	Where   Location `json:"where"`
}

// String renders the hit as "keyword:where".
func (h NegativeHit) String() string {
	return h.Keyword + ":" + string(h.Where)
}

// RiskType classifies the kind of adverse event a result describes.
type RiskType string

const (
	RiskAuthority   RiskType = "authority"
	RiskJudicial    RiskType = "judicial"
	RiskClassAction RiskType = "class_action"
)

// AnalyzedResult is the final per-result record. IsNegative holds iff
// Relevant is true and NegativeHits is non-empty.
type AnalyzedResult struct {
	Title        string   `json:"title" yaml:"title"`
	Snippet      string   `json:"snippet" yaml:"snippet"`
	Link         string   `json:"link" yaml:"link"`
	Source       string   `json:"source" yaml:"source"`
	Position     int      `json:"position" yaml:"position"`
	IsNegative   bool     `json:"isNegative" yaml:"isNegative"`
	Relevant     bool     `json:"relevant" yaml:"relevant"`
	NegativeHits []string `json:"negativeHits" yaml:"negativeHits"`
	QueryHits    []string `json:"queryHits" yaml:"queryHits"`
	RiskType     RiskType `json:"riskType,omitempty" yaml:"riskType,omitempty"`
	Authority    string   `json:"authority,omitempty" yaml:"authority,omitempty"`
}

// ScreeningReport is the output of one screening. It is never mutated after
// it is returned.
type ScreeningReport struct {
	ID               string           `json:"id" yaml:"id"`
	Query            string           `json:"query" yaml:"query"`
	Language         Language         `json:"language" yaml:"language"`
	Policy           ResultsPolicy    `json:"policy" yaml:"policy"`
	TotalAnalyzed    int              `json:"totalAnalyzed" yaml:"totalAnalyzed"`
	AdverseCount     int              `json:"adverseCount" yaml:"adverseCount"`
	Queries          []ScreeningQuery `json:"queries,omitempty" yaml:"queries,omitempty"`
	ProviderCalls    int              `json:"providerCalls" yaml:"providerCalls"`
	EstimatedCostUSD float64          `json:"estimatedCostUSD" yaml:"estimatedCostUSD"`
	Results          []AnalyzedResult `json:"results" yaml:"results"`
}
