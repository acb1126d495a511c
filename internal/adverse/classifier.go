// Package adverse finds negative, regulatory and legal-event vocabulary in
// search result fields.
package adverse

import (
	"regexp"
	"slices"
	"strings"

	"github.com/sells-group/trustcheck/internal/model"
	"github.com/sells-group/trustcheck/internal/patterns"
)

// Unicode-aware word boundaries; RE2's \b only knows ASCII word characters.
const (
	boundaryStart = `(?:^|[^\p{L}\p{N}_])`
	boundaryEnd   = `(?:[^\p{L}\p{N}_]|$)`
)

// TermSource supplies the vocabulary and event tables.
type TermSource interface {
	LoadTerms() (*patterns.TermTables, error)
	LoadEvents() (*patterns.EventTables, error)
}

type term struct {
	label string
	rx    *regexp.Regexp
}

type exclusion struct {
	rx         *regexp.Regexp
	suppresses []string
}

// Classifier holds compiled term, exclusion and event tables. It is safe for
// concurrent use once built.
type Classifier struct {
	terms       map[model.Language][]term
	exclusions  []exclusion
	events      []eventCategory
	authorities []term
}

// New loads and compiles every table from src. Missing or invalid tables
// are a ConfigError.
func New(src TermSource) (*Classifier, error) {
	terms, err := src.LoadTerms()
	if err != nil {
		return nil, asConfigError(patterns.TermsFile, err)
	}
	events, err := src.LoadEvents()
	if err != nil {
		return nil, asConfigError(patterns.EventsFile, err)
	}
	return NewFromTables(terms, events)
}

// NewFromTables compiles already-loaded tables. events may be nil, in which
// case risk-event typing always reports no event.
func NewFromTables(terms *patterns.TermTables, events *patterns.EventTables) (*Classifier, error) {
	c := &Classifier{terms: make(map[model.Language][]term, len(terms.Terms))}

	for lang, list := range terms.Terms {
		compiled, err := compileTerms(list)
		if err != nil {
			return nil, model.NewConfigError(patterns.TermsFile, err)
		}
		c.terms[lang] = compiled
	}

	for _, ex := range terms.Exclusions {
		rx, err := regexp.Compile(`(?i)` + ex.Pattern)
		if err != nil {
			return nil, model.NewConfigError(patterns.TermsFile, err)
		}
		c.exclusions = append(c.exclusions, exclusion{rx: rx, suppresses: ex.Suppresses})
	}

	if events != nil {
		if err := c.compileEvents(events); err != nil {
			return nil, model.NewConfigError(patterns.EventsFile, err)
		}
	}
	return c, nil
}

// FindAdverseHits tests every term for lang against title and snippet
// independently. Hits come out in term-table order, title before snippet for
// each term. A field that matches an exclusion suppresses only the terms that
// exclusion names; other terms in the same field still hit. A language
// outside model.Languages is matched against the English table.
func (c *Classifier) FindAdverseHits(title, snippet string, lang model.Language) []model.NegativeHit {
	terms, ok := c.terms[lang]
	if !ok && !slices.Contains(model.Languages, lang) {
		terms = c.terms[model.LanguageEN]
	}

	titleSuppressed := c.suppressed(title)
	snippetSuppressed := c.suppressed(snippet)

	var hits []model.NegativeHit
	for _, t := range terms {
		if t.rx.MatchString(title) && !titleSuppressed[strings.ToLower(t.label)] {
			hits = append(hits, model.NegativeHit{Keyword: t.label, Where: model.InTitle})
		}
		if t.rx.MatchString(snippet) && !snippetSuppressed[strings.ToLower(t.label)] {
			hits = append(hits, model.NegativeHit{Keyword: t.label, Where: model.InSnippet})
		}
	}
	return hits
}

// suppressed returns the lowercased labels blocked in field by matching
// exclusions.
func (c *Classifier) suppressed(field string) map[string]bool {
	if field == "" {
		return nil
	}
	var out map[string]bool
	for _, ex := range c.exclusions {
		if !ex.rx.MatchString(field) {
			continue
		}
		if out == nil {
			out = make(map[string]bool, len(ex.suppresses))
		}
		for _, label := range ex.suppresses {
			out[strings.ToLower(label)] = true
		}
	}
	return out
}

func compileTerms(list []string) ([]term, error) {
	out := make([]term, 0, len(list))
	for _, raw := range list {
		t := strings.TrimSpace(raw)
		if t == "" {
			continue
		}
		rx, err := regexp.Compile(termPattern(t))
		if err != nil {
			return nil, err
		}
		out = append(out, term{label: t, rx: rx})
	}
	return out, nil
}

// termPattern builds a case-insensitive matcher: whole-word for single
// words, whitespace-flexible exact phrase for multi-word terms.
func termPattern(t string) string {
	words := strings.Fields(t)
	if len(words) == 1 {
		return `(?i)` + boundaryStart + regexp.QuoteMeta(t) + boundaryEnd
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return `(?i)` + strings.Join(quoted, `\s+`)
}

func asConfigError(source string, err error) error {
	if model.IsConfigError(err) {
		return err
	}
	return model.NewConfigError(source, err)
}
