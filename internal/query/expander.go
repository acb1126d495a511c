// Package query expands an entity name into the search strings issued for a
// screening.
package query

import (
	"strconv"
	"strings"

	"github.com/sells-group/trustcheck/internal/model"
)

// Placeholder is replaced with the entity name in every template.
const Placeholder = "{name}"

// TemplateSource supplies ordered query templates per language.
type TemplateSource interface {
	LoadTemplates(lang model.Language) ([]string, error)
}

// Expander turns an entity name into deduplicated ScreeningQuery values.
// Templates are loaded once, at construction.
type Expander struct {
	templates map[model.Language][]string
}

// NewExpander loads templates for every supported language. A missing or
// empty template set is a ConfigError.
func NewExpander(src TemplateSource) (*Expander, error) {
	e := &Expander{templates: make(map[model.Language][]string, len(model.Languages))}
	for _, lang := range model.Languages {
		tpls, err := src.LoadTemplates(lang)
		if err != nil {
			if model.IsConfigError(err) {
				return nil, err
			}
			return nil, model.NewConfigError("templates "+string(lang), err)
		}
		e.templates[lang] = tpls
	}
	return e, nil
}

// Expand substitutes name into each template for lang, in template order.
// Query ids follow template position (Q1 is the first template), so blank or
// duplicate templates leave gaps. Duplicates are detected case-insensitively
// and the first occurrence wins.
func (e *Expander) Expand(name string, lang model.Language) ([]model.ScreeningQuery, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &model.ValidationError{Field: "query", Reason: "entity name must not be blank"}
	}
	tpls, ok := e.templates[lang]
	if !ok {
		return nil, &model.ValidationError{Field: "language", Reason: "no templates for " + string(lang)}
	}

	out := make([]model.ScreeningQuery, 0, len(tpls))
	seen := make(map[string]struct{}, len(tpls))
	for i, tpl := range tpls {
		text := strings.TrimSpace(strings.ReplaceAll(tpl, Placeholder, name))
		if text == "" {
			continue
		}
		key := strings.ToLower(text)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, model.ScreeningQuery{ID: "Q" + strconv.Itoa(i+1), Text: text})
	}
	return out, nil
}

// WithFallback guarantees at least one query is issued: when queries is
// empty it returns the raw, unexpanded entity name as Q1.
func WithFallback(queries []model.ScreeningQuery, raw string) []model.ScreeningQuery {
	if len(queries) > 0 {
		return queries
	}
	return []model.ScreeningQuery{{ID: "Q1", Text: strings.TrimSpace(raw)}}
}
