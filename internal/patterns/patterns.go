// Package patterns loads the data tables that drive a screening: search
// query templates per language, adverse-event vocabularies, exclusion
// phrases, and risk-event categories. Tables are YAML files read from an
// fs.FS, either a directory on disk or the defaults embedded in the binary.
package patterns

import (
	"embed"
	"io/fs"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/trustcheck/internal/model"
)

//go:embed data/*.yaml
var embedded embed.FS

// File names looked up in the source filesystem.
const (
	TermsFile  = "negative_terms.yaml"
	EventsFile = "events.yaml"
)

// TemplatesFile returns the query template file name for lang.
func TemplatesFile(lang model.Language) string {
	return "queries_" + string(lang) + ".yaml"
}

// Exclusion marks a field as a known false-positive context for the terms
// it suppresses.
type Exclusion struct {
	Pattern    string   `yaml:"pattern"`
	Suppresses []string `yaml:"suppresses"`
}

// TermTables holds the per-language adverse vocabularies and the
// language-independent exclusions.
type TermTables struct {
	Terms      map[model.Language][]string
	Exclusions []Exclusion
}

// EventCategory groups the patterns that identify one kind of risk event.
type EventCategory struct {
	Type     model.RiskType `yaml:"type"`
	Patterns []string       `yaml:"patterns"`
}

// EventTables drives risk-event typing.
type EventTables struct {
	Categories  []EventCategory `yaml:"categories"`
	Authorities []string        `yaml:"authorities"`
}

// Source reads pattern tables from a filesystem.
type Source struct {
	fsys fs.FS
	name string
}

// NewDir returns a Source reading tables from dir on disk.
func NewDir(dir string) *Source {
	return &Source{fsys: os.DirFS(dir), name: dir}
}

// NewFS returns a Source reading tables from fsys.
func NewFS(fsys fs.FS, name string) *Source {
	return &Source{fsys: fsys, name: name}
}

// Default returns a Source over the tables embedded in the binary.
func Default() *Source {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		// data/ is embedded at build time; Sub only fails on a bad path.
		panic(err)
	}
	return &Source{fsys: sub, name: "embedded"}
}

// Name identifies the source in logs.
func (s *Source) Name() string {
	return s.name
}

type templateFile struct {
	Patterns []string `yaml:"patterns"`
}

// LoadTemplates returns the ordered query templates for lang. Blank entries
// are kept so template positions stay stable; at least one non-blank
// template is required.
func (s *Source) LoadTemplates(lang model.Language) ([]string, error) {
	file := TemplatesFile(lang)
	var tf templateFile
	if err := s.decode(file, &tf); err != nil {
		return nil, err
	}
	usable := 0
	for _, p := range tf.Patterns {
		if strings.TrimSpace(p) != "" {
			usable++
		}
	}
	if usable == 0 {
		return nil, model.NewConfigError(file, eris.New("no usable templates"))
	}
	return tf.Patterns, nil
}

type termFile struct {
	EN         []string    `yaml:"en"`
	IT         []string    `yaml:"it"`
	Exclusions []Exclusion `yaml:"exclusions"`
}

// LoadTerms returns the adverse vocabularies and exclusion phrases. Every
// supported language needs a non-empty vocabulary.
func (s *Source) LoadTerms() (*TermTables, error) {
	var tf termFile
	if err := s.decode(TermsFile, &tf); err != nil {
		return nil, err
	}
	tables := &TermTables{
		Terms:      make(map[model.Language][]string, 2),
		Exclusions: tf.Exclusions,
	}
	if len(tf.EN) > 0 {
		tables.Terms[model.LanguageEN] = tf.EN
	}
	if len(tf.IT) > 0 {
		tables.Terms[model.LanguageIT] = tf.IT
	}
	for _, lang := range model.Languages {
		if len(tables.Terms[lang]) == 0 {
			return nil, model.NewConfigError(TermsFile, eris.Errorf("no terms for language %q", lang))
		}
	}
	for i, ex := range tf.Exclusions {
		if strings.TrimSpace(ex.Pattern) == "" || len(ex.Suppresses) == 0 {
			return nil, model.NewConfigError(TermsFile, eris.Errorf("exclusion %d needs a pattern and suppressed terms", i))
		}
	}
	return tables, nil
}

// LoadEvents returns the risk-event categories and authority keywords.
func (s *Source) LoadEvents() (*EventTables, error) {
	var et EventTables
	if err := s.decode(EventsFile, &et); err != nil {
		return nil, err
	}
	if len(et.Categories) == 0 {
		return nil, model.NewConfigError(EventsFile, eris.New("no event categories"))
	}
	return &et, nil
}

func (s *Source) decode(file string, out any) error {
	data, err := fs.ReadFile(s.fsys, file)
	if err != nil {
		return model.NewConfigError(file, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return model.NewConfigError(file, err)
	}
	return nil
}
