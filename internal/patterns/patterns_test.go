package patterns

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/trustcheck/internal/model"
)

func TestDefault_LoadsEveryTable(t *testing.T) {
	src := Default()
	assert.Equal(t, "embedded", src.Name())

	for _, lang := range model.Languages {
		templates, err := src.LoadTemplates(lang)
		require.NoError(t, err, string(lang))
		assert.NotEmpty(t, templates)
		for _, tpl := range templates {
			assert.Contains(t, tpl, "{name}")
		}
	}

	terms, err := src.LoadTerms()
	require.NoError(t, err)
	assert.Contains(t, terms.Terms[model.LanguageEN], "fine")
	assert.Contains(t, terms.Terms[model.LanguageEN], "fraud")
	assert.Contains(t, terms.Terms[model.LanguageIT], "multa")
	require.Len(t, terms.Exclusions, 4)
	for _, ex := range terms.Exclusions {
		assert.Equal(t, []string{"fine", "multa"}, ex.Suppresses)
	}

	events, err := src.LoadEvents()
	require.NoError(t, err)
	require.Len(t, events.Categories, 3)
	assert.Equal(t, model.RiskAuthority, events.Categories[0].Type)
	assert.Equal(t, model.RiskClassAction, events.Categories[2].Type)
	assert.Contains(t, events.Authorities, "consob")
}

func TestLoadTemplates_MissingFile(t *testing.T) {
	src := NewFS(fstest.MapFS{}, "empty")

	_, err := src.LoadTemplates(model.LanguageEN)
	require.Error(t, err)
	assert.True(t, model.IsConfigError(err))
	assert.Contains(t, err.Error(), "queries_en.yaml")
}

func TestLoadTemplates_OnlyBlankTemplates(t *testing.T) {
	src := NewFS(fstest.MapFS{
		"queries_it.yaml": {Data: []byte("patterns:\n  - ''\n  - '   '\n")},
	}, "mem")

	_, err := src.LoadTemplates(model.LanguageIT)
	require.Error(t, err)
	assert.True(t, model.IsConfigError(err))
}

func TestLoadTemplates_KeepsBlankPositions(t *testing.T) {
	src := NewFS(fstest.MapFS{
		"queries_en.yaml": {Data: []byte("patterns:\n  - '{name} fraud'\n  - ''\n  - '{name} fine'\n")},
	}, "mem")

	templates, err := src.LoadTemplates(model.LanguageEN)
	require.NoError(t, err)
	assert.Equal(t, []string{"{name} fraud", "", "{name} fine"}, templates)
}

func TestLoadTemplates_InvalidYAML(t *testing.T) {
	src := NewFS(fstest.MapFS{
		"queries_en.yaml": {Data: []byte("patterns: [unterminated")},
	}, "mem")

	_, err := src.LoadTemplates(model.LanguageEN)
	require.Error(t, err)
	assert.True(t, model.IsConfigError(err))
}

func TestLoadTerms_NoTerms(t *testing.T) {
	src := NewFS(fstest.MapFS{
		TermsFile: {Data: []byte("exclusions: []\n")},
	}, "mem")

	_, err := src.LoadTerms()
	require.Error(t, err)
	assert.True(t, model.IsConfigError(err))
}

func TestLoadTerms_ExclusionWithoutScope(t *testing.T) {
	src := NewFS(fstest.MapFS{
		TermsFile: {Data: []byte("en: [fraud]\nit: [frode]\nexclusions:\n  - pattern: 'wrinkles'\n")},
	}, "mem")

	_, err := src.LoadTerms()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exclusion 0")
}

func TestLoadTerms_MissingLanguage(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		missing model.Language
	}{
		{"english absent", "it: [frode]\n", model.LanguageEN},
		{"italian absent", "en: [fraud]\n", model.LanguageIT},
		{"english empty", "en: []\nit: [frode]\n", model.LanguageEN},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewFS(fstest.MapFS{TermsFile: {Data: []byte(tt.data)}}, "mem")

			_, err := src.LoadTerms()
			require.Error(t, err)
			assert.True(t, model.IsConfigError(err))
			assert.Contains(t, err.Error(), `language "`+string(tt.missing)+`"`)
		})
	}
}

func TestLoadEvents_NoCategories(t *testing.T) {
	src := NewFS(fstest.MapFS{
		EventsFile: {Data: []byte("authorities: [sec]\n")},
	}, "mem")

	_, err := src.LoadEvents()
	require.Error(t, err)
	assert.True(t, model.IsConfigError(err))
}

func TestNewDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "queries_en.yaml"), []byte("patterns:\n  - '{name} lawsuit'\n"), 0o644))

	src := NewDir(dir)
	assert.Equal(t, dir, src.Name())

	templates, err := src.LoadTemplates(model.LanguageEN)
	require.NoError(t, err)
	assert.Equal(t, []string{"{name} lawsuit"}, templates)

	_, err = src.LoadTerms()
	assert.True(t, model.IsConfigError(err))
}
