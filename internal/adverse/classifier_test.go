package adverse

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/trustcheck/internal/model"
	"github.com/sells-group/trustcheck/internal/patterns"
)

func newDefault(t *testing.T) *Classifier {
	t.Helper()
	c, err := New(patterns.Default())
	require.NoError(t, err)
	return c
}

func hitStrings(hits []model.NegativeHit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.String()
	}
	return out
}

func TestFindAdverseHits_CosmeticExclusion(t *testing.T) {
	c := newDefault(t)

	hits := c.FindAdverseHits("Fine lines and wrinkles cream", "", model.LanguageEN)
	assert.Empty(t, hits)
}

func TestFindAdverseHits_ExclusionOnlyBlocksAmbiguousTerm(t *testing.T) {
	c := newDefault(t)

	hits := c.FindAdverseHits("Company fined for fraud and fine lines product launch", "", model.LanguageEN)
	got := hitStrings(hits)
	assert.Contains(t, got, "fraud:title")
	assert.Contains(t, got, "fined:title")
	assert.NotContains(t, got, "fine:title")
}

func TestFindAdverseHits_FieldsAreIndependent(t *testing.T) {
	c := newDefault(t)

	hits := c.FindAdverseHits("New skin care line launched", "Regulator imposes a fine on Acme", model.LanguageEN)
	assert.Equal(t, []string{"fine:snippet"}, hitStrings(hits))
}

func TestFindAdverseHits_TableOrderTitleBeforeSnippet(t *testing.T) {
	c := newDefault(t)

	hits := c.FindAdverseHits("Fraud probe widens", "Acme faces fine and fraud claims", model.LanguageEN)
	// Table order: fine, fraud, probe.
	assert.Equal(t, []string{"fine:snippet", "fraud:title", "fraud:snippet", "probe:title"}, hitStrings(hits))
}

func TestFindAdverseHits_WordBoundaries(t *testing.T) {
	c := newDefault(t)

	assert.Empty(t, c.FindAdverseHits("Refined sugar prices", "The finest wines", model.LanguageEN))
	assert.Empty(t, c.FindAdverseHits("Scampi recipes", "", model.LanguageEN))
	assert.Equal(t, []string{"scam:title"}, hitStrings(c.FindAdverseHits("Crypto scam!", "", model.LanguageEN)))
}

func TestFindAdverseHits_MultiWordWhitespaceFlexible(t *testing.T) {
	c := newDefault(t)

	hits := c.FindAdverseHits("", "charged with MONEY \n  laundering", model.LanguageEN)
	assert.Equal(t, []string{"money laundering:snippet"}, hitStrings(hits))
}

func TestFindAdverseHits_Italian(t *testing.T) {
	c := newDefault(t)

	hits := c.FindAdverseHits("Multa Antitrust per Acme", "Indagine della procura per frode", model.LanguageIT)
	assert.Equal(t, []string{"multa:title", "frode:snippet", "indagine:snippet"}, hitStrings(hits))
}

func TestFindAdverseHits_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	c := newDefault(t)

	hits := c.FindAdverseHits("Bankruptcy filing", "", model.Language("de"))
	assert.Equal(t, []string{"bankruptcy:title"}, hitStrings(hits))
}

func TestFindAdverseHits_ItalianCosmeticExclusion(t *testing.T) {
	c := newDefault(t)

	hits := c.FindAdverseHits("Crema antirughe: multa e frode", "Indagine per frode", model.LanguageIT)
	assert.Equal(t, []string{"frode:title", "frode:snippet", "indagine:snippet"}, hitStrings(hits))
}

func TestFindAdverseHits_SupportedLanguageWithoutTableHasNoFallback(t *testing.T) {
	c, err := NewFromTables(&patterns.TermTables{
		Terms: map[model.Language][]string{model.LanguageIT: {"frode"}},
	}, nil)
	require.NoError(t, err)

	assert.Empty(t, c.FindAdverseHits("Acme fraud", "", model.LanguageEN))
}

func TestNew_MissingLanguageTableIsConfigError(t *testing.T) {
	src := patterns.NewFS(fstest.MapFS{
		patterns.TermsFile:  {Data: []byte("it: [frode]\n")},
		patterns.EventsFile: {Data: []byte("categories:\n  - type: judicial\n    patterns: ['arrest']\n")},
	}, "mem")

	_, err := New(src)
	require.Error(t, err)
	assert.True(t, model.IsConfigError(err))
	assert.Contains(t, err.Error(), `language "en"`)
}

func TestFindAdverseHits_UnicodeBoundaries(t *testing.T) {
	c, err := NewFromTables(&patterns.TermTables{
		Terms: map[model.Language][]string{model.LanguageIT: {"falsità"}},
	}, nil)
	require.NoError(t, err)

	assert.Len(t, c.FindAdverseHits("La falsità del bilancio", "", model.LanguageIT), 1)
	assert.Empty(t, c.FindAdverseHits("falsitàx", "", model.LanguageIT))
}

func TestFindAdverseHits_ExclusionScopeIsData(t *testing.T) {
	c, err := NewFromTables(&patterns.TermTables{
		Terms: map[model.Language][]string{model.LanguageEN: {"charge", "fraud"}},
		Exclusions: []patterns.Exclusion{
			{Pattern: `\bphone\s+charger?\b`, Suppresses: []string{"Charge"}},
		},
	}, nil)
	require.NoError(t, err)

	hits := c.FindAdverseHits("Phone charge scandal: fraud alleged", "", model.LanguageEN)
	assert.Equal(t, []string{"fraud:title"}, hitStrings(hits))
}

func TestNewFromTables_InvalidExclusion(t *testing.T) {
	_, err := NewFromTables(&patterns.TermTables{
		Terms:      map[model.Language][]string{model.LanguageEN: {"fraud"}},
		Exclusions: []patterns.Exclusion{{Pattern: "(", Suppresses: []string{"fine"}}},
	}, nil)
	require.Error(t, err)
	assert.True(t, model.IsConfigError(err))
}

func TestNewFromTables_UnknownEventType(t *testing.T) {
	_, err := NewFromTables(&patterns.TermTables{
		Terms: map[model.Language][]string{model.LanguageEN: {"fraud"}},
	}, &patterns.EventTables{
		Categories: []patterns.EventCategory{{Type: "gossip", Patterns: []string{"rumou?r"}}},
	})
	require.Error(t, err)
	assert.True(t, model.IsConfigError(err))
}

func TestTypeEvent(t *testing.T) {
	c := newDefault(t)

	tests := []struct {
		name          string
		result        model.RawResult
		wantType      model.RiskType
		wantAuthority string
	}{
		{
			name:          "regulator fine",
			result:        model.RawResult{Title: "Consob fines Acme SpA"},
			wantType:      model.RiskAuthority,
			wantAuthority: "CONSOB",
		},
		{
			name:          "judicial with authority in link",
			result:        model.RawResult{Title: "CEO arrested in fraud case", Link: "https://www.sec.gov/news/2024-1"},
			wantType:      model.RiskJudicial,
			wantAuthority: "SEC",
		},
		{
			name:     "class action",
			result:   model.RawResult{Snippet: "Investors file class action against Acme"},
			wantType: model.RiskClassAction,
		},
		{
			name:   "no event",
			result: model.RawResult{Title: "Acme opens a new office", DisplayLink: "news.example.com"},
		},
		{
			name:     "sec inside a word is not an authority",
			result:   model.RawResult{Title: "Second bankruptcy for Acme"},
			wantType: model.RiskJudicial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, authority := c.TypeEvent(tt.result)
			assert.Equal(t, tt.wantType, kind)
			assert.Equal(t, tt.wantAuthority, authority)
		})
	}
}
