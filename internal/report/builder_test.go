package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/trustcheck/internal/adverse"
	"github.com/sells-group/trustcheck/internal/model"
	"github.com/sells-group/trustcheck/internal/patterns"
)

func classifier(t *testing.T) *adverse.Classifier {
	t.Helper()
	c, err := adverse.New(patterns.Default())
	require.NoError(t, err)
	return c
}

func merged(results ...model.RawResult) []*model.MergedResult {
	out := make([]*model.MergedResult, len(results))
	for i, r := range results {
		out[i] = model.NewMergedResult(r, "Q1")
	}
	return out
}

var sample = []model.RawResult{
	{
		Title:       "Consob fines Acme SpA over disclosure",
		Snippet:     "The regulator imposed a penalty on Acme.",
		Link:        "https://news.example.com/acme-fine",
		DisplayLink: "news.example.com",
	},
	{
		Title:       "Acme opens new plant",
		Snippet:     "Acme expands production in Turin.",
		Link:        "https://news.example.com/acme-plant",
		DisplayLink: "news.example.com",
	},
	{
		Title:       "Globex fraud trial begins",
		Snippet:     "Prosecutors allege fraud at Globex.",
		Link:        "https://news.example.com/globex",
		DisplayLink: "news.example.com",
	},
}

func TestBuild_AllPolicy(t *testing.T) {
	in := merged(sample...)
	in[0].AddHit("Q3")

	rep := NewBuilder(classifier(t), model.PolicyAll).Build("Acme SpA", in, model.LanguageEN)

	assert.Equal(t, "Acme SpA", rep.Query)
	assert.Equal(t, model.PolicyAll, rep.Policy)
	assert.Equal(t, model.LanguageEN, rep.Language)
	assert.Equal(t, 3, rep.TotalAnalyzed)
	assert.Equal(t, 1, rep.AdverseCount)
	require.Len(t, rep.Results, 3)

	fine := rep.Results[0]
	assert.Equal(t, 1, fine.Position)
	assert.True(t, fine.Relevant)
	assert.True(t, fine.IsNegative)
	assert.Equal(t, "news.example.com", fine.Source)
	assert.Equal(t, []string{"Q1", "Q3"}, fine.QueryHits)
	assert.Contains(t, fine.NegativeHits, "penalty:snippet")
	assert.Equal(t, model.RiskAuthority, fine.RiskType)
	assert.Equal(t, "CONSOB", fine.Authority)

	plant := rep.Results[1]
	assert.Equal(t, 2, plant.Position)
	assert.True(t, plant.Relevant)
	assert.False(t, plant.IsNegative)
	assert.Empty(t, plant.NegativeHits)
	assert.Empty(t, plant.RiskType)

	// Adverse vocabulary about a different entity is not adverse for Acme.
	globex := rep.Results[2]
	assert.False(t, globex.Relevant)
	assert.False(t, globex.IsNegative)
	assert.Empty(t, globex.NegativeHits)
}

func TestBuild_AdverseOnlyPolicy(t *testing.T) {
	rep := NewBuilder(classifier(t), model.PolicyAdverseOnly).Build("Acme SpA", merged(sample...), model.LanguageEN)

	assert.Equal(t, model.PolicyAdverseOnly, rep.Policy)
	assert.Equal(t, 3, rep.TotalAnalyzed)
	assert.Equal(t, 1, rep.AdverseCount)
	require.Len(t, rep.Results, 1)
	assert.Equal(t, 1, rep.Results[0].Position)
	assert.True(t, rep.Results[0].IsNegative)
}

func TestBuild_InvalidPolicyFallsBackToAll(t *testing.T) {
	b := NewBuilder(classifier(t), model.ResultsPolicy("everything"))
	assert.Equal(t, model.PolicyAll, b.Policy())
}

func TestBuild_Empty(t *testing.T) {
	rep := NewBuilder(classifier(t), model.PolicyAll).Build("Acme", nil, model.LanguageEN)
	assert.Zero(t, rep.TotalAnalyzed)
	assert.Zero(t, rep.AdverseCount)
	assert.NotNil(t, rep.Results)
	assert.Empty(t, rep.Results)
}

func TestBuild_RelevanceSeesWholeBlob(t *testing.T) {
	var seen string
	b := NewBuilder(classifier(t), model.PolicyAll, WithRelevance(func(_, text string) bool {
		seen = text
		return false
	}))

	b.Build("Acme", merged(model.RawResult{Title: "T", Snippet: "S", Link: "L", DisplayLink: "D"}), model.LanguageEN)
	assert.Equal(t, "T S L D", seen)
}

func TestBuild_ClassifierSkippedWhenIrrelevant(t *testing.T) {
	b := NewBuilder(classifier(t), model.PolicyAll, WithRelevance(func(string, string) bool { return false }))

	rep := b.Build("Acme", merged(sample[0]), model.LanguageEN)
	assert.Zero(t, rep.AdverseCount)
	assert.Empty(t, rep.Results[0].NegativeHits)
}

func TestBuild_AdverseCountInvariant(t *testing.T) {
	in := merged(
		model.RawResult{Title: "Acme fined", Link: "https://a/1"},
		model.RawResult{Title: "Acme lawsuit", Link: "https://a/2"},
		model.RawResult{Title: "Acme picnic", Link: "https://a/3"},
		model.RawResult{Title: "Fine lines serum by Acme", Link: "https://a/4"},
		model.RawResult{Title: "Acme bankruptcy", Snippet: "Acme files", Link: "https://a/5"},
	)

	for _, policy := range []model.ResultsPolicy{model.PolicyAll, model.PolicyAdverseOnly} {
		t.Run(string(policy), func(t *testing.T) {
			rep := NewBuilder(classifier(t), policy).Build("Acme", in, model.LanguageEN)

			negatives := 0
			for _, r := range rep.Results {
				assert.Equal(t, r.Relevant && len(r.NegativeHits) > 0, r.IsNegative)
				if r.IsNegative {
					negatives++
				}
			}
			assert.Equal(t, negatives, rep.AdverseCount)
			assert.Equal(t, 3, rep.AdverseCount)
			assert.LessOrEqual(t, rep.AdverseCount, rep.TotalAnalyzed)
			assert.Equal(t, 5, rep.TotalAnalyzed)
		})
	}
}
