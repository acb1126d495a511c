package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/trustcheck/internal/model"
)

func sampleReport() *model.ScreeningReport {
	return &model.ScreeningReport{
		ID:            "3f1c2a9e-0000-4000-8000-000000000001",
		Query:         "Acme SpA",
		Language:      model.LanguageEN,
		Policy:        model.PolicyAll,
		TotalAnalyzed: 2,
		AdverseCount:  1,
		ProviderCalls: 4,
		Results: []model.AnalyzedResult{
			{
				Title:        "Consob fines Acme SpA",
				Snippet:      "Penalty imposed.",
				Link:         "https://news.example.com/a",
				Source:       "news.example.com",
				Position:     1,
				IsNegative:   true,
				Relevant:     true,
				NegativeHits: []string{"penalty:snippet", "fine:title"},
				QueryHits:    []string{"Q1", "Q4"},
				RiskType:     model.RiskAuthority,
				Authority:    "CONSOB",
			},
			{
				Title:        "Acme opens plant",
				Link:         "https://news.example.com/b",
				Source:       "news.example.com",
				Position:     2,
				Relevant:     true,
				NegativeHits: []string{},
				QueryHits:    []string{"Q2"},
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", JSON},
		{"YAML", YAML},
		{"yml", YAML},
		{" csv ", CSV},
		{"xlsx", XLSX},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), JSON))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Acme SpA", got["query"])
	assert.EqualValues(t, 1, got["adverseCount"])
	assert.EqualValues(t, 2, got["totalAnalyzed"])
	assert.Equal(t, "all", got["policy"])

	results := got["results"].([]any)
	first := results[0].(map[string]any)
	assert.Equal(t, true, first["isNegative"])
	assert.Equal(t, "authority", first["riskType"])
	second := results[1].(map[string]any)
	assert.NotContains(t, second, "riskType")
	assert.Equal(t, []any{}, second["negativeHits"])
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), YAML))

	var got struct {
		Query   string `yaml:"query"`
		Results []struct {
			Link      string   `yaml:"link"`
			QueryHits []string `yaml:"queryHits"`
		} `yaml:"results"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Acme SpA", got.Query)
	require.Len(t, got.Results, 2)
	assert.Equal(t, []string{"Q1", "Q4"}, got.Results[0].QueryHits)
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), CSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"position", "title", "snippet", "link", "source", "relevant",
		"is_negative", "negative_hits", "query_hits", "risk_type", "authority",
	}, records[0])
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "true", records[1][6])
	assert.Equal(t, "penalty:snippet|fine:title", records[1][7])
	assert.Equal(t, "Q1|Q4", records[1][8])
	assert.Equal(t, "CONSOB", records[1][10])
	assert.Equal(t, "false", records[2][6])
	assert.Equal(t, "", records[2][7])
}

func TestWrite_CSVEmptyReportHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &model.ScreeningReport{Query: "x"}, CSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "position", records[0][0])
}

func TestWrite_XLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), XLSX))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)

	results, ok := f.Sheet["Results"]
	require.True(t, ok)
	require.Len(t, results.Rows, 3)
	assert.Equal(t, "Title", results.Rows[0].Cells[1].String())
	assert.Equal(t, "Consob fines Acme SpA", results.Rows[1].Cells[1].String())
	assert.Equal(t, "penalty:snippet|fine:title", results.Rows[1].Cells[7].String())

	summary, ok := f.Sheet["Summary"]
	require.True(t, ok)
	assert.Equal(t, "Query", summary.Rows[1].Cells[0].String())
	assert.Equal(t, "Acme SpA", summary.Rows[1].Cells[1].String())
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, sampleReport(), Format("pdf"))
	require.Error(t, err)
}
