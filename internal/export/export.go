// Package export writes screening reports in the formats the CLI offers.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/trustcheck/internal/model"
)

// Format names an output encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// Formats lists the supported formats.
var Formats = []Format{JSON, YAML, CSV, XLSX}

// ParseFormat accepts a format name, case-insensitively. "yml" is YAML.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case JSON, YAML, CSV, XLSX:
		return f, nil
	case "yml":
		return YAML, nil
	}
	return "", eris.Errorf("export: unknown format %q", s)
}

// listSep joins list fields in flat formats.
const listSep = "|"

// Write encodes rep to w in format f.
func Write(w io.Writer, rep *model.ScreeningReport, f Format) error {
	switch f {
	case JSON:
		return writeJSON(w, rep)
	case YAML:
		return writeYAML(w, rep)
	case CSV:
		return writeCSV(w, rep)
	case XLSX:
		return writeXLSX(w, rep)
	}
	return eris.Errorf("export: unknown format %q", f)
}

func writeJSON(w io.Writer, rep *model.ScreeningReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(rep), "export: encode json")
}

func writeYAML(w io.Writer, rep *model.ScreeningReport) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return eris.Wrap(err, "export: encode yaml")
	}
	return eris.Wrap(enc.Close(), "export: close yaml encoder")
}

// row is the flat per-result record used by CSV and XLSX.
type row struct {
	Position     int    `csv:"position"`
	Title        string `csv:"title"`
	Snippet      string `csv:"snippet"`
	Link         string `csv:"link"`
	Source       string `csv:"source"`
	Relevant     bool   `csv:"relevant"`
	IsNegative   bool   `csv:"is_negative"`
	NegativeHits string `csv:"negative_hits"`
	QueryHits    string `csv:"query_hits"`
	RiskType     string `csv:"risk_type"`
	Authority    string `csv:"authority"`
}

func rows(rep *model.ScreeningReport) []row {
	out := make([]row, len(rep.Results))
	for i, r := range rep.Results {
		out[i] = row{
			Position:     r.Position,
			Title:        r.Title,
			Snippet:      r.Snippet,
			Link:         r.Link,
			Source:       r.Source,
			Relevant:     r.Relevant,
			IsNegative:   r.IsNegative,
			NegativeHits: strings.Join(r.NegativeHits, listSep),
			QueryHits:    strings.Join(r.QueryHits, listSep),
			RiskType:     string(r.RiskType),
			Authority:    r.Authority,
		}
	}
	return out
}

func writeCSV(w io.Writer, rep *model.ScreeningReport) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if err := enc.EncodeHeader(row{}); err != nil {
		return eris.Wrap(err, "export: csv header")
	}
	for _, r := range rows(rep) {
		if err := enc.Encode(r); err != nil {
			return eris.Wrap(err, "export: csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

var resultHeader = []string{
	"Position", "Title", "Snippet", "Link", "Source", "Relevant",
	"Negative", "Negative Hits", "Query Hits", "Risk Type", "Authority",
}

func writeXLSX(w io.Writer, rep *model.ScreeningReport) error {
	f := xlsx.NewFile()

	results, err := f.AddSheet("Results")
	if err != nil {
		return eris.Wrap(err, "export: add results sheet")
	}
	addStrings(results.AddRow(), resultHeader...)
	for _, r := range rows(rep) {
		xr := results.AddRow()
		xr.AddCell().SetInt(r.Position)
		addStrings(xr, r.Title, r.Snippet, r.Link, r.Source)
		xr.AddCell().SetBool(r.Relevant)
		xr.AddCell().SetBool(r.IsNegative)
		addStrings(xr, r.NegativeHits, r.QueryHits, r.RiskType, r.Authority)
	}

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}
	addPair(summary, "Screening ID", rep.ID)
	addPair(summary, "Query", rep.Query)
	addPair(summary, "Language", string(rep.Language))
	addPair(summary, "Policy", string(rep.Policy))
	addIntPair(summary, "Total Analyzed", rep.TotalAnalyzed)
	addIntPair(summary, "Adverse Count", rep.AdverseCount)
	addIntPair(summary, "Provider Calls", rep.ProviderCalls)
	sr := summary.AddRow()
	sr.AddCell().SetString("Estimated Cost (USD)")
	sr.AddCell().SetFloat(rep.EstimatedCostUSD)

	return eris.Wrap(f.Write(w), "export: write xlsx")
}

func addStrings(r *xlsx.Row, values ...string) {
	for _, v := range values {
		r.AddCell().SetString(v)
	}
}

func addPair(s *xlsx.Sheet, label, value string) {
	addStrings(s.AddRow(), label, value)
}

func addIntPair(s *xlsx.Sheet, label string, value int) {
	r := s.AddRow()
	r.AddCell().SetString(label)
	r.AddCell().SetInt(value)
}
