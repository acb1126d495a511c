package adverse

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/trustcheck/internal/model"
	"github.com/sells-group/trustcheck/internal/patterns"
)

type eventCategory struct {
	kind     model.RiskType
	patterns []*regexp.Regexp
}

func (c *Classifier) compileEvents(tables *patterns.EventTables) error {
	for _, cat := range tables.Categories {
		switch cat.Type {
		case model.RiskAuthority, model.RiskJudicial, model.RiskClassAction:
		default:
			return eris.Errorf("unknown event type %q", cat.Type)
		}
		ec := eventCategory{kind: cat.Type}
		for _, p := range cat.Patterns {
			rx, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				return eris.Wrapf(err, "event pattern %q", p)
			}
			ec.patterns = append(ec.patterns, rx)
		}
		c.events = append(c.events, ec)
	}

	auth, err := compileTerms(tables.Authorities)
	if err != nil {
		return eris.Wrap(err, "authority keyword")
	}
	c.authorities = auth
	return nil
}

// TypeEvent classifies what kind of risk event r describes and which
// authority, if any, it names. The first matching category in table order
// wins. An empty RiskType means no category matched.
func (c *Classifier) TypeEvent(r model.RawResult) (model.RiskType, string) {
	blob := strings.Join(strings.Fields(strings.ToLower(
		r.Title+" "+r.Snippet+" "+r.DisplayLink+" "+r.Link,
	)), " ")

	var kind model.RiskType
	for _, cat := range c.events {
		if matchAny(cat.patterns, blob) {
			kind = cat.kind
			break
		}
	}
	if kind == "" {
		return "", ""
	}

	for _, a := range c.authorities {
		if a.rx.MatchString(blob) {
			return kind, strings.ToUpper(a.label)
		}
	}
	return kind, ""
}

func matchAny(rxs []*regexp.Regexp, s string) bool {
	for _, rx := range rxs {
		if rx.MatchString(s) {
			return true
		}
	}
	return false
}
