// Package entity decides whether a search result plausibly concerns the
// screened person or organization.
package entity

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// legalTokens are corporate-form suffixes. A query containing one is always
// treated as an organization name.
var legalTokens = toSet(
	"s.p.a", "spa", "srl", "s.r.l", "s.a", "sa", "ltd", "plc", "inc", "llc", "gmbh",
	"ag", "bv", "b.v", "nv", "n.v", "kg", "pte", "pte.", "co", "corp", "corporation", "company",
	"limited", "srls", "snc", "sas",
)

// stopTokens are English and Italian articles and conjunctions.
var stopTokens = toSet("the", "and", "&", "of", "for", "a", "an", "de", "di", "del", "della", "dei")

// minCoreLen is the shortest token that counts as organization evidence.
const minCoreLen = 3

// IsRelevant reports whether text plausibly concerns the entity named by
// query. Queries with a legal-form token use the organization heuristic;
// multi-token queries whose tokens are all at least two characters use the
// person heuristic; everything else falls back to the organization heuristic.
func IsRelevant(query, text string) bool {
	tokens := Tokens(query)
	if hasLegalToken(query, tokens) {
		return OrganizationMatch(query, text)
	}
	if len(tokens) >= 2 && allAtLeast(tokens, 2) {
		return PersonMatch(query, text)
	}
	return OrganizationMatch(query, text)
}

// PersonMatch requires both the first and the last query token to appear
// somewhere in the normalized text, in any order and not necessarily adjacent.
func PersonMatch(query, text string) bool {
	q := Tokens(query)
	if len(q) < 2 {
		return false
	}
	t := Normalize(text)
	return strings.Contains(t, q[0]) && strings.Contains(t, q[len(q)-1])
}

// OrganizationMatch counts how many distinct core tokens of query occur in
// text. Two or more core tokens require two hits; a single core token
// requires one.
func OrganizationMatch(query, text string) bool {
	core := CoreTokens(query)
	if len(core) == 0 {
		return false
	}
	t := Normalize(text)
	hits := 0
	for _, tok := range core {
		if strings.Contains(t, tok) {
			hits++
		}
	}
	if len(core) >= 2 {
		return hits >= 2
	}
	return hits >= 1
}

// CoreTokens returns the distinct query tokens that carry identity: legal
// suffixes, stop words and tokens shorter than three characters are dropped.
// If nothing survives, every token of at least three characters is used.
func CoreTokens(query string) []string {
	q := Tokens(query)
	core := distinct(q, func(tok string) bool {
		_, legal := legalTokens[tok]
		_, stop := stopTokens[tok]
		return !legal && !stop && len([]rune(tok)) >= minCoreLen
	})
	if len(core) == 0 {
		core = distinct(q, func(tok string) bool { return len([]rune(tok)) >= minCoreLen })
	}
	return core
}

// Tokens splits the normalized form of s on whitespace.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// Normalize lowercases s, replaces every rune that is not a letter, digit,
// mark, underscore or whitespace with a space, and collapses whitespace.
func Normalize(s string) string {
	s = cases.Lower(language.Und).String(norm.NFC.String(s))
	mapped := strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// hasLegalToken checks the normalized tokens and the compact form of each
// whitespace-separated word, so "S.p.A." is recognised as "spa".
func hasLegalToken(query string, tokens []string) bool {
	for _, tok := range tokens {
		if _, ok := legalTokens[tok]; ok {
			return true
		}
	}
	lower := cases.Lower(language.Und).String(norm.NFC.String(query))
	for _, word := range strings.Fields(lower) {
		compact := strings.Map(func(r rune) rune {
			if isWordRune(r) {
				return r
			}
			return -1
		}, word)
		if _, ok := legalTokens[compact]; ok {
			return true
		}
		if _, ok := legalTokens[strings.TrimRight(word, ",;:")]; ok {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func allAtLeast(tokens []string, n int) bool {
	for _, tok := range tokens {
		if len([]rune(tok)) < n {
			return false
		}
	}
	return true
}

func distinct(tokens []string, keep func(string) bool) []string {
	seen := make(map[string]struct{}, len(tokens))
	var out []string
	for _, tok := range tokens {
		if !keep(tok) {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

func toSet(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}
