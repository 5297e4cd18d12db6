// Package chatbot answers deal-desk FAQ queries by literal keyword
// matching. There is no language model behind it: queries are lowercased,
// tokenized, and scored against each entry's keyword list.
package chatbot

import (
	"sort"
	"strings"
)

// Entry is one FAQ item in the corpus.
type Entry struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Keywords []string `json:"keywords"`
	Category string   `json:"category"`
}

// Response is the matcher output for one query.
type Response struct {
	Answer      string   `json:"answer"`
	Matched     *Entry   `json:"matched,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Fallback    bool     `json:"fallback"`
}

// FallbackAnswer is returned when no entry scores against the query.
const FallbackAnswer = "I couldn't find an answer for that. Try asking about deal submission, approval levels, discounts, incentives, or contract terms."

// wholeTokenWeight ranks exact-token hits above substring hits so "term"
// in the query prefers the contract-term entry over "terms and conditions".
const (
	wholeTokenWeight = 3
	substringWeight  = 1
)

// Matcher scores queries against a fixed corpus.
type Matcher struct {
	entries []Entry
}

// NewMatcher creates a Matcher over the given corpus. A nil corpus uses
// the built-in deal-desk FAQ.
func NewMatcher(entries []Entry) *Matcher {
	if entries == nil {
		entries = DefaultCorpus()
	}
	return &Matcher{entries: entries}
}

// Entries returns the corpus.
func (m *Matcher) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Match returns the best-scoring entry for the query, along with up to
// three runner-up questions as suggestions. Ties break toward the earlier
// corpus entry so answers stay deterministic.
func (m *Matcher) Match(query string) Response {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return Response{Answer: FallbackAnswer, Fallback: true}
	}
	tokens := tokenize(normalized)

	type scored struct {
		idx   int
		score int
	}
	var candidates []scored
	for i, e := range m.entries {
		if s := scoreEntry(e, normalized, tokens); s > 0 {
			candidates = append(candidates, scored{idx: i, score: s})
		}
	}
	if len(candidates) == 0 {
		return Response{Answer: FallbackAnswer, Fallback: true}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	best := m.entries[candidates[0].idx]
	resp := Response{Answer: best.Answer, Matched: &best}
	for _, c := range candidates[1:] {
		if len(resp.Suggestions) == 3 {
			break
		}
		resp.Suggestions = append(resp.Suggestions, m.entries[c.idx].Question)
	}
	return resp
}

// scoreEntry counts keyword hits: whole-token matches weigh more than
// plain substring containment.
func scoreEntry(e Entry, query string, tokens map[string]bool) int {
	score := 0
	for _, kw := range e.Keywords {
		kw = strings.ToLower(kw)
		switch {
		case tokens[kw]:
			score += wholeTokenWeight
		case strings.Contains(query, kw):
			score += substringWeight
		}
	}
	return score
}

func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		tokens[tok] = true
	}
	return tokens
}
