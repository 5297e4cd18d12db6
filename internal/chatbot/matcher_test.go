package chatbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	t.Parallel()
	m := NewMatcher(nil)

	tests := []struct {
		name    string
		query   string
		wantID  string
	}{
		{"submission", "how do I submit a new deal?", "submit-deal"},
		{"discount", "what's the maximum discount I can give?", "discount-limits"},
		{"incentives", "where do incentive costs land?", "incentives"},
		{"legal", "does legal need to review this?", "legal-review"},
		{"case insensitive", "DISCOUNT LIMITS?", "discount-limits"},
		{"tiers", "explain deal tiers", "deal-tiers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp := m.Match(tt.query)
			require.NotNil(t, resp.Matched, "query %q fell back", tt.query)
			assert.Equal(t, tt.wantID, resp.Matched.ID)
			assert.False(t, resp.Fallback)
			assert.Equal(t, resp.Matched.Answer, resp.Answer)
		})
	}
}

func TestMatchFallback(t *testing.T) {
	t.Parallel()
	m := NewMatcher(nil)

	for _, query := range []string{"", "   ", "qwertyuiop zxcvbnm"} {
		resp := m.Match(query)
		assert.True(t, resp.Fallback)
		assert.Equal(t, FallbackAnswer, resp.Answer)
		assert.Nil(t, resp.Matched)
	}
}

func TestMatchWholeTokenBeatsSubstring(t *testing.T) {
	t.Parallel()
	m := NewMatcher([]Entry{
		{ID: "a", Question: "A?", Answer: "a", Keywords: []string{"terminal"}},
		{ID: "b", Question: "B?", Answer: "b", Keywords: []string{"term"}},
	})

	// "term" appears as a whole token; "terminal" only as nothing.
	resp := m.Match("what is the term here")
	require.NotNil(t, resp.Matched)
	assert.Equal(t, "b", resp.Matched.ID)
}

func TestMatchDeterministicTieBreak(t *testing.T) {
	t.Parallel()
	m := NewMatcher([]Entry{
		{ID: "first", Question: "F?", Answer: "f", Keywords: []string{"shared"}},
		{ID: "second", Question: "S?", Answer: "s", Keywords: []string{"shared"}},
	})

	for range 10 {
		resp := m.Match("shared keyword question")
		require.NotNil(t, resp.Matched)
		assert.Equal(t, "first", resp.Matched.ID)
		assert.Equal(t, []string{"S?"}, resp.Suggestions)
	}
}

func TestMatchSuggestionsCapped(t *testing.T) {
	t.Parallel()
	m := NewMatcher([]Entry{
		{ID: "1", Question: "Q1?", Answer: "a", Keywords: []string{"deal"}},
		{ID: "2", Question: "Q2?", Answer: "a", Keywords: []string{"deal"}},
		{ID: "3", Question: "Q3?", Answer: "a", Keywords: []string{"deal"}},
		{ID: "4", Question: "Q4?", Answer: "a", Keywords: []string{"deal"}},
		{ID: "5", Question: "Q5?", Answer: "a", Keywords: []string{"deal"}},
	})

	resp := m.Match("deal")
	assert.Len(t, resp.Suggestions, 3)
}

func TestDefaultCorpus(t *testing.T) {
	t.Parallel()

	corpus := DefaultCorpus()
	require.NotEmpty(t, corpus)

	seen := map[string]bool{}
	for _, e := range corpus {
		assert.NotEmpty(t, e.ID)
		assert.NotEmpty(t, e.Answer)
		assert.NotEmpty(t, e.Keywords)
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}
