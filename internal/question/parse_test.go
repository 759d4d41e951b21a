package question

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractOptions(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		stem    string
		options []string
		ok      bool
	}{
		{
			name:    "newline separated",
			prompt:  "Which is a gas?\na. Oxygen\nb. Iron\nc. Gold",
			stem:    "Which is a gas?",
			options: []string{"a. Oxygen", "b. Iron", "c. Gold"},
			ok:      true,
		},
		{
			name:    "inline uppercase",
			prompt:  "Pick one: A. Red B. Blue",
			stem:    "Pick one:",
			options: []string{"A. Red", "B. Blue"},
			ok:      true,
		},
		{
			name:   "single option is plain text",
			prompt: "Explain the following:\na. photosynthesis",
			stem:   "Explain the following:\na. photosynthesis",
		},
		{
			name:   "no options",
			prompt: "What is osmosis?",
			stem:   "What is osmosis?",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stem, opts, ok := ExtractOptions(tc.prompt)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.stem, stem)
			assert.Equal(t, tc.options, opts)
		})
	}
}

func TestSameOptionLetter(t *testing.T) {
	tests := []struct {
		answer, reference string
		want              bool
	}{
		{"a. Oxygen", "a) Oxygen gas", true},
		{"B. Iron", "b", true},
		{"c. Gold", "a. Oxygen", false},
		{"", "a", false},
		{"xenon", "a", false},
	}
	for _, tc := range tests {
		if got := SameOptionLetter(tc.answer, tc.reference); got != tc.want {
			t.Errorf("SameOptionLetter(%q, %q) = %v, want %v", tc.answer, tc.reference, got, tc.want)
		}
	}
}

func TestInferConcepts(t *testing.T) {
	tests := []struct {
		prompt string
		a, b   string
		ok     bool
	}{
		{"Differentiate between Mitosis and Meiosis", "Mitosis", "Meiosis", true},
		{"distinguish between acids and bases?", "acids", "bases", true},
		{"Compare xylem with phloem", "", "", false},
	}
	for _, tc := range tests {
		a, b, ok := InferConcepts(tc.prompt)
		if a != tc.a || b != tc.b || ok != tc.ok {
			t.Errorf("InferConcepts(%q) = (%q, %q, %v), want (%q, %q, %v)", tc.prompt, a, b, ok, tc.a, tc.b, tc.ok)
		}
	}
}
