package question

import (
	"regexp"
	"strings"
)

// alternativeSplitRe separates acceptable forms in a canonical answer such as
// "Mitochondria (or Powerhouse of cell)" or "Xylem or Phloem".
var alternativeSplitRe = regexp.MustCompile(`(?i)\s*\(or\s+|\s+or\s+|\s*\)\s*`)

// Gradable reports whether t has an objective grading rule. Answers to other
// types cannot be auto-checked and IsCorrect reports false for them.
func Gradable(t Type) bool {
	switch t {
	case TypeMCQ, TypeAssertionReason, TypeTrueFalse, TypeFillInBlanks, TypeNameTheFollowing:
		return true
	}
	return false
}

// IsCorrect grades answer against q. It is total: ungradable and unknown
// types, and empty answers, report false.
func IsCorrect(q Question, answer Answer) bool {
	text := answer.Text
	if text == "" {
		return false
	}

	switch q.Type {
	case TypeMCQ:
		return text == q.CorrectAnswer

	case TypeAssertionReason:
		return sameLeadingRune(text, q.CorrectAnswer)

	case TypeTrueFalse:
		want := isTrueLiteral(q.CorrectAnswer)
		return (text == "True" && want) || (text == "False" && !want)

	case TypeFillInBlanks, TypeNameTheFollowing:
		return matchesAlternative(text, q.CorrectAnswer)

	case TypeMatchTheFollowing, TypeGiveReason, TypeDifferentiate, TypeCaseStudy,
		TypeNumericals, TypeReferenceToContext, TypeMakeSentences, TypeShortAnswer,
		TypeLongAnswer, TypeTextbookQA, TypeHOTS, TypeTricky:
		return false

	default:
		return false
	}
}

func isTrueLiteral(s string) bool {
	return s == "True" || s == "true"
}

func sameLeadingRune(a, b string) bool {
	ra := []rune(strings.TrimSpace(a))
	rb := []rune(strings.TrimSpace(b))
	if len(ra) == 0 || len(rb) == 0 {
		return false
	}
	return strings.EqualFold(string(ra[0]), string(rb[0]))
}

// Alternatives splits a canonical answer into its acceptable forms, lowercased
// and trimmed.
func Alternatives(canonical string) []string {
	parts := alternativeSplitRe.Split(strings.ToLower(strings.TrimSpace(canonical)), -1)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// matchesAlternative accepts the answer when it equals, contains, or is
// contained in any acceptable form.
func matchesAlternative(answer, canonical string) bool {
	user := strings.ToLower(strings.TrimSpace(answer))
	if user == "" {
		return false
	}
	for _, alt := range Alternatives(canonical) {
		if user == alt || strings.Contains(user, alt) || strings.Contains(alt, user) {
			return true
		}
	}
	return false
}
