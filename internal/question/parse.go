package question

import (
	"regexp"
	"strings"
)

var (
	embeddedOptionRe = regexp.MustCompile(`(?i)(?:^|\s)([a-d])\.\s+\S`)
	optionLetterRe   = regexp.MustCompile(`(?i)^\s*([a-d])`)
	differentiateRe  = regexp.MustCompile(`(?i)^\s*(?:differentiate|distinguish)\s+between\s+(.+?)\s+and\s+(.+?)\s*[.?:]?\s*$`)
)

// ExtractOptions detects multiple-choice options written inline in a prompt
// ("Which ...?\na. one\nb. two"). It returns the stem and the options when at
// least two are found; otherwise ok is false and the prompt is plain text.
func ExtractOptions(prompt string) (stem string, options []string, ok bool) {
	locs := embeddedOptionRe.FindAllStringSubmatchIndex(prompt, -1)
	if len(locs) < 2 {
		return prompt, nil, false
	}
	starts := make([]int, len(locs))
	for i, loc := range locs {
		starts[i] = loc[2]
	}
	for i, start := range starts {
		end := len(prompt)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		if opt := strings.TrimSpace(prompt[start:end]); opt != "" {
			options = append(options, opt)
		}
	}
	if len(options) < 2 {
		return prompt, nil, false
	}
	return strings.TrimSpace(prompt[:starts[0]]), options, true
}

// SameOptionLetter reports whether both strings lead with the same option
// letter (a-d), ignoring case. Used for embedded options in free-text
// questions where the reference answer may be worded differently.
func SameOptionLetter(answer, reference string) bool {
	a := optionLetterRe.FindStringSubmatch(answer)
	b := optionLetterRe.FindStringSubmatch(reference)
	if a == nil || b == nil {
		return false
	}
	return strings.EqualFold(a[1], b[1])
}

// InferConcepts pulls the two concept names out of a prompt of the form
// "Differentiate between X and Y".
func InferConcepts(prompt string) (a, b string, ok bool) {
	m := differentiateRe.FindStringSubmatch(prompt)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}
