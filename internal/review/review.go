// Package review turns questions and answers into display text: the choices
// a question offers, the verdict on an answer, and the reference solution
// shown after reveal. Both the terminal UI and the line-mode quiz use it.
package review

import (
	"fmt"
	"strings"

	"github.com/aniquiz/aniquiz/internal/question"
)

// Choices returns what the learner picks from. Options come from the
// choice payload, the fixed True/False pair, or options written inline in
// a free-text prompt; embedded reports the last case. Questions without
// options return the prompt and nil.
func Choices(q question.Question) (stem string, options []string, embedded bool) {
	switch q.Type {
	case question.TypeTrueFalse:
		return q.Prompt, []string{"True", "False"}, false
	case question.TypeMCQ, question.TypeAssertionReason:
		return q.Prompt, q.Options(), false
	}
	if _, ok := q.Payload.(question.FreeTextPayload); ok {
		if stem, opts, ok := question.ExtractOptions(q.Prompt); ok {
			return stem, opts, true
		}
	}
	return q.Prompt, nil, false
}

// Parts lists the labels of a multi-part question: the left column of a
// matching question or the sub-questions of a case study.
func Parts(q question.Question) []string {
	switch p := q.Payload.(type) {
	case question.MatchPayload:
		return p.Left
	case question.CaseStudyPayload:
		out := make([]string, len(p.SubQuestions))
		for i, sq := range p.SubQuestions {
			out[i] = sq.Question
		}
		return out
	}
	return nil
}

// Kind classifies an answer after reveal.
type Kind int

const (
	Unanswered Kind = iota
	Correct
	Incorrect
	// Ungraded answers are compared with the model answer by the learner.
	Ungraded
)

// Verdict is the outcome shown next to a revealed answer.
type Verdict struct {
	Kind  Kind
	Label string

	// Counted is false for verdicts that do not contribute to the score,
	// such as inline options inside a free-text question.
	Counted bool
}

// Check judges answer to q for display.
func Check(q question.Question, a question.Answer) Verdict {
	if a.IsEmpty() {
		return Verdict{Kind: Unanswered, Label: "🙈 Answer this question first!"}
	}
	if question.Gradable(q.Type) {
		if question.IsCorrect(q, a) {
			return Verdict{Kind: Correct, Label: "✓ Correct!", Counted: true}
		}
		return Verdict{Kind: Incorrect, Label: "✗ Incorrect", Counted: true}
	}
	if _, _, embedded := Choices(q); embedded {
		if question.SameOptionLetter(a.Text, q.CorrectAnswer) {
			return Verdict{Kind: Correct, Label: "✓ Correct!"}
		}
		return Verdict{Kind: Incorrect, Label: "✗ Incorrect"}
	}
	return Verdict{Kind: Ungraded, Label: "Compare your answer with the model answer"}
}

// AnswerText renders the learner's answer on one line. Part answers are
// labelled (a), (b), ... in part order.
func AnswerText(q question.Question, a question.Answer) string {
	if len(a.Parts) == 0 {
		return a.Text
	}
	n := len(Parts(q))
	for i := range a.Parts {
		if i+1 > n {
			n = i + 1
		}
	}
	var parts []string
	for i := 0; i < n; i++ {
		if v := strings.TrimSpace(a.Parts[i]); v != "" {
			parts = append(parts, fmt.Sprintf("(%c) %s", 'a'+i, v))
		}
	}
	if a.Text != "" {
		parts = append([]string{a.Text}, parts...)
	}
	return strings.Join(parts, "; ")
}

// Reference is the solution shown after reveal, one display line per
// element. Headings end in a colon; list items are indented by two spaces.
func Reference(q question.Question) []string {
	var out []string
	add := func(format string, args ...any) { out = append(out, fmt.Sprintf(format, args...)) }

	switch p := q.Payload.(type) {
	case question.MatchPayload:
		add("Correct matches:")
		for i, pair := range p.Pairs {
			add("  %d. %s → %s", i+1, pair.Left, pair.Right)
		}

	case question.DifferencePayload:
		a, b := p.ConceptA, p.ConceptB
		if a == "" {
			a = "Concept A"
		}
		if b == "" {
			b = "Concept B"
		}
		add("Differences (%s vs %s):", a, b)
		for _, d := range p.Differences {
			add("  %s: %s | %s", d.Aspect, d.PointA, d.PointB)
		}

	case question.NumericalPayload:
		if len(p.SolutionSteps) > 0 {
			add("Solution:")
			for i, s := range p.SolutionSteps {
				add("  %d. %s", i+1, s)
			}
		}
		add("Answer: %s", q.CorrectAnswer)

	case question.CaseStudyPayload:
		add("Answers:")
		for i, sq := range p.SubQuestions {
			add("  (%c) %s", 'a'+i, sq.Answer)
		}

	case question.SentencePayload:
		if p.Meaning != "" {
			add("Meaning of %q: %s", p.Word, p.Meaning)
		}
		if q.CorrectAnswer != "" {
			add("Example: %s", q.CorrectAnswer)
		}

	case question.ReasonPayload:
		add("Reason: %s", q.CorrectAnswer)
		keyPoints(add, p.KeyPoints)

	case question.ExtractPayload:
		add("Answer: %s", q.CorrectAnswer)
		if p.Justification != "" {
			add("Justification: %s", p.Justification)
		}

	case question.FreeTextPayload:
		if _, _, embedded := Choices(q); embedded {
			add("Correct answer: %s", q.CorrectAnswer)
		} else {
			add("Model answer: %s", q.CorrectAnswer)
		}
		keyPoints(add, p.KeyPoints)
		if p.WhyTricky != "" {
			add("Note: %s", p.WhyTricky)
		}
		if p.Justification != "" && q.Explanation == "" {
			add("Justification: %s", p.Justification)
		}

	default:
		add("Correct answer: %s", q.CorrectAnswer)
	}

	switch {
	case q.Explanation != "":
		add("Explanation: %s", q.Explanation)
	case q.SourceSection != "":
		add("Source: %q", q.SourceSection)
	}
	return out
}

func keyPoints(add func(string, ...any), points []string) {
	if len(points) == 0 {
		return
	}
	add("Key points:")
	for _, k := range points {
		add("  • %s", k)
	}
}
