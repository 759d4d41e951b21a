package question

// Type identifies a question format. Values match the content file names
// (e.g. "mcq" is served from mcq.json).
type Type string

const (
	TypeMCQ                Type = "mcq"
	TypeAssertionReason    Type = "assertion_reason"
	TypeTrueFalse          Type = "true_false"
	TypeFillInBlanks       Type = "fill_in_blanks"
	TypeNameTheFollowing   Type = "name_the_following"
	TypeMatchTheFollowing  Type = "match_the_following"
	TypeGiveReason         Type = "give_reason"
	TypeDifferentiate      Type = "differentiate_between"
	TypeCaseStudy          Type = "case_study"
	TypeNumericals         Type = "numericals"
	TypeReferenceToContext Type = "reference_to_context"
	TypeMakeSentences      Type = "make_sentences"
	TypeShortAnswer        Type = "short_answer"
	TypeLongAnswer         Type = "long_answer"
	TypeTextbookQA         Type = "textbook_qa"
	TypeHOTS               Type = "hots"
	TypeTricky             Type = "tricky_questions"
)

// AllTypes lists every known type in export order.
var AllTypes = []Type{
	TypeTextbookQA,
	TypeMCQ,
	TypeFillInBlanks,
	TypeTrueFalse,
	TypeMatchTheFollowing,
	TypeShortAnswer,
	TypeLongAnswer,
	TypeAssertionReason,
	TypeGiveReason,
	TypeDifferentiate,
	TypeNumericals,
	TypeHOTS,
	TypeCaseStudy,
	TypeNameTheFollowing,
	TypeTricky,
	TypeReferenceToContext,
	TypeMakeSentences,
}

var typeLabels = map[Type]string{
	TypeTextbookQA:         "Textbook Q&A",
	TypeMCQ:                "Multiple Choice",
	TypeFillInBlanks:       "Fill in the Blanks",
	TypeTrueFalse:          "True or False",
	TypeMatchTheFollowing:  "Match the Following",
	TypeShortAnswer:        "Short Answer",
	TypeLongAnswer:         "Long Answer",
	TypeAssertionReason:    "Assertion & Reason",
	TypeGiveReason:         "Give Reason",
	TypeDifferentiate:      "Differentiate Between",
	TypeNumericals:         "Numericals",
	TypeHOTS:               "HOTS",
	TypeCaseStudy:          "Case Study",
	TypeNameTheFollowing:   "Name the Following",
	TypeTricky:             "Tricky Questions",
	TypeReferenceToContext: "Reference to Context",
	TypeMakeSentences:      "Make Sentences",
}

// ParseType maps a content key to a Type. Unknown keys are returned as-is;
// check Known before relying on type-specific behavior.
func ParseType(s string) Type {
	if s == "tricky" {
		return TypeTricky
	}
	return Type(s)
}

// Known reports whether t is one of the defined types.
func (t Type) Known() bool {
	_, ok := typeLabels[t]
	return ok
}

// Label returns a human-readable name, falling back to the raw key.
func (t Type) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

func (t Type) String() string { return string(t) }

// Question is the canonical form of a content record after normalization.
type Question struct {
	ID            string
	Type          Type
	Prompt        string
	CorrectAnswer string
	Explanation   string
	SourceSection string

	// Payload holds the type-specific fields. It is nil for types that carry
	// nothing beyond the common fields (true_false, fill_in_blanks).
	Payload Payload
}

// Options returns the selectable options for choice-style questions, or nil.
func (q Question) Options() []string {
	if p, ok := q.Payload.(ChoicePayload); ok {
		return p.Options
	}
	return nil
}

// SubQuestions returns the case-study parts, or nil.
func (q Question) SubQuestions() []SubQuestion {
	if p, ok := q.Payload.(CaseStudyPayload); ok {
		return p.SubQuestions
	}
	return nil
}

// Payload is implemented by the per-type payload variants only.
type Payload interface {
	payload()
}

// ChoicePayload backs mcq and assertion_reason questions.
type ChoicePayload struct {
	Options []string
}

// MatchPair is one row of a matching question in source order.
type MatchPair struct {
	Left  string
	Right string
}

// MatchPayload backs match_the_following. Right is shuffled relative to Pairs.
type MatchPayload struct {
	Left  []string
	Right []string
	Pairs []MatchPair
}

// ReasonPayload backs give_reason.
type ReasonPayload struct {
	KeyPoints []string
}

// Difference is one comparison row of a differentiate question.
type Difference struct {
	Aspect string
	PointA string
	PointB string
}

// DifferencePayload backs differentiate_between.
type DifferencePayload struct {
	ConceptA    string
	ConceptB    string
	Differences []Difference
}

// SubQuestion is one part of a case study.
type SubQuestion struct {
	Question string
	Answer   string
}

// CaseStudyPayload backs case_study.
type CaseStudyPayload struct {
	SubQuestions []SubQuestion
}

// NumericalPayload backs numericals.
type NumericalPayload struct {
	GivenData     []string
	Formula       string
	SolutionSteps []string
}

// ExtractPayload backs reference_to_context.
type ExtractPayload struct {
	Extract       string
	Justification string
}

// SentencePayload backs make_sentences.
type SentencePayload struct {
	Word           string
	Meaning        string
	SampleSentence string
}

// FreeTextPayload backs the default group (short/long answer, textbook Q&A,
// HOTS, tricky, name the following).
type FreeTextPayload struct {
	KeyPoints     []string
	Keywords      []string
	Context       string
	WhyTricky     string
	Justification string
}

func (ChoicePayload) payload()     {}
func (MatchPayload) payload()      {}
func (ReasonPayload) payload()     {}
func (DifferencePayload) payload() {}
func (CaseStudyPayload) payload()  {}
func (NumericalPayload) payload()  {}
func (ExtractPayload) payload()    {}
func (SentencePayload) payload()   {}
func (FreeTextPayload) payload()   {}

// Answer is a candidate answer: free text, or per-part text for multi-part
// questions keyed by sub-question index.
type Answer struct {
	Text  string
	Parts map[int]string
}

// TextAnswer wraps a plain string answer.
func TextAnswer(s string) Answer {
	return Answer{Text: s}
}

// IsEmpty reports whether nothing has been entered. A multi-part answer is
// non-empty as soon as any part is non-empty.
func (a Answer) IsEmpty() bool {
	if a.Text != "" {
		return false
	}
	for _, p := range a.Parts {
		if p != "" {
			return false
		}
	}
	return true
}

// WithPart returns a copy of a with part i set to s.
func (a Answer) WithPart(i int, s string) Answer {
	parts := make(map[int]string, len(a.Parts)+1)
	for k, v := range a.Parts {
		parts[k] = v
	}
	parts[i] = s
	return Answer{Text: a.Text, Parts: parts}
}
