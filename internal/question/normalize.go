package question

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Raw is an undecoded content record. Field names vary across content
// revisions, so records stay as generic JSON objects until normalized.
type Raw map[string]any

// Normalizer converts raw records into canonical questions. The zero value is
// usable; it shuffles with the global source and generates UUID identifiers.
type Normalizer struct {
	// Rand shuffles the right-hand column of matching questions.
	Rand *rand.Rand

	// NewID generates identifiers for records without one.
	NewID func() string
}

// NewNormalizer returns a Normalizer that shuffles with rng.
func NewNormalizer(rng *rand.Rand) *Normalizer {
	return &Normalizer{Rand: rng}
}

// NormalizeAll normalizes raws in order. Duplicate identifiers get the first
// "-N" suffix not already taken, so IDs stay unique within the list.
func (n *Normalizer) NormalizeAll(raws []Raw, t Type) []Question {
	out := make([]Question, 0, len(raws))
	seen := make(map[string]int, len(raws))
	for _, raw := range raws {
		q := n.Normalize(raw, t)
		if c := seen[q.ID]; c > 0 {
			base := q.ID
			c++
			cand := fmt.Sprintf("%s-%d", base, c)
			for seen[cand] > 0 {
				c++
				cand = fmt.Sprintf("%s-%d", base, c)
			}
			seen[base] = c
			q.ID = cand
		}
		seen[q.ID]++
		out = append(out, q)
	}
	return out
}

// Normalize maps raw into a Question of type t. Missing fields become empty
// values; it never fails.
func (n *Normalizer) Normalize(raw Raw, t Type) Question {
	q := Question{
		ID:            raw.str("id"),
		Type:          t,
		Prompt:        raw.str("question", "statement"),
		CorrectAnswer: raw.str("correct_answer", "answer"),
		Explanation:   raw.str("explanation"),
		SourceSection: raw.str("source_section"),
	}
	if q.ID == "" {
		q.ID = n.newID()
	}

	switch t {
	case TypeMCQ:
		q.Payload = ChoicePayload{Options: raw.strs("options")}

	case TypeAssertionReason:
		opts := raw.strs("options")
		q.Prompt = fmt.Sprintf("Assertion (A): %s\nReason (R): %s", raw.str("assertion"), raw.str("reason"))
		letter := raw.str("correct_option", "correct_answer", "answer")
		q.CorrectAnswer = ResolveOptionLetter(letter, opts)
		q.Payload = ChoicePayload{Options: opts}

	case TypeTrueFalse:
		q.Prompt = raw.str("statement", "question")
		if truthy(raw.first("correct_answer", "answer")) {
			q.CorrectAnswer = "True"
		} else {
			q.CorrectAnswer = "False"
		}

	case TypeFillInBlanks:
		// common fields only

	case TypeMatchTheFollowing:
		q.Prompt = raw.str("instruction")
		if q.Prompt == "" {
			q.Prompt = "Match the following:"
		}
		q.Payload = n.matchPayload(raw)

	case TypeGiveReason:
		q.Prompt = "Give reason: " + raw.str("statement", "question")
		q.CorrectAnswer = raw.str("reason", "answer", "correct_answer")
		q.Payload = ReasonPayload{KeyPoints: raw.strs("key_points")}

	case TypeDifferentiate:
		p := differencePayload(raw)
		if p.ConceptA == "" && p.ConceptB == "" {
			p.ConceptA, p.ConceptB, _ = InferConcepts(q.Prompt)
		}
		q.Prompt = fmt.Sprintf("Differentiate between %s and %s", p.ConceptA, p.ConceptB)
		q.Payload = p

	case TypeCaseStudy:
		q.Prompt = raw.str("case_text", "question")
		q.Payload = CaseStudyPayload{SubQuestions: subQuestions(raw)}

	case TypeNumericals:
		q.Payload = NumericalPayload{
			GivenData:     raw.strs("given_data"),
			Formula:       raw.str("formula"),
			SolutionSteps: raw.strs("solution_steps"),
		}

	case TypeReferenceToContext:
		q.Payload = ExtractPayload{
			Extract:       raw.str("extract"),
			Justification: raw.str("justification"),
		}

	case TypeMakeSentences:
		p := SentencePayload{
			Word:           raw.str("word"),
			Meaning:        raw.str("meaning"),
			SampleSentence: raw.str("sample_sentence"),
		}
		if q.Prompt == "" && p.Word != "" {
			q.Prompt = "Make a sentence using: " + p.Word
		}
		if q.CorrectAnswer == "" {
			q.CorrectAnswer = p.SampleSentence
		}
		q.Payload = p

	default:
		// short_answer, long_answer, textbook_qa, hots, tricky,
		// name_the_following and unknown types.
		q.Payload = FreeTextPayload{
			KeyPoints:     raw.strs("key_points"),
			Keywords:      raw.strs("keywords"),
			Context:       raw.str("context"),
			WhyTricky:     raw.str("why_tricky"),
			Justification: raw.str("justification"),
		}
	}
	return q
}

func (n *Normalizer) newID() string {
	if n != nil && n.NewID != nil {
		return n.NewID()
	}
	return uuid.NewString()
}

func (n *Normalizer) shuffle(items []string) {
	swap := func(i, j int) { items[i], items[j] = items[j], items[i] }
	if n != nil && n.Rand != nil {
		n.Rand.Shuffle(len(items), swap)
		return
	}
	rand.Shuffle(len(items), swap)
}

func (n *Normalizer) matchPayload(raw Raw) MatchPayload {
	var p MatchPayload
	for _, obj := range raw.objects("pairs") {
		pair := MatchPair{Left: obj.str("left"), Right: obj.str("right")}
		p.Pairs = append(p.Pairs, pair)
		p.Left = append(p.Left, pair.Left)
		p.Right = append(p.Right, pair.Right)
	}
	if len(p.Pairs) == 0 {
		p.Left = raw.strs("left_items")
		p.Right = raw.strs("right_items")
	}
	p.Right = append([]string(nil), p.Right...)
	n.shuffle(p.Right)
	return p
}

func differencePayload(raw Raw) DifferencePayload {
	p := DifferencePayload{
		ConceptA: raw.str("term1", "concept_a"),
		ConceptB: raw.str("term2", "concept_b"),
	}
	for _, row := range raw.objects("differences") {
		p.Differences = append(p.Differences, Difference{
			Aspect: row.str("aspect"),
			PointA: row.str("term1_point", "concept_a_point", "concept_a"),
			PointB: row.str("term2_point", "concept_b_point", "concept_b"),
		})
	}
	return p
}

func subQuestions(raw Raw) []SubQuestion {
	objs := raw.objects("sub_questions")
	if len(objs) == 0 {
		objs = raw.objects("questions")
	}
	var out []SubQuestion
	for _, o := range objs {
		out = append(out, SubQuestion{Question: o.str("question"), Answer: o.str("answer")})
	}
	return out
}

// ResolveOptionLetter maps a bare option letter to the full option text.
// An option matches when it starts with "L." or "L " or simply starts with L,
// compared case-insensitively. Without a match the letter itself is returned.
func ResolveOptionLetter(letter string, options []string) string {
	letter = strings.TrimSpace(letter)
	if letter == "" {
		return ""
	}
	l := strings.ToLower(letter)
	for _, opt := range options {
		o := strings.ToLower(strings.TrimSpace(opt))
		if strings.HasPrefix(o, l+".") || strings.HasPrefix(o, l+" ") {
			return opt
		}
	}
	if len([]rune(l)) == 1 {
		for _, opt := range options {
			o := strings.ToLower(strings.TrimSpace(opt))
			if strings.HasPrefix(o, l) {
				return opt
			}
		}
	}
	return letter
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return strings.EqualFold(strings.TrimSpace(x), "true")
	}
	return false
}

// get looks key up exactly, then ignoring case.
func (r Raw) get(key string) any {
	if v, ok := r[key]; ok {
		return v
	}
	for k, v := range r {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}

// first returns the first non-nil value among keys.
func (r Raw) first(keys ...string) any {
	for _, k := range keys {
		if v := r.get(k); v != nil {
			return v
		}
	}
	return nil
}

// str returns the first non-empty value among keys rendered as a string.
func (r Raw) str(keys ...string) string {
	for _, k := range keys {
		if s := toString(r.get(k)); s != "" {
			return s
		}
	}
	return ""
}

// strs reads a list of scalars. A lone scalar becomes a one-element list.
func (r Raw) strs(key string) []string {
	switch v := r.get(key).(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := toString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return append([]string(nil), v...)
	case nil:
		return nil
	default:
		if s := toString(v); s != "" {
			return []string{s}
		}
		return nil
	}
}

func (r Raw) objects(key string) []Raw {
	list, ok := r.get(key).([]any)
	if !ok {
		return nil
	}
	out := make([]Raw, 0, len(list))
	for _, item := range list {
		switch o := item.(type) {
		case map[string]any:
			out = append(out, Raw(o))
		case Raw:
			out = append(out, o)
		}
	}
	return out
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "True"
		}
		return "False"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case fmt.Stringer:
		return x.String()
	default:
		return ""
	}
}
