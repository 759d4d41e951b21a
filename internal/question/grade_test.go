package question

import "testing"

func TestIsCorrect_FillInBlanksAlternatives(t *testing.T) {
	q := Question{Type: TypeFillInBlanks, CorrectAnswer: "Mitochondria (or Powerhouse of cell)"}

	tests := []struct {
		input string
		want  bool
	}{
		{"mitochondria", true},
		{"  Mitochondria ", true},
		{"powerhouse of cell", true},
		{"the powerhouse of cell", true},
		{"mitochondrial", true}, // lenient substring match
		{"nucleus", false},
		{"", false},
	}

	for _, tc := range tests {
		got := IsCorrect(q, TextAnswer(tc.input))
		if got != tc.want {
			t.Errorf("IsCorrect(%q, mitochondria) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestIsCorrect_NameTheFollowingBareOr(t *testing.T) {
	q := Question{Type: TypeNameTheFollowing, CorrectAnswer: "Xylem or Phloem"}

	for input, want := range map[string]bool{
		"xylem":   true,
		"PHLOEM":  true,
		"stomata": false,
	} {
		if got := IsCorrect(q, TextAnswer(input)); got != want {
			t.Errorf("IsCorrect(%q, xylem or phloem) = %v, want %v", input, got, want)
		}
	}
}

func TestIsCorrect_MCQExact(t *testing.T) {
	q := Question{Type: TypeMCQ, CorrectAnswer: "Oxygen", Payload: ChoicePayload{Options: []string{"Oxygen", "Iron"}}}

	tests := []struct {
		input string
		want  bool
	}{
		{"Oxygen", true},
		{"oxygen", false},
		{"Oxygen ", false},
		{"Iron", false},
		{"", false},
	}

	for _, tc := range tests {
		got := IsCorrect(q, TextAnswer(tc.input))
		if got != tc.want {
			t.Errorf("IsCorrect(%q, Oxygen/mcq) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestIsCorrect_AssertionReasonLetter(t *testing.T) {
	n := &Normalizer{}
	q := n.Normalize(Raw{
		"id":             "ar1",
		"assertion":      "Plants make food.",
		"reason":         "They photosynthesize.",
		"options":        []any{"A. x", "B. y", "C. z"},
		"correct_option": "B",
	}, TypeAssertionReason)

	if q.CorrectAnswer != "B. y" {
		t.Fatalf("CorrectAnswer = %q, want %q", q.CorrectAnswer, "B. y")
	}

	tests := []struct {
		input string
		want  bool
	}{
		{"B. y", true},
		{"b. something else", true},
		{"A. x", false},
		{"", false},
	}
	for _, tc := range tests {
		got := IsCorrect(q, TextAnswer(tc.input))
		if got != tc.want {
			t.Errorf("IsCorrect(%q, B/assertion) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestIsCorrect_TrueFalse(t *testing.T) {
	n := &Normalizer{}
	for _, raw := range []any{true, "True", "true"} {
		q := n.Normalize(Raw{"statement": "The sun is a star.", "answer": raw}, TypeTrueFalse)
		if q.CorrectAnswer != "True" {
			t.Errorf("Normalize(answer=%v).CorrectAnswer = %q, want True", raw, q.CorrectAnswer)
		}
		if IsCorrect(q, TextAnswer("False")) {
			t.Errorf("IsCorrect(False, %v) = true, want false", raw)
		}
		if !IsCorrect(q, TextAnswer("True")) {
			t.Errorf("IsCorrect(True, %v) = false, want true", raw)
		}
	}

	q := n.Normalize(Raw{"statement": "The moon is a star.", "answer": false}, TypeTrueFalse)
	if !IsCorrect(q, TextAnswer("False")) {
		t.Error("IsCorrect(False, false) = false, want true")
	}
	if IsCorrect(q, TextAnswer("maybe")) {
		t.Error("IsCorrect(maybe, false) = true, want false")
	}
}

func TestIsCorrect_UngradableTypes(t *testing.T) {
	ungradable := []Type{
		TypeMatchTheFollowing, TypeGiveReason, TypeDifferentiate, TypeCaseStudy,
		TypeNumericals, TypeReferenceToContext, TypeMakeSentences, TypeShortAnswer,
		TypeLongAnswer, TypeTextbookQA, TypeHOTS, TypeTricky, Type("riddles"),
	}
	for _, typ := range ungradable {
		q := Question{Type: typ, CorrectAnswer: "same"}
		if IsCorrect(q, TextAnswer("same")) {
			t.Errorf("IsCorrect(%s) = true, want false", typ)
		}
		if Gradable(typ) {
			t.Errorf("Gradable(%s) = true, want false", typ)
		}
	}
}

func TestIsCorrect_TotalOverAllTypes(t *testing.T) {
	n := &Normalizer{}
	for _, typ := range AllTypes {
		q := n.Normalize(Raw{}, typ)
		// Must not panic on an empty record.
		_ = IsCorrect(q, TextAnswer("anything"))
		_ = IsCorrect(q, Answer{Parts: map[int]string{0: "x"}})
	}
}

func TestAlternatives(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Mitochondria (or Powerhouse of cell)", []string{"mitochondria", "powerhouse of cell"}},
		{"Xylem or Phloem", []string{"xylem", "phloem"}},
		{"Chlorophyll", []string{"chlorophyll"}},
		{"", nil},
	}
	for _, tc := range tests {
		got := Alternatives(tc.in)
		if len(got) != len(tc.want) {
			t.Errorf("Alternatives(%q) = %q, want %q", tc.in, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("Alternatives(%q)[%d] = %q, want %q", tc.in, i, got[i], tc.want[i])
			}
		}
	}
}
