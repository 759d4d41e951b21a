// Package evaluation provides advisory natural-language grading of free-text
// answers. Results are display-only feedback; they never affect score or the
// missed-question ledger.
package evaluation

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/aniquiz/aniquiz/internal/question"
)

// GenericFeedback is shown when no evaluation could be obtained.
const GenericFeedback = "Automatic feedback is unavailable right now. Compare your answer with the reference answer."

// Request is the wire request of the evaluation endpoint.
type Request struct {
	QuestionType    string `json:"questionType"`
	Question        string `json:"question"`
	ReferenceAnswer string `json:"referenceAnswer"`
	UserAnswer      string `json:"userAnswer"`
	Word            string `json:"word,omitempty"`
	Meaning         string `json:"meaning,omitempty"`
}

// NewRequest builds a request for answer to q.
func NewRequest(q question.Question, answer string) Request {
	req := Request{
		QuestionType:    string(q.Type),
		Question:        q.Prompt,
		ReferenceAnswer: q.CorrectAnswer,
		UserAnswer:      answer,
	}
	if p, ok := q.Payload.(question.SentencePayload); ok {
		req.Word = p.Word
		req.Meaning = p.Meaning
		if req.ReferenceAnswer == "" {
			req.ReferenceAnswer = p.SampleSentence
		}
	}
	return req
}

// IsSentence reports whether the request uses the sentence rubric.
func (r Request) IsSentence() bool {
	return r.QuestionType == string(question.TypeMakeSentences)
}

// Evaluator grades a free-text answer.
type Evaluator interface {
	// Evaluate always returns a displayable Result. A non-nil error means the
	// Result is a fallback.
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// Kind discriminates Result.
type Kind int

const (
	KindRaw      Kind = iota // unstructured feedback text
	KindSentence             // sentence-construction rubric
	KindAnswer               // reference-answer rubric
)

// SentenceJudgment grades a sentence built around a vocabulary word.
type SentenceJudgment struct {
	WordCount              int    `json:"wordCount"`
	UsesWordCorrectly      bool   `json:"usesWordCorrectly"`
	IsGrammaticallyCorrect bool   `json:"isGrammaticallyCorrect"`
	HasMinWords            bool   `json:"hasMinWords"`
	OverallScore           string `json:"overallScore"`
	Feedback               string `json:"feedback"`
}

// AnswerJudgment grades an answer against a reference answer.
type AnswerJudgment struct {
	Score            string `json:"score"`
	KeyPointsCovered string `json:"keyPointsCovered"`
	Feedback         string `json:"feedback"`
}

// Coverage parses KeyPointsCovered ("80%") as a percentage, or -1.
func (a AnswerJudgment) Coverage() int {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(a.KeyPointsCovered), "%"))
	n, err := strconv.Atoi(s)
	if err != nil {
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return int(f + 0.5)
		}
		return -1
	}
	return n
}

// Result is one evaluation.
type Result struct {
	Kind        Kind
	Sentence    *SentenceJudgment
	Answer      *AnswerJudgment
	RawFeedback string
}

// Fallback is the result used when evaluation failed.
func Fallback() Result {
	return Result{Kind: KindRaw, RawFeedback: GenericFeedback}
}

// Feedback is the prose part of any result.
func (r Result) Feedback() string {
	switch r.Kind {
	case KindSentence:
		if r.Sentence != nil {
			return r.Sentence.Feedback
		}
	case KindAnswer:
		if r.Answer != nil {
			return r.Answer.Feedback
		}
	case KindRaw:
		return r.RawFeedback
	}
	return ""
}

// MarshalJSON writes the flat object sent to clients. Raw results use
// score "Evaluated".
func (r Result) MarshalJSON() ([]byte, error) {
	switch {
	case r.Kind == KindSentence && r.Sentence != nil:
		return json.Marshal(r.Sentence)
	case r.Kind == KindAnswer && r.Answer != nil:
		return json.Marshal(r.Answer)
	default:
		return json.Marshal(map[string]string{"score": "Evaluated", "feedback": r.RawFeedback})
	}
}

// ParseResult interprets an evaluation payload. Anything that is not a
// recognised structure becomes raw feedback: non-JSON text verbatim, or the
// "feedback"/"rawFeedback" field of an unrecognised object.
func ParseResult(data []byte) Result {
	data = bytes.TrimSpace(data)
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Result{Kind: KindRaw, RawFeedback: string(data)}
	}

	if _, ok := fields["usesWordCorrectly"]; ok {
		var s SentenceJudgment
		if json.Unmarshal(data, &s) == nil {
			return Result{Kind: KindSentence, Sentence: &s}
		}
	}
	if _, ok := fields["keyPointsCovered"]; ok {
		var a AnswerJudgment
		if json.Unmarshal(data, &a) == nil {
			return Result{Kind: KindAnswer, Answer: &a}
		}
	}

	for _, key := range []string{"rawFeedback", "feedback"} {
		var s string
		if raw, ok := fields[key]; ok && json.Unmarshal(raw, &s) == nil {
			return Result{Kind: KindRaw, RawFeedback: s}
		}
	}
	return Result{Kind: KindRaw, RawFeedback: string(data)}
}
