package evaluation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/aniquiz/aniquiz/internal/llm"
)

// ErrNoAnswer is returned for an empty student answer.
var ErrNoAnswer = errors.New("no answer provided")

// LLMConfig tunes LLMEvaluator requests.
type LLMConfig struct {
	MaxTokens   int
	Temperature float64
}

func DefaultLLMConfig() LLMConfig {
	return LLMConfig{MaxTokens: 500}
}

// LLMEvaluator grades answers with a language model directly.
type LLMEvaluator struct {
	provider llm.Provider
	cfg      LLMConfig
	log      zerolog.Logger
}

func NewLLMEvaluator(provider llm.Provider, cfg LLMConfig, log zerolog.Logger) *LLMEvaluator {
	return &LLMEvaluator{provider: provider, cfg: cfg, log: log.With().Str("component", "evaluation").Logger()}
}

func (e *LLMEvaluator) Evaluate(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.UserAnswer) == "" {
		return Fallback(), ErrNoAnswer
	}
	ctx = llm.WithPurpose(ctx, "answer-evaluation")

	tmpl, schema := answerTemplate, AnswerSchema
	if req.IsSentence() {
		tmpl, schema = sentenceTemplate, SentenceSchema
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, req); err != nil {
		return Fallback(), fmt.Errorf("build evaluation prompt: %w", err)
	}

	resp, err := e.provider.Generate(ctx, llm.Request{
		System:      evaluationSystemPrompt,
		Messages:    llm.UserPrompt(buf.String()),
		Schema:      schema,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	})
	if err != nil {
		// Output that came back but did not fit the schema is still useful prose.
		var invalid *llm.ErrInvalidResponse
		if errors.As(err, &invalid) && len(bytes.TrimSpace(invalid.Content)) > 0 {
			e.log.Debug().Err(err).Msg("unstructured evaluation")
			return ParseResult(invalid.Content), nil
		}
		var truncated *llm.ErrMaxTokensExceeded
		if errors.As(err, &truncated) && len(bytes.TrimSpace(truncated.Content)) > 0 {
			return Result{Kind: KindRaw, RawFeedback: string(truncated.Content)}, nil
		}
		e.log.Warn().Err(err).Msg("evaluation failed")
		return Fallback(), fmt.Errorf("LLM evaluation failed: %w", err)
	}
	return ParseResult(resp.Content), nil
}

const evaluationSystemPrompt = `You are a supportive teacher grading a school student's written answer. Be brief, specific and encouraging. Respond only with the requested JSON.`

var sentenceTemplate = template.Must(template.New("sentence").Parse(`You are evaluating a student's sentence for an English class.

Word: {{.Word}}
Meaning: {{.Meaning}}

Student's sentence: "{{.UserAnswer}}"

Please evaluate the sentence on these criteria:
1. Does the sentence use the word "{{.Word}}" correctly based on its meaning?
2. Is the sentence grammatically correct?
3. Does it have at least 10 words? (Count the words)

Give overallScore as one of Excellent, Good or Needs Improvement, and feedback in 1-2 sentences.`))

var answerTemplate = template.Must(template.New("answer").Parse(`You are evaluating a student's answer for an exam.

Question: {{.Question}}

Reference Answer: {{.ReferenceAnswer}}

Student's Answer: "{{.UserAnswer}}"

Please evaluate how well the student's answer matches the reference answer. Consider:
1. Are the key points covered?
2. Is the answer accurate?
3. Is the explanation clear?

Give score as one of Excellent, Good, Partial or Needs Improvement, keyPointsCovered as a percentage like 80%, and feedback in 2-3 sentences explaining what was good and what could be improved.`))

// SentenceSchema is the structured output for sentence construction.
var SentenceSchema = &llm.Schema{
	Name:        "sentence-evaluation",
	Description: "Evaluation of a sentence written around a vocabulary word",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"wordCount":              map[string]any{"type": "integer"},
			"usesWordCorrectly":      map[string]any{"type": "boolean"},
			"isGrammaticallyCorrect": map[string]any{"type": "boolean"},
			"hasMinWords":            map[string]any{"type": "boolean"},
			"overallScore": map[string]any{
				"type": "string",
				"enum": []any{"Excellent", "Good", "Needs Improvement"},
			},
			"feedback": map[string]any{"type": "string"},
		},
		"required":             []any{"wordCount", "usesWordCorrectly", "isGrammaticallyCorrect", "hasMinWords", "overallScore", "feedback"},
		"additionalProperties": false,
	},
}

// AnswerSchema is the structured output for reference-answer grading.
var AnswerSchema = &llm.Schema{
	Name:        "answer-evaluation",
	Description: "Evaluation of a free-text answer against a reference answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type": "string",
				"enum": []any{"Excellent", "Good", "Partial", "Needs Improvement"},
			},
			"keyPointsCovered": map[string]any{"type": "string"},
			"feedback":         map[string]any{"type": "string"},
		},
		"required":             []any{"score", "keyPointsCovered", "feedback"},
		"additionalProperties": false,
	},
}
