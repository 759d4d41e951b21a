package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aniquiz/aniquiz/internal/evaluation"
	"github.com/aniquiz/aniquiz/internal/llm"
)

type stubEvaluator struct {
	res  evaluation.Result
	err  error
	seen []evaluation.Request
}

func (s *stubEvaluator) Evaluate(_ context.Context, req evaluation.Request) (evaluation.Result, error) {
	s.seen = append(s.seen, req)
	return s.res, s.err
}

func do(t *testing.T, h http.Handler, method, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, "/api/evaluate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func TestEvaluate_Success(t *testing.T) {
	stub := &stubEvaluator{res: evaluation.Result{
		Kind:   evaluation.KindAnswer,
		Answer: &evaluation.AnswerJudgment{Score: "Good", KeyPointsCovered: "70%", Feedback: "Mention chlorophyll."},
	}}
	srv := New(stub, Options{}, zerolog.Nop())

	rec, out := do(t, srv, http.MethodPost, `{"questionType":"short_answer","question":"What is photosynthesis?","referenceAnswer":"Plants make food","userAnswer":"Plants cook"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["success"])
	ev := out["evaluation"].(map[string]any)
	assert.Equal(t, "Good", ev["score"])
	assert.Equal(t, "70%", ev["keyPointsCovered"])

	require.Len(t, stub.seen, 1)
	assert.Equal(t, "Plants cook", stub.seen[0].UserAnswer)
}

func TestEvaluate_EmptyAnswer(t *testing.T) {
	stub := &stubEvaluator{}
	srv := New(stub, Options{}, zerolog.Nop())

	rec, out := do(t, srv, http.MethodPost, `{"questionType":"short_answer","userAnswer":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No answer provided", out["error"])
	assert.Empty(t, stub.seen)

	rec, out = do(t, srv, http.MethodPost, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", out["error"])
}

func TestEvaluate_MethodNotAllowed(t *testing.T) {
	srv := New(&stubEvaluator{}, Options{}, zerolog.Nop())

	rec, out := do(t, srv, http.MethodGet, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method not allowed", out["error"])
}

func TestEvaluate_Failure(t *testing.T) {
	stub := &stubEvaluator{res: evaluation.Fallback(), err: errors.New("anthropic: overloaded")}
	srv := New(stub, Options{}, zerolog.Nop())

	rec, out := do(t, srv, http.MethodPost, `{"questionType":"hots","userAnswer":"because"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to evaluate answer", out["error"])
	assert.Equal(t, "anthropic: overloaded", out["message"])
}

func TestCORSPreflight(t *testing.T) {
	srv := New(&stubEvaluator{}, Options{AllowedOrigins: []string{"https://quiz.example"}}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodOptions, "/api/evaluate", nil)
	req.Header.Set("Origin", "https://quiz.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "https://quiz.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthz(t *testing.T) {
	srv := New(&stubEvaluator{}, Options{}, zerolog.Nop())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

// The remote client and the server agree on the wire format.
func TestClientAgainstServer(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"wordCount":11,"usesWordCorrectly":true,"isGrammaticallyCorrect":true,"hasMinWords":true,"overallScore":"Excellent","feedback":"Well done."}`),
	})
	eval := evaluation.NewLLMEvaluator(provider, evaluation.DefaultLLMConfig(), zerolog.Nop())
	ts := httptest.NewServer(New(eval, Options{}, zerolog.Nop()))
	defer ts.Close()

	client := evaluation.NewClient(ts.URL+"/api/evaluate", ts.Client(), zerolog.Nop())
	res, err := client.Evaluate(context.Background(), evaluation.Request{
		QuestionType: "make_sentences",
		Word:         "benevolent",
		Meaning:      "kind",
		UserAnswer:   "The benevolent king gave food to every hungry person in the town.",
	})
	require.NoError(t, err)
	require.Equal(t, evaluation.KindSentence, res.Kind)
	assert.Equal(t, "Excellent", res.Sentence.OverallScore)
	assert.Equal(t, 1, provider.CallCount())
}
