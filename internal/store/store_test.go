package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/aniquiz/aniquiz/internal/ledger"
	"github.com/aniquiz/aniquiz/internal/llm"
	"github.com/aniquiz/aniquiz/internal/question"
)

var dbCounter atomic.Int64

func openTestStore(t *testing.T) *Store {
	t.Helper()
	// A distinct shared-cache name per test keeps in-memory databases apart.
	dsn := fmt.Sprintf("file:test%d?mode=memory&cache=shared", dbCounter.Add(1))
	s, err := Open(dsn)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestLedgerBackend_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	l := ledger.New(s.Ledger(), "ani@study.com")

	sec := ledger.Section{Subject: "Science", Chapter: "Cells", Type: question.TypeMCQ}
	q := question.Question{ID: "q1", Type: question.TypeMCQ, Prompt: "Powerhouse?", CorrectAnswer: "Mitochondria"}

	if err := l.Add(ctx, sec, q); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := l.Add(ctx, sec, q); err != nil {
		t.Fatalf("add again: %v", err)
	}

	// A second handle over the same database sees the persisted entry.
	reopened := ledger.New(s.Ledger(), "ani@study.com")
	got, err := reopened.ListForChapter(ctx, "Science", "Cells")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if n := len(got[question.TypeMCQ]); n != 1 {
		t.Fatalf("entries = %d, want 1", n)
	}
	if got[question.TypeMCQ][0].CorrectAnswer != "Mitochondria" {
		t.Errorf("CorrectAnswer = %q", got[question.TypeMCQ][0].CorrectAnswer)
	}

	ids, err := s.Ledger().Identities(ctx)
	if err != nil {
		t.Fatalf("identities: %v", err)
	}
	if len(ids) != 1 || ids[0] != "ani@study.com" {
		t.Errorf("Identities = %v", ids)
	}

	if err := l.Remove(ctx, sec, "q1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	all, err := l.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("ListAll = %v, want empty", all)
	}
	ids, _ = s.Ledger().Identities(ctx)
	if len(ids) != 0 {
		t.Errorf("row not deleted for empty ledger: %v", ids)
	}
}

func TestLedgerBackend_IdentitiesIsolated(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sec := ledger.Section{Subject: "Math", Chapter: "Fractions", Type: question.TypeFillInBlanks}
	q := question.Question{ID: "f1", Type: question.TypeFillInBlanks}

	a := ledger.New(s.Ledger(), "a|b")
	b := ledger.New(s.Ledger(), "a")
	if err := a.Add(ctx, sec, q); err != nil {
		t.Fatal(err)
	}
	if err := b.Clear(ctx); err != nil {
		t.Fatal(err)
	}

	got, err := a.ListAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("clearing another identity affected this one: %v", got)
	}
}

func TestEventRepo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.EventRepo()

	events := []llm.RequestEvent{
		{Provider: "anthropic", Model: "claude-sonnet-4-20250514", Purpose: "answer-evaluation", InputTokens: 100, OutputTokens: 40, LatencyMs: 900, Success: true, RequestBody: "req", ResponseBody: "resp"},
		{Provider: "anthropic", Model: "claude-sonnet-4-20250514", Purpose: "answer-evaluation", InputTokens: 80, OutputTokens: 20, LatencyMs: 700, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "unknown", Success: false, ErrorMessage: "timeout"},
	}
	for _, ev := range events {
		if err := repo.AppendLLMRequest(ctx, ev); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	list, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].Provider != "openai" || list[0].Success {
		t.Errorf("newest event = %+v", list[0])
	}
	if list[0].Sequence <= list[1].Sequence {
		t.Errorf("events not newest first: %d, %d", list[0].Sequence, list[1].Sequence)
	}

	filtered, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "answer-evaluation"})
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 2 {
		t.Errorf("filtered = %d, want 2", len(filtered))
	}

	first := filtered[len(filtered)-1]
	got, err := repo.GetLLMEvent(ctx, first.ID)
	if err != nil || got == nil {
		t.Fatalf("get: %v %v", got, err)
	}
	if got.RequestBody != "req" || got.ResponseBody != "resp" {
		t.Errorf("bodies = %q / %q", got.RequestBody, got.ResponseBody)
	}
	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil || missing != nil {
		t.Errorf("missing event = %v, %v", missing, err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(byPurpose) != 2 || byPurpose[0].Purpose != "answer-evaluation" || byPurpose[0].Calls != 2 || byPurpose[0].InputTokens != 180 || byPurpose[0].AvgLatencyMs != 800 {
		t.Errorf("usage by purpose = %+v", byPurpose)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(byModel) != 1 || byModel[0].OutputTokens != 60 {
		t.Errorf("usage by model = %+v", byModel)
	}
}

func TestEventRepo_IsEventSink(t *testing.T) {
	var _ llm.EventSink = openTestStore(t).EventRepo()
}

func TestOpen_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "aniquiz.db")
	if err := EnsureDir(path); err != nil {
		t.Fatal(err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ANIQUIZ_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "aniquiz", "aniquiz.db"); p != want {
		t.Errorf("DefaultDBPath = %q, want %q", p, want)
	}
}

func TestLedgerBackend_EmptyIdentityIsAnonymous(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sec := ledger.Section{Subject: "Science", Chapter: "Light", Type: question.TypeMCQ}
	book := ledger.Book{}
	book.Add(sec.Key(), ledger.Entry{QuestionID: "m1", Type: question.TypeMCQ})

	if err := s.Ledger().Save(ctx, "", book); err != nil {
		t.Fatal(err)
	}
	ids, err := s.Ledger().Identities(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != ledger.AnonymousIdentity {
		t.Errorf("Identities = %q, want [%q]", ids, ledger.AnonymousIdentity)
	}

	got, err := s.Ledger().Load(ctx, ledger.AnonymousIdentity)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("anonymous book has %d sections, want 1", len(got))
	}
}
