// Package ledger records the questions an identity answered incorrectly,
// grouped by subject, chapter and question type.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aniquiz/aniquiz/internal/question"
)

// AnonymousIdentity is the bucket used when nobody is signed in.
const AnonymousIdentity = "anonymous"

// Section identifies the question-type section a question was served from.
type Section struct {
	Subject string
	Chapter string
	Type    question.Type
}

// Key returns "subject|chapter|type" with any '|' or '\' in the parts escaped.
func (s Section) Key() string {
	return escape(s.Subject) + "|" + escape(s.Chapter) + "|" + escape(string(s.Type))
}

// ParseKey reverses Key. ok is false for malformed keys.
func ParseKey(key string) (Section, bool) {
	parts := splitEscaped(key)
	if len(parts) != 3 {
		return Section{}, false
	}
	return Section{Subject: parts[0], Chapter: parts[1], Type: question.Type(parts[2])}, true
}

// StorageKey is the durable record key for an identity.
func StorageKey(identity string) string {
	if identity == "" {
		identity = AnonymousIdentity
	}
	return "wrong_answers|" + escape(identity)
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "|", `\|`)
}

func splitEscaped(s string) []string {
	var (
		parts []string
		cur   strings.Builder
	)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && i+1 < len(s):
			i++
			cur.WriteByte(s[i])
		case c == '|':
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(parts, cur.String())
}

// Entry is one missed question.
type Entry struct {
	QuestionID    string        `json:"questionId"`
	Prompt        string        `json:"question"`
	CorrectAnswer string        `json:"correctAnswer"`
	Explanation   string        `json:"explanation,omitempty"`
	Type          question.Type `json:"type"`
	AddedAt       time.Time     `json:"addedAt"`
}

// Book is the full ledger of one identity: section key to entries in the
// order they were added.
type Book map[string][]Entry

// Add inserts e under key unless an entry with the same question ID exists.
// It reports whether the book changed.
func (b Book) Add(key string, e Entry) bool {
	for _, existing := range b[key] {
		if existing.QuestionID == e.QuestionID {
			return false
		}
	}
	b[key] = append(b[key], e)
	return true
}

// Remove deletes the entry for questionID under key, dropping the key when
// it becomes empty. It reports whether the book changed.
func (b Book) Remove(key, questionID string) bool {
	entries, ok := b[key]
	if !ok {
		return false
	}
	kept := entries[:0:0]
	for _, e := range entries {
		if e.QuestionID != questionID {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return false
	}
	if len(kept) == 0 {
		delete(b, key)
	} else {
		b[key] = kept
	}
	return true
}

// Clone returns a deep copy.
func (b Book) Clone() Book {
	out := make(Book, len(b))
	for k, v := range b {
		out[k] = append([]Entry(nil), v...)
	}
	return out
}

// Backend loads and saves whole books. Implementations must treat a missing
// identity as an empty book.
type Backend interface {
	Load(ctx context.Context, identity string) (Book, error)
	Save(ctx context.Context, identity string, book Book) error
}

// Ledger is the per-identity view the quiz session uses.
type Ledger interface {
	Add(ctx context.Context, sec Section, q question.Question) error
	Remove(ctx context.Context, sec Section, questionID string) error
	ListForChapter(ctx context.Context, subject, chapter string) (map[question.Type][]Entry, error)
	ListAll(ctx context.Context) (map[string][]Entry, error)
	Clear(ctx context.Context) error
}

// Store implements Ledger for one identity over a Backend. Every mutation
// is a synchronous load-modify-save.
type Store struct {
	backend  Backend
	identity string
	now      func() time.Time
}

var _ Ledger = (*Store)(nil)

// New returns the ledger of identity. An empty identity maps to the
// anonymous bucket.
func New(backend Backend, identity string) *Store {
	if identity == "" {
		identity = AnonymousIdentity
	}
	return &Store{backend: backend, identity: identity, now: time.Now}
}

// Identity is the identity this ledger is scoped to.
func (s *Store) Identity() string { return s.identity }

func (s *Store) Add(ctx context.Context, sec Section, q question.Question) error {
	return s.mutate(ctx, func(b Book) bool {
		return b.Add(sec.Key(), Entry{
			QuestionID:    q.ID,
			Prompt:        q.Prompt,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Type:          q.Type,
			AddedAt:       s.now().UTC(),
		})
	})
}

func (s *Store) Remove(ctx context.Context, sec Section, questionID string) error {
	return s.mutate(ctx, func(b Book) bool {
		return b.Remove(sec.Key(), questionID)
	})
}

func (s *Store) ListForChapter(ctx context.Context, subject, chapter string) (map[question.Type][]Entry, error) {
	b, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[question.Type][]Entry)
	for key, entries := range b {
		sec, ok := ParseKey(key)
		if !ok || sec.Subject != subject || sec.Chapter != chapter {
			continue
		}
		out[sec.Type] = append(out[sec.Type], entries...)
	}
	return out, nil
}

func (s *Store) ListAll(ctx context.Context) (map[string][]Entry, error) {
	b, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return map[string][]Entry(b.Clone()), nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Save(ctx, s.identity, Book{}); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	return nil
}

func (s *Store) load(ctx context.Context) (Book, error) {
	b, err := s.backend.Load(ctx, s.identity)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	if b == nil {
		b = Book{}
	}
	return b, nil
}

func (s *Store) mutate(ctx context.Context, fn func(Book) bool) error {
	b, err := s.load(ctx)
	if err != nil {
		return err
	}
	if !fn(b) {
		return nil
	}
	if err := s.backend.Save(ctx, s.identity, b); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// MemoryBackend keeps books in process memory.
type MemoryBackend struct {
	mu    sync.Mutex
	books map[string]Book
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{books: make(map[string]Book)}
}

func (m *MemoryBackend) Load(_ context.Context, identity string) (Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.books[StorageKey(identity)].Clone(), nil
}

func (m *MemoryBackend) Save(_ context.Context, identity string, book Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books[StorageKey(identity)] = book.Clone()
	return nil
}
