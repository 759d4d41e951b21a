// Package content reads the published question bank: subjects, their
// chapters, each chapter's question-type sections and the questions
// themselves.
//
// The bank is a tree of JSON files:
//
//	subjects.json
//	<Subject>/chapters.json
//	<Subject>/<Chapter>/sections.json
//	<Subject>/<Chapter>/<type>.json
//
// Folder names are display names with spaces replaced by underscores.
package content

import (
	"context"
	"errors"
	"strings"

	"github.com/aniquiz/aniquiz/internal/question"
)

// ErrUnavailable wraps every fetch or decode failure.
var ErrUnavailable = errors.New("content unavailable")

// Repository is a read-only view of the question bank.
type Repository interface {
	ListSubjects(ctx context.Context) ([]Subject, error)
	ListChapters(ctx context.Context, subjectKey string) ([]Chapter, error)
	ListSections(ctx context.Context, subjectKey, chapterKey string) (Sections, error)
	ListQuestions(ctx context.Context, subjectKey, chapterKey, typeKey string) ([]question.Raw, error)
}

// FolderKey turns a display name into its folder name.
func FolderKey(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

// Subject is one entry of subjects.json.
type Subject struct {
	Name         string `json:"name"`
	Icon         string `json:"icon,omitempty"`
	ChapterCount int    `json:"chapter_count"`
}

func (s Subject) Key() string { return FolderKey(s.Name) }

var subjectIcons = map[string]string{
	"Mathematics": "🔢",
	"Science":     "🔬",
	"Physics":     "⚡",
	"Chemistry":   "🧪",
	"Biology":     "🧬",
	"English":     "📚",
	"English_E1":  "📖",
	"English_E2":  "📕",
	"History":     "🏛️",
	"Geography":   "🌍",
	"Computer":    "💻",
	"Hindi":       "🕉️",
}

// DisplayIcon is the subject's icon, falling back to a per-name default.
func (s Subject) DisplayIcon() string {
	if s.Icon != "" {
		return s.Icon
	}
	if icon, ok := subjectIcons[s.Key()]; ok {
		return icon
	}
	return "📘"
}

// Chapter is one entry of chapters.json.
type Chapter struct {
	Name         string `json:"name"`
	HasQuestions bool   `json:"has_questions"`
}

func (c Chapter) Key() string { return FolderKey(c.Name) }

// QuestionTypeRef names one question file of a chapter.
type QuestionTypeRef struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
	Count int    `json:"count,omitempty"`

	// InOrder is set for files listed under the textbook group.
	InOrder bool `json:"-"`
}

// Type is the question type the file holds.
func (r QuestionTypeRef) Type() question.Type { return question.ParseType(r.Value) }

// DisplayLabel falls back to the type's built-in label.
func (r QuestionTypeRef) DisplayLabel() string {
	if r.Label != "" {
		return r.Label
	}
	return r.Type().Label()
}

// Shuffled reports whether batches from this file are drawn in random
// order. Files from the textbook group keep their printed order.
func (r QuestionTypeRef) Shuffled() bool { return !r.InOrder }

// Sections groups a chapter's question files.
type Sections struct {
	Textbook      []QuestionTypeRef `json:"textbook"`
	PreviousYear  []QuestionTypeRef `json:"previous_year"`
	Exam          []QuestionTypeRef `json:"exam"`
	Miscellaneous []QuestionTypeRef `json:"miscellaneous"`
}

// Group is a titled list of question files.
type Group struct {
	Title string
	Refs  []QuestionTypeRef
}

// Groups lists the non-empty sections in display order.
func (s Sections) Groups() []Group {
	textbook := make([]QuestionTypeRef, len(s.Textbook))
	for i, r := range s.Textbook {
		r.InOrder = true
		textbook[i] = r
	}
	all := []Group{
		{"Textbook", textbook},
		{"Previous Year Questions", s.PreviousYear},
		{"Exam Practice", s.Exam},
		{"Miscellaneous", s.Miscellaneous},
	}
	out := all[:0]
	for _, g := range all {
		if len(g.Refs) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// All flattens the sections in display order.
func (s Sections) All() []QuestionTypeRef {
	var out []QuestionTypeRef
	for _, g := range s.Groups() {
		out = append(out, g.Refs...)
	}
	return out
}

// Find returns the first file of the given type in display order.
func (s Sections) Find(typeKey string) (QuestionTypeRef, bool) {
	for _, r := range s.All() {
		if r.Value == typeKey {
			return r, true
		}
	}
	return QuestionTypeRef{}, false
}

// Empty reports whether no section has any question file.
func (s Sections) Empty() bool { return len(s.All()) == 0 }
