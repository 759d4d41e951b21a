// Package export writes a chapter's questions to an Excel workbook with one
// sheet per question type.
package export

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/aniquiz/aniquiz/internal/content"
	"github.com/aniquiz/aniquiz/internal/question"
)

// Header is the column layout shared by every sheet.
var Header = []any{"No.", "Question", "Details", "Answer", "Explanation"}

const maxSheetName = 31

// Exporter reads questions from a content repository and lays them out as a
// workbook.
type Exporter struct {
	repo       content.Repository
	normalizer *question.Normalizer
	log        zerolog.Logger
}

// New returns an Exporter over repo. A nil normalizer uses the zero value.
func New(repo content.Repository, n *question.Normalizer, log zerolog.Logger) *Exporter {
	if n == nil {
		n = &question.Normalizer{}
	}
	return &Exporter{repo: repo, normalizer: n, log: log.With().Str("component", "export").Logger()}
}

// Sheet is one question type's worth of rows.
type Sheet struct {
	Name      string
	Type      question.Type
	Questions []question.Question
}

// Collect loads every question file of a chapter in export order. Files
// that fail to load are logged and skipped; empty files produce no sheet.
func (e *Exporter) Collect(ctx context.Context, subjectKey, chapterKey string) ([]Sheet, error) {
	secs, err := e.repo.ListSections(ctx, subjectKey, chapterKey)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}

	refs := uniqueRefs(secs.All())
	slices.SortStableFunc(refs, func(a, b content.QuestionTypeRef) int {
		return rank(a.Type()) - rank(b.Type())
	})

	var sheets []Sheet
	used := make(map[string]bool)
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raws, err := e.repo.ListQuestions(ctx, subjectKey, chapterKey, ref.Value)
		if err != nil {
			e.log.Warn().Err(err).Str("type", ref.Value).Msg("skipping question file")
			continue
		}
		if len(raws) == 0 {
			continue
		}
		t := ref.Type()
		sheets = append(sheets, Sheet{
			Name:      sheetName(ref.DisplayLabel(), used),
			Type:      t,
			Questions: e.normalizer.NormalizeAll(raws, t),
		})
	}
	return sheets, nil
}

// Write collects a chapter and writes the workbook to w.
func (e *Exporter) Write(ctx context.Context, w io.Writer, subjectKey, chapterKey string) (int, error) {
	sheets, err := e.Collect(ctx, subjectKey, chapterKey)
	if err != nil {
		return 0, err
	}
	if len(sheets) == 0 {
		return 0, fmt.Errorf("no questions for %s/%s", subjectKey, chapterKey)
	}

	f, err := Workbook(sheets)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}
	n := 0
	for _, s := range sheets {
		n += len(s.Questions)
	}
	e.log.Info().Str("subject", subjectKey).Str("chapter", chapterKey).
		Int("sheets", len(sheets)).Int("questions", n).Msg("exported chapter")
	return n, nil
}

// Workbook builds an in-memory workbook from sheets. The caller closes it.
func Workbook(sheets []Sheet) (*excelize.File, error) {
	f := excelize.NewFile()

	bold, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "top"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}
	wrap, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("body style: %w", err)
	}

	for _, s := range sheets {
		if _, err := f.NewSheet(s.Name); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %q: %w", s.Name, err)
		}
		if err := fillSheet(f, s, bold, wrap); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %q: %w", s.Name, err)
		}
	}
	if len(sheets) > 0 && !slices.ContainsFunc(sheets, func(s Sheet) bool { return s.Name == "Sheet1" }) {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			f.Close()
			return nil, err
		}
		f.SetActiveSheet(0)
	}
	return f, nil
}

func fillSheet(f *excelize.File, s Sheet, headerStyle, bodyStyle int) error {
	header := Header
	if err := f.SetSheetRow(s.Name, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(s.Name, "A1", "E1", headerStyle); err != nil {
		return err
	}

	for i, q := range s.Questions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := Row(i+1, q)
		if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
			return err
		}
	}
	if n := len(s.Questions); n > 0 {
		last, _ := excelize.CoordinatesToCellName(len(Header), n+1)
		if err := f.SetCellStyle(s.Name, "A2", last, bodyStyle); err != nil {
			return err
		}
	}

	widths := map[string]float64{"A": 6, "B": 60, "C": 50, "D": 40, "E": 50}
	for col, w := range widths {
		if err := f.SetColWidth(s.Name, col, col, w); err != nil {
			return err
		}
	}
	return f.SetPanes(s.Name, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	})
}

// Row renders one question as a worksheet row.
func Row(n int, q question.Question) []any {
	return []any{n, q.Prompt, details(q), answer(q), q.Explanation}
}

func details(q question.Question) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, format, args...)
	}

	switch p := q.Payload.(type) {
	case question.ChoicePayload:
		for i, opt := range p.Options {
			line("%c. %s", 'A'+i, opt)
		}
	case question.MatchPayload:
		for i, l := range p.Left {
			line("%d. %s", i+1, l)
		}
		for i, r := range p.Right {
			line("%c. %s", 'a'+i, r)
		}
	case question.DifferencePayload:
		for _, d := range p.Differences {
			line("%s: %s | %s", d.Aspect, d.PointA, d.PointB)
		}
	case question.NumericalPayload:
		for _, g := range p.GivenData {
			line("Given: %s", g)
		}
		if p.Formula != "" {
			line("Formula: %s", p.Formula)
		}
	case question.CaseStudyPayload:
		for i, sq := range p.SubQuestions {
			line("(%c) %s", 'a'+i, sq.Question)
		}
	case question.ExtractPayload:
		if p.Extract != "" {
			line("Extract: %s", p.Extract)
		}
	case question.SentencePayload:
		line("Word: %s", p.Word)
		if p.Meaning != "" {
			line("Meaning: %s", p.Meaning)
		}
	case question.FreeTextPayload:
		if p.Context != "" {
			line("Context: %s", p.Context)
		}
		if len(p.Keywords) > 0 {
			line("Keywords: %s", strings.Join(p.Keywords, ", "))
		}
	case question.ReasonPayload:
		// key points belong with the answer
	}
	return b.String()
}

func answer(q question.Question) string {
	var parts []string
	if q.CorrectAnswer != "" {
		parts = append(parts, q.CorrectAnswer)
	}

	switch p := q.Payload.(type) {
	case question.MatchPayload:
		for _, pair := range p.Pairs {
			parts = append(parts, pair.Left+" → "+pair.Right)
		}
	case question.ReasonPayload:
		for _, k := range p.KeyPoints {
			parts = append(parts, "• "+k)
		}
	case question.FreeTextPayload:
		for _, k := range p.KeyPoints {
			parts = append(parts, "• "+k)
		}
		if p.WhyTricky != "" {
			parts = append(parts, "Why tricky: "+p.WhyTricky)
		}
	case question.NumericalPayload:
		for i, s := range p.SolutionSteps {
			parts = append(parts, fmt.Sprintf("Step %d: %s", i+1, s))
		}
	case question.CaseStudyPayload:
		for i, sq := range p.SubQuestions {
			if sq.Answer != "" {
				parts = append(parts, fmt.Sprintf("(%c) %s", 'a'+i, sq.Answer))
			}
		}
	case question.SentencePayload:
		if p.SampleSentence != "" && p.SampleSentence != q.CorrectAnswer {
			parts = append(parts, "Example: "+p.SampleSentence)
		}
	case question.ExtractPayload:
		if p.Justification != "" {
			parts = append(parts, p.Justification)
		}
	}
	return strings.Join(parts, "\n")
}

// rank orders known types by question.AllTypes; unknown types sort last.
func rank(t question.Type) int {
	if i := slices.Index(question.AllTypes, t); i >= 0 {
		return i
	}
	return len(question.AllTypes)
}

func uniqueRefs(refs []content.QuestionTypeRef) []content.QuestionTypeRef {
	seen := make(map[string]bool, len(refs))
	out := make([]content.QuestionTypeRef, 0, len(refs))
	for _, r := range refs {
		if r.Value == "" || seen[r.Value] {
			continue
		}
		seen[r.Value] = true
		out = append(out, r)
	}
	return out
}

// sheetName makes label a valid, unique worksheet name.
func sheetName(label string, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(label))
	if name == "" {
		name = "Questions"
	}
	name = truncate(name, maxSheetName)

	base := name
	for i := 2; used[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		name = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
