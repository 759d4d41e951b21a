package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/aniquiz/aniquiz/internal/evaluation"
	"github.com/aniquiz/aniquiz/internal/question"
	"github.com/aniquiz/aniquiz/internal/review"
	"github.com/aniquiz/aniquiz/internal/session"
	"github.com/aniquiz/aniquiz/internal/ui/components"
	"github.com/aniquiz/aniquiz/internal/ui/layout"
	"github.com/aniquiz/aniquiz/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	switch s.sess.Phase() {
	case session.PhaseLoading:
		return centered(width, theme.Hint, "\n\n  Loading questions...")
	case session.PhaseEmpty:
		if err := s.sess.LoadError(); err != nil {
			return centered(width, lipgloss.NewStyle().Foreground(theme.Error),
				fmt.Sprintf("\n\nCould not load questions: %s\n\nPress r to retry", err))
		}
		return centered(width, theme.Hint, "\n\n  No questions in this section yet. Check back soon!")
	}

	if s.confirmLeave {
		return centered(width, lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),
			"\n\n\nLeave this quiz?\n\nYour answers will not be checked.\n\ny / n")
	}

	var b strings.Builder
	b.WriteString(s.renderInfoLine(width))
	b.WriteString("\n")

	tw := layout.TextWidth(width)
	batch := s.sess.Batch()
	if s.sess.OneByOne() {
		if q, ok := s.sess.CurrentQuestion(); ok {
			b.WriteString("\n")
			b.WriteString(s.renderQuestion(q, s.sess.Offset()+s.sess.Cursor()+1, true, tw))
		}
	} else {
		blocks := make([]string, len(batch))
		for i, q := range batch {
			blocks[i] = s.renderQuestion(q, s.sess.Offset()+i+1, i == s.listPos, tw)
		}
		used := lipgloss.Height(b.String()) + 2
		b.WriteString("\n")
		b.WriteString(fitBlocks(blocks, s.listPos, height-used))
	}

	if banner := s.renderBanner(tw); banner != "" {
		b.WriteString("\n")
		b.WriteString(banner)
	}
	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(theme.Pending.Render(s.notice))
	}

	return lipgloss.NewStyle().PaddingLeft(2).Render(b.String())
}

func (s *QuizScreen) renderInfoLine(width int) string {
	left := theme.SectionHeading.Render(s.breadcrumb())

	batch := s.sess.Batch()
	from, to := s.sess.Offset()+1, s.sess.Offset()+len(batch)
	right := lipgloss.NewStyle().Foreground(theme.TextDim).Render(
		fmt.Sprintf("Questions %d-%d of %d", from, to, s.sess.Available()))

	line := left
	if pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 6; pad > 0 {
		line += strings.Repeat(" ", pad) + right
	}

	sc := s.sess.Score()
	label := "Answered"
	if s.sess.OneByOne() {
		label = fmt.Sprintf("Question %d", s.sess.Cursor()+1)
	}
	bar := components.NewProgressBar(label, sc.Answered, sc.Total, min(width-6, 70))
	return line + "\n" + bar.View()
}

// renderBanner is the result message once the batch has been revealed.
func (s *QuizScreen) renderBanner(width int) string {
	m, ok := s.sess.Result()
	if !ok {
		return ""
	}
	style := theme.Correct
	switch {
	case m.Study:
		style = theme.StudyMode
	case m.Partial:
		style = theme.Pending
	}
	text := m.Icon + "  " + m.Title + "  " + lipgloss.NewStyle().Foreground(theme.Text).Render(m.Text)
	if s.sess.CanTryMore() {
		text += "\n" + theme.Hint.Render("Press t for more questions")
	}
	return style.Width(width).Render(text)
}

func (s *QuizScreen) renderQuestion(q question.Question, n int, focused bool, width int) string {
	active := focused && s.sess.Phase() == session.PhaseActive && !s.sess.IsRevealed(q.ID)
	a := s.sess.Answer(q.ID)
	body := lipgloss.NewStyle().Width(width).Foreground(theme.Text)
	dim := lipgloss.NewStyle().Width(width).Foreground(theme.TextDim)

	var b strings.Builder
	line := func(text string) {
		b.WriteString(text)
		b.WriteString("\n")
	}

	stem, options, _ := review.Choices(q)

	if p, ok := q.Payload.(question.ExtractPayload); ok && p.Extract != "" {
		line(dim.Italic(true).Render(fmt.Sprintf("%q", p.Extract)))
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(theme.Text)
	if focused {
		title = title.Foreground(theme.Primary)
	}
	line(title.Width(width).Render(fmt.Sprintf("Q%d. %s", n, stem)))

	switch p := q.Payload.(type) {
	case question.SentencePayload:
		line(dim.Render("Word: " + p.Word))
	case question.NumericalPayload:
		for _, g := range p.GivenData {
			line(dim.Render("  Given: " + g))
		}
	case question.MatchPayload:
		for i, r := range p.Right {
			line(dim.Render(fmt.Sprintf("  %c. %s", 'a'+i, r)))
		}
	}

	switch {
	case len(options) > 0:
		for i, opt := range options {
			mark := "○"
			if a.Text == opt {
				mark = "●"
			}
			row := fmt.Sprintf("  %s %d. %s", mark, i+1, opt)
			switch {
			case active && i == s.option:
				line(theme.Selected.Render("▸" + row[1:]))
			case a.Text == opt:
				line(theme.Selected.Render(row))
			default:
				line(theme.Unselected.Render(row))
			}
		}
	case len(review.Parts(q)) > 0:
		for i, label := range review.Parts(q) {
			prefix := fmt.Sprintf("  (%c) %s: ", 'a'+i, label)
			if active && i == s.part {
				line(theme.Selected.Render(prefix) + s.input.View())
			} else {
				line(body.Render(prefix + a.Parts[i]))
			}
		}
	case active:
		line(lipgloss.NewStyle().Foreground(theme.Secondary).Render("Answer: ") + s.input.View())
	case !a.IsEmpty():
		line(body.Render("Your answer: " + a.Text))
	default:
		line(dim.Italic(true).Render("(not answered)"))
	}

	if s.sess.IsRevealed(q.ID) {
		line(renderVerdict(review.Check(q, a)))
		line(theme.AnswerCard.Width(width).Render(strings.Join(review.Reference(q), "\n")))
	}

	if s.sess.Evaluating(q.ID) {
		line(theme.Pending.Render("Checking your answer..."))
	} else if res, ok := s.sess.Evaluation(q.ID); ok {
		line(renderEvaluation(res, width))
	}

	return b.String()
}

func renderVerdict(v review.Verdict) string {
	switch v.Kind {
	case review.Correct:
		return theme.Correct.Render(v.Label)
	case review.Incorrect:
		return theme.Incorrect.Render(v.Label)
	case review.Unanswered:
		return theme.Pending.Render(v.Label)
	}
	return theme.Hint.Render(v.Label)
}

func renderEvaluation(r evaluation.Result, width int) string {
	var head string
	tick := func(ok bool) string {
		if ok {
			return "✓"
		}
		return "✗"
	}
	switch {
	case r.Kind == evaluation.KindSentence && r.Sentence != nil:
		j := r.Sentence
		head = fmt.Sprintf("Score: %s · Words: %d · Uses word: %s · Grammar: %s",
			j.OverallScore, j.WordCount, tick(j.UsesWordCorrectly), tick(j.IsGrammaticallyCorrect))
	case r.Kind == evaluation.KindAnswer && r.Answer != nil:
		head = fmt.Sprintf("Score: %s · Key points covered: %s", r.Answer.Score, r.Answer.KeyPointsCovered)
	}
	text := r.Feedback()
	if head != "" {
		text = theme.SectionHeading.Render(head) + "\n" + text
	}
	return theme.Card.Width(width).Render("💬 " + text)
}

// fitBlocks shows the focused block and as many neighbours as fit in height
// lines, preferring those after it.
func fitBlocks(blocks []string, focus, height int) string {
	if len(blocks) == 0 {
		return ""
	}
	focus = min(max(focus, 0), len(blocks)-1)
	start, end := focus, focus+1
	used := lipgloss.Height(blocks[focus])
	for end < len(blocks) && used+lipgloss.Height(blocks[end])+1 <= height {
		used += lipgloss.Height(blocks[end]) + 1
		end++
	}
	for start > 0 && used+lipgloss.Height(blocks[start-1])+1 <= height {
		start--
		used += lipgloss.Height(blocks[start]) + 1
	}
	return strings.Join(blocks[start:end], "\n")
}

func centered(width int, style lipgloss.Style, text string) string {
	return style.Width(width).Align(lipgloss.Center).Render(text)
}
