package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aniquiz/aniquiz/internal/content"
	"github.com/aniquiz/aniquiz/internal/evaluation"
	"github.com/aniquiz/aniquiz/internal/ledger"
	"github.com/aniquiz/aniquiz/internal/question"
	"github.com/aniquiz/aniquiz/internal/review"
	"github.com/aniquiz/aniquiz/internal/screens"
	"github.com/aniquiz/aniquiz/internal/session"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Answer one section question by question on the command line",
	Example: `  aniquiz quiz --subject Science --chapter Light --type mcq
  aniquiz quiz --subject "Social Studies" --chapter "The Mughals" --type short_answer --user asha@example.com`,
	RunE: runQuiz,
}

func init() {
	quizCmd.Flags().String("subject", "", "Subject name")
	quizCmd.Flags().String("chapter", "", "Chapter name")
	quizCmd.Flags().String("type", "", "Question type, e.g. mcq or short_answer")
	quizCmd.Flags().Bool("feedback", true, "Ask the evaluator about written answers")
	_ = quizCmd.MarkFlagRequired("subject")
	_ = quizCmd.MarkFlagRequired("chapter")
	_ = quizCmd.MarkFlagRequired("type")
}

func runQuiz(cmd *cobra.Command, args []string) error {
	subject, _ := cmd.Flags().GetString("subject")
	chapter, _ := cmd.Flags().GetString("chapter")
	typeKey, _ := cmd.Flags().GetString("type")
	feedback, _ := cmd.Flags().GetBool("feedback")

	rt, err := openRuntime(cmd, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	env, err := rt.env(cmd)
	if err != nil {
		return err
	}
	if !feedback {
		env.Evaluator = nil
	}

	lq := newLineQuiz(env, os.Stdin, os.Stdout)
	return lq.Run(cmd.Context(), subject, chapter, typeKey)
}

var errInputClosed = errors.New("input closed")

// lineQuiz drives a one-by-one session over plain reader and writer
// streams.
type lineQuiz struct {
	env  *screens.Env
	in   *bufio.Scanner
	out  io.Writer
	sess *session.Session
}

func newLineQuiz(env *screens.Env, in io.Reader, out io.Writer) *lineQuiz {
	if env.Normalizer == nil {
		env.Normalizer = question.NewNormalizer(nil)
	}
	return &lineQuiz{
		env: env,
		in:  bufio.NewScanner(in),
		out: out,
		sess: session.New(session.Config{
			Ledger:    env.Ledger,
			Identity:  env.Identity,
			BatchSize: env.BatchSize,
			Logger:    env.Logger,
		}),
	}
}

// lookupRef finds the section's entry in the chapter index so the label and
// textbook ordering match the TUI. Types missing from the index are drawn
// shuffled.
func (lq *lineQuiz) lookupRef(ctx context.Context, subject, chapter, typeKey string) content.QuestionTypeRef {
	secs, err := lq.env.Repo.ListSections(ctx, content.FolderKey(subject), content.FolderKey(chapter))
	if err != nil {
		lq.env.Logger.Debug().Err(err).Str("chapter", chapter).Msg("chapter sections unavailable")
		return content.QuestionTypeRef{Value: typeKey}
	}
	if ref, ok := secs.Find(typeKey); ok {
		return ref
	}
	return content.QuestionTypeRef{Value: typeKey}
}

// Run loads the section and asks its questions batch by batch until the
// learner stops, the section runs out or input closes.
func (lq *lineQuiz) Run(ctx context.Context, subject, chapter, typeKey string) error {
	ref := lq.lookupRef(ctx, subject, chapter, typeKey)
	sec := ledger.Section{Subject: subject, Chapter: chapter, Type: ref.Type()}

	raws, err := lq.env.Repo.ListQuestions(ctx, content.FolderKey(subject), content.FolderKey(chapter), typeKey)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	lq.sess.Start(sec, lq.env.Normalizer.NormalizeAll(raws, ref.Type()), ref.Shuffled())
	lq.sess.SetOneByOne(true)

	if len(lq.sess.Batch()) == 0 {
		fmt.Fprintln(lq.out, "No questions in this section yet.")
		return nil
	}
	fmt.Fprintf(lq.out, "%s › %s › %s (%d questions)\n\n", subject, chapter, ref.DisplayLabel(), lq.sess.Available())

	for {
		if err := lq.askBatch(ctx); err != nil {
			if errors.Is(err, errInputClosed) {
				fmt.Fprintln(lq.out, "\n(input closed)")
				return nil
			}
			return err
		}
		lq.printResult()

		if !lq.sess.CanTryMore() {
			return nil
		}
		more, err := lq.prompt("More questions? [y/N] ")
		if err != nil || !strings.EqualFold(more, "y") {
			return nil
		}
		if err := lq.sess.TryMore(); err != nil {
			fmt.Fprintln(lq.out, err)
			return nil
		}
		fmt.Fprintln(lq.out)
	}
}

func (lq *lineQuiz) askBatch(ctx context.Context) error {
	for {
		q, ok := lq.sess.CurrentQuestion()
		if !ok {
			return session.ErrNoBatch
		}
		if err := lq.ask(q); err != nil {
			return err
		}
		if err := lq.sess.RevealCurrent(ctx); err != nil {
			return err
		}
		lq.printReveal(ctx, q)

		if lq.sess.AtLast() {
			_, err := lq.sess.Finish(ctx)
			return err
		}
		if err := lq.sess.Next(); err != nil {
			return err
		}
	}
}

func (lq *lineQuiz) ask(q question.Question) error {
	n := lq.sess.Offset() + lq.sess.Cursor() + 1
	fmt.Fprintf(lq.out, "── Question %d/%d ──\n", n, lq.sess.Available())

	if p, ok := q.Payload.(question.ExtractPayload); ok && p.Extract != "" {
		fmt.Fprintf(lq.out, "\"%s\"\n", p.Extract)
	}
	stem, options, _ := review.Choices(q)
	fmt.Fprintln(lq.out, stem)

	switch p := q.Payload.(type) {
	case question.SentencePayload:
		fmt.Fprintf(lq.out, "Word: %s", p.Word)
		if p.Meaning != "" {
			fmt.Fprintf(lq.out, " (%s)", p.Meaning)
		}
		fmt.Fprintln(lq.out)
	case question.NumericalPayload:
		for _, g := range p.GivenData {
			fmt.Fprintf(lq.out, "  Given: %s\n", g)
		}
	case question.MatchPayload:
		for i, r := range p.Right {
			fmt.Fprintf(lq.out, "  %c. %s\n", 'a'+i, r)
		}
	}

	if len(options) > 0 {
		for i, o := range options {
			fmt.Fprintf(lq.out, "  %d) %s\n", i+1, o)
		}
		answer, err := lq.prompt("\nYour answer: ")
		if err != nil {
			return err
		}
		lq.sess.SetAnswer(q.ID, pickOption(answer, options))
		return nil
	}

	if parts := review.Parts(q); len(parts) > 0 {
		fmt.Fprintln(lq.out)
		for i, label := range parts {
			answer, err := lq.prompt(fmt.Sprintf("(%c) %s: ", 'a'+i, label))
			if err != nil {
				return err
			}
			lq.sess.SetSubAnswer(q.ID, i, answer)
		}
		return nil
	}

	answer, err := lq.prompt("\nYour answer: ")
	if err != nil {
		return err
	}
	lq.sess.SetAnswer(q.ID, answer)
	return nil
}

// pickOption maps an option number to its text. Anything else is kept as
// typed.
func pickOption(answer string, options []string) string {
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
		return options[n-1]
	}
	return answer
}

func (lq *lineQuiz) prompt(label string) (string, error) {
	fmt.Fprint(lq.out, label)
	if !lq.in.Scan() {
		return "", errInputClosed
	}
	return strings.TrimSpace(lq.in.Text()), nil
}

func (lq *lineQuiz) printReveal(ctx context.Context, q question.Question) {
	a := lq.sess.Answer(q.ID)
	v := review.Check(q, a)
	switch v.Kind {
	case review.Correct:
		fmt.Fprintf(lq.out, "\033[32m%s\033[0m\n", v.Label)
	case review.Incorrect:
		fmt.Fprintf(lq.out, "\033[31m%s\033[0m\n", v.Label)
	case review.Unanswered:
		fmt.Fprintln(lq.out, "(skipped)")
	default:
		fmt.Fprintln(lq.out, v.Label)
	}
	for _, line := range review.Reference(q) {
		fmt.Fprintln(lq.out, line)
	}
	if lq.wantsFeedback(q, a) {
		lq.printFeedback(ctx, q, a.Text)
	}
	fmt.Fprintln(lq.out)
}

func (lq *lineQuiz) wantsFeedback(q question.Question, a question.Answer) bool {
	if lq.env.Evaluator == nil || a.Text == "" || question.Gradable(q.Type) || len(review.Parts(q)) > 0 {
		return false
	}
	_, options, _ := review.Choices(q)
	return len(options) == 0
}

func (lq *lineQuiz) printFeedback(ctx context.Context, q question.Question, answer string) {
	fmt.Fprintln(lq.out, "Checking your answer...")
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	res, err := lq.env.Evaluator.Evaluate(ctx, evaluation.NewRequest(q, answer))
	if err != nil {
		lq.env.Logger.Warn().Err(err).Str("question", q.ID).Msg("answer evaluation failed")
	}
	switch res.Kind {
	case evaluation.KindSentence:
		if s := res.Sentence; s != nil {
			fmt.Fprintf(lq.out, "Score: %s (%d words)\n", s.OverallScore, s.WordCount)
		}
	case evaluation.KindAnswer:
		if j := res.Answer; j != nil {
			fmt.Fprintf(lq.out, "Score: %s  Key points covered: %s\n", j.Score, j.KeyPointsCovered)
		}
	}
	if fb := res.Feedback(); fb != "" {
		fmt.Fprintf(lq.out, "💬 %s\n", fb)
	}
}

func (lq *lineQuiz) printResult() {
	msg, ok := lq.sess.Result()
	if !ok {
		return
	}
	sc := lq.sess.Score()
	fmt.Fprintf(lq.out, "── %s %s ──\n", msg.Icon, msg.Title)
	fmt.Fprintln(lq.out, msg.Text)
	fmt.Fprintf(lq.out, "Correct: %d  Answered: %d of %d  Score: %.0f%%\n", sc.Correct, sc.Answered, sc.Total, sc.Percent())
}
