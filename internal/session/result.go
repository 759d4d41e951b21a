package session

import "fmt"

// Tier is a descriptive band of a batch score.
type Tier int

const (
	TierNeedsWork Tier = iota
	TierAverage
	TierGood
	TierExcellent
	TierPerfect
)

func (t Tier) String() string {
	switch t {
	case TierPerfect:
		return "perfect"
	case TierExcellent:
		return "excellent"
	case TierGood:
		return "good"
	case TierAverage:
		return "average"
	}
	return "needs-work"
}

// TierFor bands correct out of total. Lower bounds are inclusive.
func TierFor(correct, total int) Tier {
	if total <= 0 {
		return TierNeedsWork
	}
	pct := float64(correct) / float64(total) * 100
	switch {
	case pct == 100:
		return TierPerfect
	case pct >= 80:
		return TierExcellent
	case pct >= 60:
		return TierGood
	case pct >= 40:
		return TierAverage
	default:
		return TierNeedsWork
	}
}

// Message is the banner shown after a reveal.
type Message struct {
	Icon    string
	Title   string
	Text    string
	Tier    Tier
	Study   bool
	Partial bool
}

// TierMessage is the banner for a score in tier terms.
func TierMessage(correct, total int) Message {
	t := TierFor(correct, total)
	m := Message{Tier: t}
	switch t {
	case TierPerfect:
		m.Icon, m.Title = "🏆", "WOW! Perfect Score!"
		m.Text = fmt.Sprintf("You're a SUPERSTAR! All %d correct! 🌟", total)
	case TierExcellent:
		m.Icon, m.Title = "🌟", "Amazing Job!"
		m.Text = fmt.Sprintf("Fantastic! You got %d out of %d! So close to perfect!", correct, total)
	case TierGood:
		m.Icon, m.Title = "👍", "Great Work!"
		m.Text = fmt.Sprintf("Nice! You scored %d out of %d. You're getting better!", correct, total)
	case TierAverage:
		m.Icon, m.Title = "💪", "Good Effort!"
		m.Text = fmt.Sprintf("You got %d out of %d. Practice more and you'll ace it!", correct, total)
	default:
		m.Icon, m.Title = "📚", "Keep Trying!"
		m.Text = fmt.Sprintf("You got %d out of %d. Read the chapter again - you've got this!", correct, total)
	}
	return m
}

// Result is the banner for the session's current state. ok is false until
// answers have been revealed or shown.
func (s *Session) Result() (Message, bool) {
	switch s.phase {
	case PhaseStudy:
		return Message{
			Icon:  "📖",
			Title: "Study Mode - Learn & Grow!",
			Text:  "Here are all the answers! Read them carefully and become smarter! 🧠✨",
			Study: true,
		}, true
	case PhaseRevealed:
		sc := s.Score()
		m := TierMessage(sc.Correct, sc.Total)
		if sc.Answered < sc.Total {
			m.Partial = true
			m.Text = fmt.Sprintf("You answered %d of %d questions. Answer all to see \"Try More\"!", sc.Answered, sc.Total)
		}
		return m, true
	}
	return Message{}, false
}
