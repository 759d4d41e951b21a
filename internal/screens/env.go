// Package screens holds what every screen of the terminal UI needs to reach
// the question bank and the learner's records. The screens themselves live
// in the sub-packages.
package screens

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aniquiz/aniquiz/internal/auth"
	"github.com/aniquiz/aniquiz/internal/content"
	"github.com/aniquiz/aniquiz/internal/evaluation"
	"github.com/aniquiz/aniquiz/internal/ledger"
	"github.com/aniquiz/aniquiz/internal/question"
)

// LoadTimeout bounds every content request made from a screen.
const LoadTimeout = 20 * time.Second

// Env is shared by all screens. Evaluator and Ledger may be nil.
type Env struct {
	Repo       content.Repository
	Normalizer *question.Normalizer
	Ledger     ledger.Ledger
	Identity   auth.Identity
	Evaluator  evaluation.Evaluator
	BatchSize  int
	Logger     zerolog.Logger
}

// Context returns a context for one content request.
func (e *Env) Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), LoadTimeout)
}

// UserLabel is the name shown in the header.
func (e *Env) UserLabel() string {
	if e.Identity.Name != "" {
		return e.Identity.Name
	}
	if e.Identity.Email != "" {
		return e.Identity.Email
	}
	return "Guest"
}
