// Package batch slices a loaded question list into fixed-size batches.
package batch

import (
	"math/rand/v2"

	"github.com/aniquiz/aniquiz/internal/question"
)

// DefaultSize is the number of questions shown per batch.
const DefaultSize = 10

// Result is one drawn batch.
type Result struct {
	// Batch is the visible slice, at most the requested size.
	Batch []question.Question

	// Offset is where Batch starts within Order.
	Offset int

	// HasMore reports whether another batch exists after this one.
	HasMore bool

	// NewOffset is the offset of the next batch.
	NewOffset int

	// Order is the full list in the order batches are drawn from. When the
	// list was shuffled this is the permutation to reuse for later offsets.
	Order []question.Question
}

// Select draws the batch at offset. When offset is 0 and shuffle is set, a
// shuffled copy of all becomes the order; otherwise all is used as given.
// The input slice is never modified.
func Select(all []question.Question, offset, size int, shuffle bool, rng *rand.Rand) Result {
	if size <= 0 {
		size = DefaultSize
	}
	order := all
	if offset == 0 && shuffle && len(all) > 1 {
		order = append([]question.Question(nil), all...)
		shuffleQuestions(order, rng)
	}
	return slice(order, offset, size)
}

func slice(order []question.Question, offset, size int) Result {
	if offset < 0 {
		offset = 0
	}
	if offset > len(order) {
		offset = len(order)
	}
	end := min(offset+size, len(order))
	b := append([]question.Question(nil), order[offset:end]...)
	return Result{
		Batch:     b,
		Offset:    offset,
		HasMore:   offset+size < len(order),
		NewOffset: offset + len(b),
		Order:     order,
	}
}

// shuffleQuestions is a Fisher-Yates shuffle.
func shuffleQuestions(qs []question.Question, rng *rand.Rand) {
	for i := len(qs) - 1; i > 0; i-- {
		var j int
		if rng != nil {
			j = rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		qs[i], qs[j] = qs[j], qs[i]
	}
}

// Pool holds one content load and hands out consecutive batches from a
// single permutation, so later batches never repeat or skip questions.
type Pool struct {
	order []question.Question
	size  int
	next  int
}

// NewPool fixes the draw order for all. Textbook sets pass shuffle=false to
// keep the source ordering.
func NewPool(all []question.Question, size int, shuffle bool, rng *rand.Rand) *Pool {
	first := Select(all, 0, size, shuffle, rng)
	if size <= 0 {
		size = DefaultSize
	}
	return &Pool{order: first.Order, size: size}
}

// Draw returns the batch at offset within the fixed order.
func (p *Pool) Draw(offset int) Result {
	r := slice(p.order, offset, p.size)
	p.next = r.NewOffset
	return r
}

// Next draws the batch after the last one drawn.
func (p *Pool) Next() Result {
	return p.Draw(p.next)
}

// Len is the number of questions in the pool.
func (p *Pool) Len() int { return len(p.order) }

// Size is the batch size.
func (p *Pool) Size() int { return p.size }
