package batch

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aniquiz/aniquiz/internal/question"
)

func makeQuestions(n int) []question.Question {
	qs := make([]question.Question, n)
	for i := range qs {
		qs[i] = question.Question{ID: fmt.Sprintf("q%02d", i), Type: question.TypeMCQ}
	}
	return qs
}

func ids(qs []question.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestSelect_Empty(t *testing.T) {
	r := Select(nil, 0, 10, true, nil)
	assert.Empty(t, r.Batch)
	assert.False(t, r.HasMore)
	assert.Equal(t, 0, r.NewOffset)
}

func TestSelect_HasMore(t *testing.T) {
	all := makeQuestions(25)

	tests := []struct {
		offset    int
		wantLen   int
		wantMore  bool
		newOffset int
	}{
		{0, 10, true, 10},
		{10, 10, true, 20},
		{20, 5, false, 25},
		{25, 0, false, 25},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("offset=%d", tc.offset), func(t *testing.T) {
			r := Select(all, tc.offset, 10, false, nil)
			assert.Len(t, r.Batch, tc.wantLen)
			assert.Equal(t, tc.wantMore, r.HasMore)
			assert.Equal(t, tc.newOffset, r.NewOffset)
		})
	}

	exact := Select(makeQuestions(10), 0, 10, false, nil)
	assert.False(t, exact.HasMore, "exactly one full batch has nothing more")
}

func TestSelect_NoShuffleKeepsOrder(t *testing.T) {
	all := makeQuestions(5)
	r := Select(all, 0, 3, false, nil)
	assert.Equal(t, []string{"q00", "q01", "q02"}, ids(r.Batch))
}

func TestSelect_ShuffleDoesNotMutateInput(t *testing.T) {
	all := makeQuestions(20)
	before := ids(all)
	r := Select(all, 0, 10, true, rand.New(rand.NewPCG(7, 7)))
	assert.Equal(t, before, ids(all))
	assert.ElementsMatch(t, before, ids(r.Order))
}

func TestPool_DrawsFromOnePermutation(t *testing.T) {
	all := makeQuestions(23)
	p := NewPool(all, 10, true, rand.New(rand.NewPCG(3, 4)))

	seen := map[string]bool{}
	var more = true
	for more {
		r := p.Next()
		require.LessOrEqual(t, len(r.Batch), 10, "a batch never exceeds the size")
		for _, q := range r.Batch {
			assert.False(t, seen[q.ID], "question %s drawn twice", q.ID)
			seen[q.ID] = true
		}
		more = r.HasMore
	}
	assert.Len(t, seen, 23)
}

func TestPool_RedrawIsStable(t *testing.T) {
	p := NewPool(makeQuestions(15), 5, true, rand.New(rand.NewPCG(9, 9)))
	first := ids(p.Draw(5).Batch)
	again := ids(p.Draw(5).Batch)
	assert.Equal(t, first, again)
}
