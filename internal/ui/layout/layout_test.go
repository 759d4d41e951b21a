package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow(t *testing.T) {
	tests := []struct {
		n, selected, height int
		start, end          int
	}{
		{n: 5, selected: 3, height: 10, start: 0, end: 5},
		{n: 30, selected: 0, height: 10, start: 0, end: 10},
		{n: 30, selected: 15, height: 10, start: 10, end: 20},
		{n: 30, selected: 29, height: 10, start: 20, end: 30},
		{n: 30, selected: 3, height: 0, start: 0, end: 30},
	}
	for _, tt := range tests {
		start, end := Window(tt.n, tt.selected, tt.height)
		assert.Equal(t, tt.start, start, "start for %+v", tt)
		assert.Equal(t, tt.end, end, "end for %+v", tt)
	}
}

func TestTextWidth(t *testing.T) {
	assert.Equal(t, ReadableWidth, TextWidth(200))
	assert.Equal(t, 56, TextWidth(60))
	assert.Equal(t, 10, TextWidth(5))
}

func TestRenderHeader(t *testing.T) {
	h := RenderHeader("Chapters", "Guest", 80)
	assert.Contains(t, h, "AniQuiz")
	assert.Contains(t, h, "Chapters")
	assert.Contains(t, h, "Guest")
	assert.Len(t, strings.Split(h, "\n"), 3)
}
