package browse

import (
	"github.com/aniquiz/aniquiz/internal/content"
	"github.com/aniquiz/aniquiz/internal/question"
)

// Each message carries the screen that asked for it, so a result that
// arrives after the learner navigated elsewhere is dropped.

type subjectsLoadedMsg struct {
	owner    *SubjectsScreen
	Subjects []content.Subject
	Err      error
}

type chaptersLoadedMsg struct {
	owner    *ChaptersScreen
	Chapters []content.Chapter
	Err      error
}

type sectionsLoadedMsg struct {
	owner    *SectionsScreen
	Sections content.Sections
	Missed   map[question.Type]int
	Err      error
}
