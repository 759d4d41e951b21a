package content

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aniquiz/aniquiz/internal/question"
)

func testBank() fstest.MapFS {
	return fstest.MapFS{
		"subjects.json": {Data: []byte(`{"version":"1.0.0","subjects":[{"name":"Social Science","chapter_count":2},{"name":"Physics","icon":"🚀","chapter_count":1}]}`)},
		"Social_Science/chapters.json": {Data: []byte(`{"chapters":[{"name":"The French Revolution","has_questions":true},{"name":"Forests","has_questions":false}]}`)},
		"Social_Science/The_French_Revolution/sections.json": {Data: []byte(`{"sections":{
			"textbook":[{"value":"textbook_qa","label":"Textbook Q&A"}],
			"exam":[{"value":"mcq","label":"Multiple Choice","icon":"🔘"},{"value":"tricky"}],
			"miscellaneous":[]}}`)},
		"Social_Science/The_French_Revolution/mcq.json": {Data: []byte(`{"questions":[{"id":1,"question":"When?","options":["1789","1857"],"correct_answer":"1789"}]}`)},
		"Social_Science/The_French_Revolution/hots.json": {Data: []byte(`not json`)},
	}
}

func TestFolderKey(t *testing.T) {
	assert.Equal(t, "Social_Science", FolderKey("Social Science"))
	assert.Equal(t, "The_French_Revolution", Chapter{Name: "The French Revolution"}.Key())
}

func TestBank_FS(t *testing.T) {
	ctx := context.Background()
	b := NewBank(FSFetcher{FS: testBank()}, zerolog.Nop())

	subjects, err := b.ListSubjects(ctx)
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "📘", subjects[0].DisplayIcon())
	assert.Equal(t, "🚀", subjects[1].DisplayIcon())

	chapters, err := b.ListChapters(ctx, subjects[0].Key())
	require.NoError(t, err)
	require.Len(t, chapters, 2)
	assert.False(t, chapters[1].HasQuestions)

	sections, err := b.ListSections(ctx, subjects[0].Key(), chapters[0].Key())
	require.NoError(t, err)
	groups := sections.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "Textbook", groups[0].Title)
	assert.False(t, groups[0].Refs[0].Shuffled())

	all := sections.All()
	require.Len(t, all, 3)
	assert.Equal(t, question.TypeTricky, all[2].Type())
	assert.Equal(t, "Tricky Questions", all[2].DisplayLabel())

	raws, err := b.ListQuestions(ctx, "Social_Science", "The_French_Revolution", "mcq")
	require.NoError(t, err)
	require.Len(t, raws, 1)
	q := question.NewNormalizer(nil).Normalize(raws[0], question.TypeMCQ)
	assert.Equal(t, "1", q.ID)
	assert.Equal(t, "1789", q.CorrectAnswer)
}

func TestBank_ErrorsWrapUnavailable(t *testing.T) {
	ctx := context.Background()
	b := NewBank(FSFetcher{FS: testBank()}, zerolog.Nop())

	_, err := b.ListChapters(ctx, "Mathematics")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = b.ListQuestions(ctx, "Social_Science", "The_French_Revolution", "hots")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "decode")
}

func TestBank_HTTP(t *testing.T) {
	bank := testBank()
	srv := httptest.NewServer(http.FileServerFS(bank))
	defer srv.Close()

	b := NewHTTP(srv.URL+"/", srv.Client(), zerolog.Nop())
	subjects, err := b.ListSubjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Social Science", subjects[0].Name)

	raws, err := b.ListQuestions(context.Background(), "Social_Science", "The_French_Revolution", "mcq")
	require.NoError(t, err)
	assert.Len(t, raws, 1)

	_, err = b.ListSections(context.Background(), "Physics", "Motion")
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestCompatibleVersion(t *testing.T) {
	tests := []struct {
		v    string
		want bool
	}{
		{"1.0.0", true},
		{"v1.9.3", true},
		{"0.4.0", true},
		{"2.0.0", false},
		{"garbage", true},
	}
	for _, tc := range tests {
		if got := CompatibleVersion(tc.v); got != tc.want {
			t.Errorf("CompatibleVersion(%q) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestSections_TextbookGroupKeepsOrder(t *testing.T) {
	var secs Sections
	require.NoError(t, json.Unmarshal([]byte(`{"textbook":[{"value":"mcq"},{"value":"fill_in_blanks"}],"exam":[{"value":"mcq"}]}`), &secs))

	groups := secs.Groups()
	require.Len(t, groups, 2)
	for _, r := range groups[0].Refs {
		assert.False(t, r.Shuffled(), r.Value)
	}
	assert.True(t, groups[1].Refs[0].Shuffled())
	assert.False(t, secs.Textbook[0].InOrder, "Groups must not mutate the decoded sections")

	ref, ok := secs.Find("mcq")
	require.True(t, ok)
	assert.False(t, ref.Shuffled())
	_, ok = secs.Find("hots")
	assert.False(t, ok)
}
