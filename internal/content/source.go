package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/mod/semver"

	"github.com/aniquiz/aniquiz/internal/question"
)

// SupportedVersion is the newest bank format this build understands.
// Banks with a newer major version are still read, with a warning.
const SupportedVersion = "v1.2.0"

// Fetcher returns the bytes of one file of the bank.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// Bank implements Repository on top of a Fetcher.
type Bank struct {
	fetcher Fetcher
	log     zerolog.Logger
}

// NewBank wraps f.
func NewBank(f Fetcher, log zerolog.Logger) *Bank {
	return &Bank{fetcher: f, log: log.With().Str("component", "content").Logger()}
}

// NewHTTP reads the bank from a base URL such as a raw GitHub tree.
func NewHTTP(baseURL string, client *http.Client, log zerolog.Logger) *Bank {
	return NewBank(NewHTTPFetcher(baseURL, client), log)
}

// NewDir reads the bank from a local directory.
func NewDir(dir string, log zerolog.Logger) *Bank {
	return NewBank(FSFetcher{FS: os.DirFS(dir)}, log)
}

type subjectsFile struct {
	Version  string    `json:"version"`
	Subjects []Subject `json:"subjects"`
}

type chaptersFile struct {
	Chapters []Chapter `json:"chapters"`
}

type sectionsFile struct {
	Sections Sections `json:"sections"`
}

type questionsFile struct {
	Questions []question.Raw `json:"questions"`
}

func (b *Bank) ListSubjects(ctx context.Context) ([]Subject, error) {
	var f subjectsFile
	if err := b.decode(ctx, "subjects.json", &f); err != nil {
		return nil, err
	}
	b.checkVersion(f.Version)
	return f.Subjects, nil
}

func (b *Bank) ListChapters(ctx context.Context, subjectKey string) ([]Chapter, error) {
	var f chaptersFile
	if err := b.decode(ctx, path.Join(subjectKey, "chapters.json"), &f); err != nil {
		return nil, err
	}
	return f.Chapters, nil
}

func (b *Bank) ListSections(ctx context.Context, subjectKey, chapterKey string) (Sections, error) {
	var f sectionsFile
	if err := b.decode(ctx, path.Join(subjectKey, chapterKey, "sections.json"), &f); err != nil {
		return Sections{}, err
	}
	return f.Sections, nil
}

func (b *Bank) ListQuestions(ctx context.Context, subjectKey, chapterKey, typeKey string) ([]question.Raw, error) {
	var f questionsFile
	if err := b.decode(ctx, path.Join(subjectKey, chapterKey, typeKey+".json"), &f); err != nil {
		return nil, err
	}
	return f.Questions, nil
}

func (b *Bank) decode(ctx context.Context, name string, v any) error {
	data, err := b.fetcher.Fetch(ctx, name)
	if err != nil {
		b.log.Debug().Err(err).Str("file", name).Msg("fetch failed")
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUnavailable, name, err)
	}
	return nil
}

func (b *Bank) checkVersion(v string) {
	if v == "" {
		return
	}
	if !CompatibleVersion(v) {
		b.log.Warn().Str("version", v).Str("supported", SupportedVersion).Msg("question bank is newer than this build")
	}
}

// CompatibleVersion reports whether a bank declaring version v can be read
// without loss. Unparseable versions are treated as compatible.
func CompatibleVersion(v string) bool {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return true
	}
	return semver.Major(v) == semver.Major(SupportedVersion) ||
		semver.Compare(v, SupportedVersion) < 0
}

// HTTPFetcher fetches bank files relative to a base URL.
type HTTPFetcher struct {
	base   string
	client *http.Client
}

// NewHTTPFetcher returns a fetcher for baseURL. A nil client uses one with a
// 20 second timeout.
func NewHTTPFetcher(baseURL string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTTPFetcher{base: strings.TrimRight(baseURL, "/"), client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	url := f.base + "/" + escapePath(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

func escapePath(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(p, " ", "%20")
	}
	return strings.Join(parts, "/")
}

// FSFetcher reads bank files from a file system.
type FSFetcher struct {
	FS fs.FS
}

func (f FSFetcher) Fetch(_ context.Context, name string) ([]byte, error) {
	return fs.ReadFile(f.FS, name)
}
