package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aniquiz/aniquiz/internal/app"
	"github.com/aniquiz/aniquiz/internal/auth"
	"github.com/aniquiz/aniquiz/internal/config"
	"github.com/aniquiz/aniquiz/internal/content"
	"github.com/aniquiz/aniquiz/internal/evaluation"
	"github.com/aniquiz/aniquiz/internal/ledger"
	"github.com/aniquiz/aniquiz/internal/llm"
	"github.com/aniquiz/aniquiz/internal/logger"
	"github.com/aniquiz/aniquiz/internal/question"
	"github.com/aniquiz/aniquiz/internal/screens"
	"github.com/aniquiz/aniquiz/internal/store"
)

// runtime is what every command opens before doing its work.
type runtime struct {
	cfg     *config.Config
	dbPath  string
	store   *store.Store
	log     zerolog.Logger
	logFile *os.File
}

// openRuntime loads configuration, opens the store and sets up logging.
// With toFile set, logs go to a file next to the database so the
// full-screen UI is not drawn over.
func openRuntime(cmd *cobra.Command, toFile bool) (*runtime, error) {
	cfg := config.Load()
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	rt := &runtime{cfg: cfg, dbPath: dbPath}

	var out io.Writer = os.Stderr
	if toFile {
		f, err := logger.OpenFile(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		rt.logFile = f
		out = f
	}
	rt.log = logger.Setup(cfg.LogLevel, cfg.LogFormat, out)

	st, err := store.Open(dbPath)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt.store = st
	return rt, nil
}

func (rt *runtime) Close() {
	if rt.store != nil {
		_ = rt.store.Close()
	}
	if rt.logFile != nil {
		_ = rt.logFile.Close()
	}
}

// repository picks the question bank: --content, then the configured
// directory, then the configured URL.
func (rt *runtime) repository(cmd *cobra.Command) content.Repository {
	src, _ := cmd.Flags().GetString("content")
	if src == "" {
		src = rt.cfg.ContentDir
	}
	if src == "" {
		src = rt.cfg.ContentURL
	}
	log := rt.log.With().Str("component", "content").Logger()
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return content.NewHTTP(src, &http.Client{Timeout: 20 * time.Second}, log)
	}
	return content.NewDir(src, log)
}

// usersPath defaults to users.json next to the database.
func (rt *runtime) usersPath() string {
	if rt.cfg.UsersFile != "" {
		return rt.cfg.UsersFile
	}
	return filepath.Join(filepath.Dir(rt.dbPath), "users.json")
}

func (rt *runtime) directory() (*auth.Directory, error) {
	dir, err := auth.LoadDirectory(rt.usersPath())
	if err != nil {
		return nil, err
	}
	dir.SetCost(rt.cfg.BcryptCost)
	return dir, nil
}

// signIn authenticates --user, if given. Without it the learner is a guest.
func (rt *runtime) signIn(cmd *cobra.Command) (auth.Provider, error) {
	email, _ := cmd.Flags().GetString("user")
	if email == "" {
		return auth.Anonymous(), nil
	}
	dir, err := rt.directory()
	if err != nil {
		return nil, err
	}
	password, err := readPassword(fmt.Sprintf("Password for %s: ", email))
	if err != nil {
		return nil, err
	}
	id, err := dir.Authenticate(email, password)
	if err != nil {
		return nil, err
	}
	rt.log.Info().Str("user", id.Email).Str("role", string(id.Role)).Msg("signed in")
	return auth.SignedIn(id), nil
}

// readPassword prompts without echo on a terminal and reads one line
// otherwise.
func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// evaluator prefers a remote endpoint and falls back to an in-process LLM
// evaluator. Nil means written-answer feedback is unavailable.
func (rt *runtime) evaluator(ctx context.Context) evaluation.Evaluator {
	if rt.cfg.EvaluatorURL != "" {
		return evaluation.NewClient(rt.cfg.EvaluatorURL, nil, rt.log)
	}
	provider, ok, err := llm.NewProviderFromEnv(ctx, rt.store.EventRepo(), rt.log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
	}
	if !ok {
		rt.log.Debug().Msg("no evaluator configured; answer feedback disabled")
		return nil
	}
	return evaluation.NewLLMEvaluator(provider, evaluation.DefaultLLMConfig(), rt.log)
}

// env assembles the collaborators shared by the TUI and the line-mode quiz.
func (rt *runtime) env(cmd *cobra.Command) (*screens.Env, error) {
	provider, err := rt.signIn(cmd)
	if err != nil {
		return nil, err
	}
	key, id := auth.Resolve(provider, ledger.AnonymousIdentity)

	return &screens.Env{
		Repo:       rt.repository(cmd),
		Normalizer: question.NewNormalizer(nil),
		Ledger:     ledger.New(rt.store.Ledger(), key),
		Identity:   id,
		Evaluator:  rt.evaluator(cmd.Context()),
		BatchSize:  rt.cfg.BatchSize,
		Logger:     rt.log,
	}, nil
}

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	rt, err := openRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	env, err := rt.env(cmd)
	if err != nil {
		return err
	}
	return app.Run(env)
}
