// Package server exposes answer evaluation over HTTP for browser and remote
// clients of the quiz.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aniquiz/aniquiz/internal/evaluation"
)

const maxBodyBytes = 64 << 10

// Options configures the HTTP handler.
type Options struct {
	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string

	// Timeout bounds a single evaluation. Zero means 60s.
	Timeout time.Duration
}

// Server routes evaluation requests to an Evaluator.
type Server struct {
	eval evaluation.Evaluator
	log  zerolog.Logger
	mux  chi.Router
}

// New builds the router.
//
//	POST /api/evaluate  grade one answer
//	GET  /healthz       liveness
func New(eval evaluation.Evaluator, opts Options, log zerolog.Logger) *Server {
	s := &Server{eval: eval, log: log.With().Str("component", "server").Logger()}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.requestLog, middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeErr(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeErr(w, http.StatusNotFound, "Not found")
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/api/evaluate", s.handleEvaluate)

	s.mux = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type evaluateResp struct {
	Success    bool              `json:"success"`
	Evaluation evaluation.Result `json:"evaluation"`
}

type errResp struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req evaluation.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.UserAnswer) == "" {
		writeErr(w, http.StatusBadRequest, "No answer provided")
		return
	}

	res, err := s.eval.Evaluate(r.Context(), req)
	if err != nil {
		if errors.Is(err, evaluation.ErrNoAnswer) {
			writeErr(w, http.StatusBadRequest, "No answer provided")
			return
		}
		s.log.Error().Err(err).Str("question_type", req.QuestionType).Msg("evaluation failed")
		writeJSON(w, http.StatusInternalServerError, errResp{
			Error:   "Failed to evaluate answer",
			Message: err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, evaluateResp{Success: true, Evaluation: res})
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResp{Error: msg})
}
