package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aniquiz/aniquiz/internal/evaluation"
	"github.com/aniquiz/aniquiz/internal/llm"
	"github.com/aniquiz/aniquiz/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the answer evaluation endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = rt.cfg.EvaluatorAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		provider, ok, err := llm.NewProviderFromEnv(ctx, rt.store.EventRepo(), rt.log)
		if err != nil {
			return fmt.Errorf("LLM provider: %w", err)
		}
		if !ok {
			return errors.New("no LLM provider configured: set ANIQUIZ_LLM_PROVIDER and its API key")
		}
		eval := evaluation.NewLLMEvaluator(provider, evaluation.DefaultLLMConfig(), rt.log)

		srv := &http.Server{
			Addr:              addr,
			Handler:           server.New(eval, server.Options{AllowedOrigins: rt.cfg.AllowedOrigins}, rt.log),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errc := make(chan error, 1)
		go func() {
			rt.log.Info().Str("addr", addr).Str("model", provider.ModelID()).Msg("evaluator listening")
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		rt.log.Info().Msg("shutting down evaluator")
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides ANIQUIZ_EVALUATOR_ADDR)")
}
