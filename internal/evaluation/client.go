package evaluation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// Client calls a remote evaluation endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	log      zerolog.Logger
}

// NewClient returns a client for endpoint (e.g. https://host/api/evaluate).
// A nil httpClient uses a client with a 30 second timeout.
func NewClient(endpoint string, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		endpoint: endpoint,
		http:     httpClient,
		log:      log.With().Str("component", "evaluation").Logger(),
	}
}

type envelope struct {
	Success    bool            `json:"success"`
	Evaluation json.RawMessage `json:"evaluation"`
	Error      string          `json:"error"`
	Message    string          `json:"message"`
}

func (c *Client) Evaluate(ctx context.Context, req Request) (Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Fallback(), fmt.Errorf("encode evaluation request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Fallback(), fmt.Errorf("build evaluation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Warn().Err(err).Msg("evaluation request failed")
		return Fallback(), fmt.Errorf("evaluation request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return Fallback(), fmt.Errorf("read evaluation response: %w", err)
	}

	var env envelope
	isJSON := json.Unmarshal(data, &env) == nil

	if resp.StatusCode >= 300 {
		msg := env.Error
		if env.Message != "" {
			msg += ": " + env.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		c.log.Warn().Int("status", resp.StatusCode).Str("error", msg).Msg("evaluation service error")
		return Fallback(), fmt.Errorf("evaluation service returned %d: %s", resp.StatusCode, msg)
	}

	switch {
	case !isJSON:
		// Upstream answered with plain text; show it as-is.
		return ParseResult(data), nil
	case len(env.Evaluation) > 0:
		return ParseResult(env.Evaluation), nil
	default:
		return ParseResult(data), nil
	}
}
