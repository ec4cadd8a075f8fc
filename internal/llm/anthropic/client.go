package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipts-extractor/internal/extract"
	"github.com/joseph-ayodele/receipts-extractor/internal/llm"
)

const (
	providerName = "anthropic"
	apiVersion   = "2023-06-01"
)

// Config for the Anthropic client.
type Config struct {
	APIKey  string        // if empty, falls back to env ANTHROPIC_API_KEY
	BaseURL string        // default https://api.anthropic.com
	Model   string        // e.g. "claude-3-haiku-20240307"
	Timeout time.Duration // http client timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-haiku-20240307"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (c *Client) Name() string { return providerName }

// Capabilities: text only. There is no vision path for this provider, so
// the cascade never routes a rendered page here.
func (c *Client) Capabilities() llm.Capability {
	return llm.Capability{Text: true}
}

// ExtractFromText implements llm.Provider via the messages API.
func (c *Client) ExtractFromText(ctx context.Context, text string) (extract.FieldCandidate, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("anthropic.extract.start", "req_id", rid, "model", c.cfg.Model)

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/messages"
	headers := map[string]string{
		"x-api-key":         c.cfg.APIKey,
		"anthropic-version": apiVersion,
	}
	body := map[string]any{
		"model":      c.cfg.Model,
		"max_tokens": 500,
		"messages": []map[string]any{
			{"role": "user", "content": llm.ExtractionInstruction + text},
		},
	}

	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		return extract.FieldCandidate{}, fmt.Errorf("anthropic call: %w", err)
	}

	var mr struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &mr); err != nil {
		return extract.FieldCandidate{}, fmt.Errorf("decode anthropic response: %w", err)
	}
	if len(mr.Content) == 0 {
		return extract.FieldCandidate{}, fmt.Errorf("no content in anthropic response")
	}

	cand, err := llm.DecodeCandidate([]byte(mr.Content[0].Text))
	if err != nil {
		return extract.FieldCandidate{}, fmt.Errorf("anthropic reply: %w", err)
	}

	c.logger.Info("anthropic.extract.ok",
		"req_id", rid,
		"empty", cand.IsEmpty(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return cand, nil
}

// ExtractFromImage is unsupported; Capabilities() keeps it unreachable from
// the cascade.
func (c *Client) ExtractFromImage(_ context.Context, _ []byte) (extract.FieldCandidate, error) {
	return extract.FieldCandidate{}, fmt.Errorf("anthropic: vision extraction not supported")
}
