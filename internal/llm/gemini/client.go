package gemini

import (
	"context"
	"encoding/base64"
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

const providerName = "gemini"

// Config for the Gemini client.
type Config struct {
	APIKey  string        // if empty, falls back to env GEMINI_API_KEY
	BaseURL string        // default https://generativelanguage.googleapis.com
	Model   string        // e.g. "gemini-1.5-flash"
	Timeout time.Duration // http client timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
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

func (c *Client) Capabilities() llm.Capability {
	return llm.Capability{Text: true, Vision: true}
}

// ExtractFromText implements llm.Provider via generateContent.
func (c *Client) ExtractFromText(ctx context.Context, text string) (extract.FieldCandidate, error) {
	parts := []map[string]any{
		{"text": llm.ExtractionInstruction + text},
	}
	return c.generate(ctx, parts, "text")
}

// ExtractFromImage implements llm.Provider; the rendered page travels as
// inline base64 data.
func (c *Client) ExtractFromImage(ctx context.Context, page []byte) (extract.FieldCandidate, error) {
	parts := []map[string]any{
		{"text": llm.VisionInstruction},
		{"inline_data": map[string]any{
			"mime_type": "image/png",
			"data":      base64.StdEncoding.EncodeToString(page),
		}},
	}
	return c.generate(ctx, parts, "vision")
}

func (c *Client) generate(ctx context.Context, parts []map[string]any, mode string) (extract.FieldCandidate, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("gemini.extract.start", "req_id", rid, "mode", mode, "model", c.cfg.Model)

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model, c.cfg.APIKey)
	body := map[string]any{
		"contents": []map[string]any{
			{"parts": parts},
		},
	}

	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, nil, c.logger)
	if err != nil {
		return extract.FieldCandidate{}, fmt.Errorf("gemini %s call: %w", mode, err)
	}

	var gc struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &gc); err != nil {
		return extract.FieldCandidate{}, fmt.Errorf("decode gemini response: %w", err)
	}
	if len(gc.Candidates) == 0 || len(gc.Candidates[0].Content.Parts) == 0 {
		return extract.FieldCandidate{}, fmt.Errorf("no candidates in gemini response")
	}

	// Gemini habitually wraps JSON in a ```json fence; DecodeCandidate strips it.
	cand, err := llm.DecodeCandidate([]byte(gc.Candidates[0].Content.Parts[0].Text))
	if err != nil {
		return extract.FieldCandidate{}, fmt.Errorf("gemini reply: %w", err)
	}

	c.logger.Info("gemini.extract.ok",
		"req_id", rid,
		"mode", mode,
		"empty", cand.IsEmpty(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return cand, nil
}
