package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipts-extractor/internal/extract"
	"github.com/joseph-ayodele/receipts-extractor/internal/llm"
)

const providerName = "openai"

func (c *Client) Name() string { return providerName }

func (c *Client) Capabilities() llm.Capability {
	return llm.Capability{Text: true, Vision: true}
}

// ExtractFromText implements llm.Provider using chat/completions.
func (c *Client) ExtractFromText(ctx context.Context, text string) (extract.FieldCandidate, error) {
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"max_tokens":      500,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": "You are a receipt data extraction expert. Extract information accurately and return only valid JSON."},
			{"role": "user", "content": llm.ExtractionInstruction + text},
		},
	}
	return c.complete(ctx, body, "text")
}

// ExtractFromImage implements llm.Provider using a vision message with the
// rendered page attached as a base64 data URL.
func (c *Client) ExtractFromImage(ctx context.Context, page []byte) (extract.FieldCandidate, error) {
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(page)
	body := map[string]any{
		"model":      c.cfg.Model,
		"max_tokens": 500,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": llm.VisionInstruction},
					{"type": "image_url", "image_url": map[string]any{"url": dataURL}},
				},
			},
		},
	}
	return c.complete(ctx, body, "vision")
}

func (c *Client) complete(ctx context.Context, body map[string]any, mode string) (extract.FieldCandidate, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("openai.extract.start", "req_id", rid, "mode", mode, "model", c.cfg.Model)

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		return extract.FieldCandidate{}, fmt.Errorf("openai %s call: %w", mode, err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return extract.FieldCandidate{}, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return extract.FieldCandidate{}, fmt.Errorf("no choices in openai response")
	}

	cand, err := llm.DecodeCandidate([]byte(cc.Choices[0].Message.Content))
	if err != nil {
		return extract.FieldCandidate{}, fmt.Errorf("openai reply: %w", err)
	}

	c.logger.Info("openai.extract.ok",
		"req_id", rid,
		"mode", mode,
		"empty", cand.IsEmpty(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return cand, nil
}
