package pipeline

import (
	"log/slog"

	"github.com/joseph-ayodele/receipts-extractor/internal/common"
	"github.com/joseph-ayodele/receipts-extractor/internal/llm"
	"github.com/joseph-ayodele/receipts-extractor/internal/llm/anthropic"
	"github.com/joseph-ayodele/receipts-extractor/internal/llm/gemini"
	"github.com/joseph-ayodele/receipts-extractor/internal/llm/openai"
)

// BuildRegistry assembles the provider registry from configured credentials
// at startup. Priority is fixed: OpenAI, then Gemini, then Anthropic. A
// provider without an API key is excluded up front; missing configuration
// is not a runtime error, the provider simply never appears in the cascade.
func BuildRegistry(cfg common.ProvidersConfig, logger *slog.Logger) *llm.Registry {
	if logger == nil {
		logger = slog.Default()
	}

	var providers []llm.Provider
	if cfg.OpenAI.APIKey != "" {
		providers = append(providers, openai.NewClient(openai.Config{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.OpenAI.Model,
			Temperature: cfg.OpenAI.Temperature,
			Timeout:     cfg.OpenAI.Timeout,
		}, logger))
	}
	if cfg.Gemini.APIKey != "" {
		providers = append(providers, gemini.NewClient(gemini.Config{
			APIKey:  cfg.Gemini.APIKey,
			BaseURL: cfg.Gemini.BaseURL,
			Model:   cfg.Gemini.Model,
			Timeout: cfg.Gemini.Timeout,
		}, logger))
	}
	if cfg.Anthropic.APIKey != "" {
		providers = append(providers, anthropic.NewClient(anthropic.Config{
			APIKey:  cfg.Anthropic.APIKey,
			BaseURL: cfg.Anthropic.BaseURL,
			Model:   cfg.Anthropic.Model,
			Timeout: cfg.Anthropic.Timeout,
		}, logger))
	}

	reg := llm.NewRegistry(providers...)
	llm.LogRegistry(reg, logger)
	return reg
}
