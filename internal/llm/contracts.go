package llm

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/receipts-extractor/internal/extract"
)

// Capability is what a provider can consume.
type Capability struct {
	Text   bool
	Vision bool
}

// Provider is the uniform interface over interchangeable text-understanding
// oracles. Implementations return explicit errors; the Adapter absorbs them
// into all-absent candidates so nothing below the cascade ever raises.
type Provider interface {
	Name() string
	Capabilities() Capability

	// ExtractFromText sends document text plus the fixed extraction
	// instruction and returns the decoded candidate.
	ExtractFromText(ctx context.Context, text string) (extract.FieldCandidate, error)

	// ExtractFromImage does the same for a rendered page (PNG bytes).
	// Providers without vision capability return an error.
	ExtractFromImage(ctx context.Context, page []byte) (extract.FieldCandidate, error)
}

// Registry is an ordered sequence of configured providers; priority is list
// order. An empty registry is valid and degrades the cascade to
// heuristic-only.
type Registry struct {
	providers []Provider
}

func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

func (r *Registry) Providers() []Provider {
	if r == nil {
		return nil
	}
	return r.providers
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.providers)
}

func (r *Registry) Names() []string {
	names := make([]string, 0, r.Len())
	for _, p := range r.Providers() {
		names = append(names, p.Name())
	}
	return names
}

// LogRegistry records which providers made it into the registry at startup.
func LogRegistry(r *Registry, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	if r.Len() == 0 {
		logger.Warn("llm.registry.empty", "hint", "no provider credentials configured; cascade is heuristic-only")
		return
	}
	logger.Info("llm.registry.ready", "providers", r.Names())
}
