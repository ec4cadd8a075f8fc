package constants

import (
	"fmt"
	"strings"
)

// MethodKind identifies which stage of the extraction cascade produced a
// result. The set is closed; anything else is a programming error.
type MethodKind string

const (
	MethodHeuristic    MethodKind = "Heuristic"
	MethodOracleText   MethodKind = "OracleText"
	MethodOracleVision MethodKind = "OracleVision"
	MethodFailed       MethodKind = "Failed"
)

// ExtractionMethod tags an extraction result with the stage that produced it
// and, for oracle stages, the provider name.
type ExtractionMethod struct {
	Kind     MethodKind
	Provider string // set only for OracleText / OracleVision
}

func Heuristic() ExtractionMethod { return ExtractionMethod{Kind: MethodHeuristic} }

func Failed() ExtractionMethod { return ExtractionMethod{Kind: MethodFailed} }

func OracleText(provider string) ExtractionMethod {
	return ExtractionMethod{Kind: MethodOracleText, Provider: provider}
}

func OracleVision(provider string) ExtractionMethod {
	return ExtractionMethod{Kind: MethodOracleVision, Provider: provider}
}

// String renders the stable wire/storage form, e.g. "OracleText:openai".
func (m ExtractionMethod) String() string {
	if m.Provider != "" {
		return string(m.Kind) + ":" + m.Provider
	}
	return string(m.Kind)
}

func (m ExtractionMethod) IsFailed() bool { return m.Kind == MethodFailed }

// ParseExtractionMethod reverses String. Unknown kinds are rejected so that
// invalid tags never propagate out of storage.
func ParseExtractionMethod(s string) (ExtractionMethod, error) {
	kind, provider := s, ""
	if i := strings.IndexByte(s, ':'); i >= 0 {
		kind, provider = s[:i], s[i+1:]
	}
	switch MethodKind(kind) {
	case MethodHeuristic, MethodFailed:
		if provider != "" {
			return ExtractionMethod{}, fmt.Errorf("method %q does not take a provider", kind)
		}
		return ExtractionMethod{Kind: MethodKind(kind)}, nil
	case MethodOracleText, MethodOracleVision:
		if provider == "" {
			return ExtractionMethod{}, fmt.Errorf("method %q requires a provider", kind)
		}
		return ExtractionMethod{Kind: MethodKind(kind), Provider: provider}, nil
	default:
		return ExtractionMethod{}, fmt.Errorf("unknown extraction method: %q", s)
	}
}
