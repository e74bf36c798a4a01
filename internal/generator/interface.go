// Package generator defines the Generator interface and factory for
// selecting and constructing LLM backend implementations at runtime.
// Supported backends: Ollama (local inference server), OpenAI, Azure OpenAI,
// Google Gemini, and Ark-style OpenAI-compatible endpoints.
//
// The assistant treats the generator as the best-effort top tier: any
// backend failure is reported as ErrUnavailable and answered from a lower
// tier instead of failing the request.
package generator

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable indicates the generation backend could not be reached,
// timed out, or returned an empty/degenerate body. It is the signal for the
// assistant to degrade to a lower tier, never an unhandled fault.
var ErrUnavailable = errors.New("generator: backend unavailable")

// ErrInvalidOptions indicates out-of-range generation parameters. This is a
// configuration error, detected before any backend call.
var ErrInvalidOptions = errors.New("generator: invalid generation options")

// Backend enumerates the supported LLM inference providers.
type Backend string

const (
	// BackendOllama selects a locally running Ollama instance.
	BackendOllama Backend = "ollama"
	// BackendOpenAI selects the OpenAI API.
	BackendOpenAI Backend = "openai"
	// BackendAzure selects Azure OpenAI Service.
	BackendAzure Backend = "azure"
	// BackendGemini selects Google Gemini via AI Studio.
	BackendGemini Backend = "gemini"
	// BackendArk selects an Ark/Volcano OpenAI-compatible endpoint.
	BackendArk Backend = "ark"
)

// Options holds per-call generation parameters. Zero values take
// backend-specific defaults.
type Options struct {
	// Temperature controls response randomness, in [0, 2].
	Temperature float32

	// MaxTokens caps the number of tokens generated per response; must be
	// positive when set.
	MaxTokens int

	// TopP is the nucleus sampling threshold, in [0, 1].
	TopP float32
}

// Validate checks every set option against its documented range.
func (o *Options) Validate() error {
	if o == nil {
		return nil
	}
	if o.Temperature < 0 || o.Temperature > 2 {
		return fmt.Errorf("%w: temperature %v not in [0, 2]", ErrInvalidOptions, o.Temperature)
	}
	if o.MaxTokens < 0 {
		return fmt.Errorf("%w: max_tokens %d must be > 0", ErrInvalidOptions, o.MaxTokens)
	}
	if o.TopP < 0 || o.TopP > 1 {
		return fmt.Errorf("%w: top_p %v not in [0, 1]", ErrInvalidOptions, o.TopP)
	}
	return nil
}

// Generator produces a completion for a fully assembled prompt.
// Implementations must be safe to call from multiple goroutines.
type Generator interface {
	// Generate returns the backend's completion for prompt, trimmed of
	// surrounding whitespace and guaranteed non-empty on success.
	Generate(ctx context.Context, prompt string, opts *Options) (string, error)
}
