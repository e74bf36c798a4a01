// Package budget provides token budget estimation and context trimming for
// the assistant. Because the assistant supports multiple LLM backends with
// different tokenizers, this package uses a conservative character-based
// heuristic: 1 token ≈ 4 characters of English prose. This deliberately
// under-estimates token counts to leave headroom for model-specific overhead.
package budget

import (
	"github.com/docify-online/docify-go/internal/rag"
)

const (
	// charsPerToken is the conservative character-to-token ratio used for
	// estimation. 4 chars/token is standard for English; using 3 would be
	// more aggressive but risks overflowing context windows.
	charsPerToken = 4

	// DefaultMaxContextTokens is the default input context budget in tokens.
	// Conservative enough to fit within 8k-context models (Llama 3 8B,
	// GPT-3.5) while leaving room for the output. Override via
	// Config.MaxContextTokens.
	DefaultMaxContextTokens = 6000
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// TrimDocs drops retrieved documents from the tail of docs until the
// estimated token count of the remaining documents fits within
// maxTokens - reserved. Docs arrive in rank order, so the lowest-scoring
// documents are dropped first and the relative order of survivors is
// preserved. reserved covers everything else in the prompt (framing,
// symptoms, query).
//
// Returns the trimmed slice. If even a single document exceeds the remaining
// budget, an empty slice is returned rather than overflowing the window.
func TrimDocs(docs []rag.Document, reserved, maxTokens int) []rag.Document {
	remaining := maxTokens - reserved
	if remaining <= 0 {
		return nil
	}

	total := 0
	for i, doc := range docs {
		total += Estimate(doc.Content)
		if total > remaining {
			return docs[:i]
		}
	}
	return docs
}
