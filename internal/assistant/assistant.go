// Package assistant implements the tiered answering pipeline for the Docify
// chatbot. Every query is answered by the best tier currently available:
// LLM generation grounded on retrieved context, then raw retrieved excerpts,
// then the rule-based FAQ table. The pipeline never returns an error for a
// well-formed query; degraded tiers are reported in the answer, not as
// failures.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/docify-online/docify-go/internal/budget"
	"github.com/docify-online/docify-go/internal/faq"
	"github.com/docify-online/docify-go/internal/generator"
	"github.com/docify-online/docify-go/internal/logging"
	"github.com/docify-online/docify-go/internal/rag"
)

// ErrEmptyQuery indicates the caller submitted a blank or whitespace-only
// query. This is the only error Answer returns.
var ErrEmptyQuery = errors.New("assistant: query must not be empty")

// Tier identifies which level of the pipeline produced an answer.
type Tier int

const (
	// TierGenerator is the top tier: an LLM completion grounded on
	// retrieved context.
	TierGenerator Tier = iota
	// TierRetrieval is the middle tier: retrieved excerpts returned
	// directly, with no model in the loop.
	TierRetrieval
	// TierRules is the bottom tier: the offline keyword FAQ table.
	TierRules
)

// String returns the tier's wire name, used in API responses, logs, and
// metric labels.
func (t Tier) String() string {
	switch t {
	case TierGenerator:
		return "generator"
	case TierRetrieval:
		return "retrieval"
	case TierRules:
		return "rules"
	default:
		return "unknown"
	}
}

// Answer is the result of a single query.
type Answer struct {
	// Text is the reply shown to the user. Always non-empty.
	Text string

	// Tier records which pipeline level produced Text.
	Tier Tier

	// Fallback is true when a tier below the best-configured one answered.
	Fallback bool
}

// Config holds the dependencies and tuning knobs for an Assistant.
type Config struct {
	// Retriever supplies context documents. May be nil, in which case the
	// generator runs ungrounded and the middle tier is skipped.
	Retriever rag.Retriever

	// Generator is the top-tier LLM adapter. May be nil to run
	// retrieval-only (useful for offline deployments and tests).
	Generator generator.Generator

	// TopK is the number of documents retrieved per query. Defaults to 3.
	TopK int

	// GenerateTimeout bounds each generator call. Defaults to 30s.
	GenerateTimeout time.Duration

	// RetrieveTimeout bounds each retrieval call. Defaults to 10s.
	RetrieveTimeout time.Duration

	// MaxContextTokens is the estimated token budget for the assembled
	// prompt. Retrieved documents are trimmed lowest-ranked-first to fit.
	// Defaults to budget.DefaultMaxContextTokens.
	MaxContextTokens int

	// GenOptions are the sampling parameters passed to the generator.
	// May be nil for backend defaults.
	GenOptions *generator.Options
}

// Assistant answers user queries through the tiered pipeline.
type Assistant struct {
	retriever        rag.Retriever
	generator        generator.Generator
	topK             int
	generateTimeout  time.Duration
	retrieveTimeout  time.Duration
	maxContextTokens int
	genOptions       *generator.Options
}

// New constructs an Assistant. Both the retriever and the generator are
// optional; with neither configured every query is answered by the FAQ tier.
func New(cfg *Config) *Assistant {
	topK := cfg.TopK
	if topK <= 0 {
		topK = 3
	}
	genTimeout := cfg.GenerateTimeout
	if genTimeout <= 0 {
		genTimeout = 30 * time.Second
	}
	retTimeout := cfg.RetrieveTimeout
	if retTimeout <= 0 {
		retTimeout = 10 * time.Second
	}
	maxCtx := cfg.MaxContextTokens
	if maxCtx <= 0 {
		maxCtx = budget.DefaultMaxContextTokens
	}
	return &Assistant{
		retriever:        cfg.Retriever,
		generator:        cfg.Generator,
		topK:             topK,
		generateTimeout:  genTimeout,
		retrieveTimeout:  retTimeout,
		maxContextTokens: maxCtx,
		genOptions:       cfg.GenOptions,
	}
}

// Answer runs the query through the pipeline and returns the best available
// answer. The only error condition is a blank query; every infrastructure
// failure inside the pipeline degrades to a lower tier instead.
func (a *Assistant) Answer(ctx context.Context, query, symptoms string) (*Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	log := logging.FromContext(ctx)

	// Retrieve once; both upper tiers share the result.
	docs := a.retrieve(ctx, query, log)

	if a.generator != nil {
		if text, err := a.generate(ctx, query, symptoms, docs); err == nil {
			return &Answer{Text: text, Tier: TierGenerator}, nil
		} else {
			log.Warn("generation failed, degrading to retrieval tier",
				slog.Any("error", err))
		}
	}

	if len(docs) > 0 {
		return &Answer{
			Text:     formatDocs(docs),
			Tier:     TierRetrieval,
			Fallback: a.generator != nil,
		}, nil
	}

	reply, rule := faq.MatchRule(query)
	log.Info("answered from FAQ rules", slog.String("rule", rule))
	return &Answer{
		Text:     reply,
		Tier:     TierRules,
		Fallback: a.generator != nil || a.retriever != nil,
	}, nil
}

// retrieve fetches context documents for the query, trimmed to the token
// budget. Any failure is logged and treated as an empty result.
func (a *Assistant) retrieve(ctx context.Context, query string, log *slog.Logger) []rag.Document {
	if a.retriever == nil {
		return nil
	}
	rctx, cancel := context.WithTimeout(ctx, a.retrieveTimeout)
	defer cancel()

	docs, err := a.retriever.Retrieve(rctx, query, a.topK)
	if err != nil {
		log.Warn("retrieval failed, continuing without context", slog.Any("error", err))
		return nil
	}

	reserved := budget.Estimate(generator.BuildPrompt(query, "", nil))
	trimmed := budget.TrimDocs(docs, reserved, a.maxContextTokens)
	if dropped := len(docs) - len(trimmed); dropped > 0 {
		log.Warn("dropped context documents to fit token budget",
			slog.Int("dropped", dropped),
			slog.Int("retained", len(trimmed)),
			slog.Int("max_tokens", a.maxContextTokens),
		)
	}
	return trimmed
}

// generate runs the top tier under its own timeout.
func (a *Assistant) generate(ctx context.Context, query, symptoms string, docs []rag.Document) (string, error) {
	gctx, cancel := context.WithTimeout(ctx, a.generateTimeout)
	defer cancel()

	prompt := generator.BuildPrompt(query, symptoms, docs)
	return a.generator.Generate(gctx, prompt, a.genOptions)
}

// formatDocs renders retrieved documents as a numbered excerpt list, the
// middle-tier reply when no model is available.
func formatDocs(docs []rag.Document) string {
	var sb strings.Builder
	for i, doc := range docs {
		fmt.Fprintf(&sb, "Doc %d: %s\n%s\n", i+1, doc.Content, strings.Repeat("-", 50))
	}
	return strings.TrimRight(sb.String(), "\n")
}
