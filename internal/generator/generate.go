package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatGenerator adapts an Eino chat model to the Generator interface. It is
// the single seam between the answering pipeline and any concrete LLM
// backend; everything above it deals only in prompts and plain strings.
type ChatGenerator struct {
	chat    model.BaseChatModel
	backend Backend
}

// NewChatGenerator wraps an already-constructed chat model. Most callers
// should use New or NewFromEnv instead.
func NewChatGenerator(chat model.BaseChatModel, backend Backend) *ChatGenerator {
	return &ChatGenerator{chat: chat, backend: backend}
}

// Backend reports which provider this generator talks to.
func (g *ChatGenerator) Backend() Backend {
	return g.backend
}

// Generate sends the prompt to the underlying chat model and returns the
// trimmed response text. Options are applied per-call so the same generator
// can serve requests with different sampling settings. Any transport or
// model failure, and any empty response, is reported as ErrUnavailable so
// callers can discriminate with errors.Is and fall back.
func (g *ChatGenerator) Generate(ctx context.Context, prompt string, opts *Options) (string, error) {
	var callOpts []model.Option
	if opts != nil {
		if err := opts.Validate(); err != nil {
			return "", err
		}
		if opts.Temperature > 0 {
			callOpts = append(callOpts, model.WithTemperature(opts.Temperature))
		}
		if opts.MaxTokens > 0 {
			callOpts = append(callOpts, model.WithMaxTokens(opts.MaxTokens))
		}
		if opts.TopP > 0 {
			callOpts = append(callOpts, model.WithTopP(opts.TopP))
		}
	}

	msg, err := g.chat.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)}, callOpts...)
	if err != nil {
		return "", fmt.Errorf("%w: %s generate: %v", ErrUnavailable, g.backend, err)
	}
	if msg == nil {
		return "", fmt.Errorf("%w: %s returned no message", ErrUnavailable, g.backend)
	}

	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return "", fmt.Errorf("%w: %s returned an empty response", ErrUnavailable, g.backend)
	}
	return text, nil
}
