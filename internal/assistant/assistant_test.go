package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/docify-online/docify-go/internal/generator"
	"github.com/docify-online/docify-go/internal/rag"
)

// fakeRetriever returns a scripted document list or error.
type fakeRetriever struct {
	docs  []rag.Document
	err   error
	calls int
}

func (f *fakeRetriever) Retrieve(_ context.Context, _ string, _ int) ([]rag.Document, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

// fakeGenerator returns a scripted completion or error and records prompts.
type fakeGenerator struct {
	reply     string
	err       error
	gotPrompt string
	calls     int
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, _ *generator.Options) (string, error) {
	f.calls++
	f.gotPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

var testDocs = []rag.Document{
	{ID: "faq.txt#2", Content: "Diabetes symptoms include increased thirst, frequent urination, and fatigue.", Score: 0.91},
	{ID: "faq.txt#7", Content: "Docify connects users with certified doctors online.", Score: 0.64},
}

func TestAnswerEmptyQuery(t *testing.T) {
	t.Parallel()

	a := New(&Config{})
	for _, q := range []string{"", "   ", "\n\t"} {
		if _, err := a.Answer(context.Background(), q, ""); !errors.Is(err, ErrEmptyQuery) {
			t.Errorf("Answer(%q) error = %v, want ErrEmptyQuery", q, err)
		}
	}
}

func TestAnswerGeneratorTier(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{reply: "Increased thirst and fatigue are common early signs."}
	ret := &fakeRetriever{docs: testDocs}
	a := New(&Config{Retriever: ret, Generator: gen})

	ans, err := a.Answer(context.Background(), "What are symptoms of diabetes?", "thirsty")
	if err != nil {
		t.Fatalf("Answer() unexpected error: %v", err)
	}
	if ans.Tier != TierGenerator {
		t.Errorf("Tier = %v, want generator", ans.Tier)
	}
	if ans.Fallback {
		t.Error("Fallback = true on the top tier")
	}
	if ans.Text != gen.reply {
		t.Errorf("Text = %q, want generator reply", ans.Text)
	}
	if ret.calls != 1 {
		t.Errorf("retriever called %d times, want 1", ret.calls)
	}
	// The prompt must carry the retrieved context and symptoms.
	if !strings.Contains(gen.gotPrompt, "Diabetes symptoms include") {
		t.Error("prompt missing retrieved context")
	}
	if !strings.Contains(gen.gotPrompt, "thirsty") {
		t.Error("prompt missing symptoms section")
	}
}

func TestAnswerDegradesToRetrieval(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{err: generator.ErrUnavailable}
	ret := &fakeRetriever{docs: testDocs}
	a := New(&Config{Retriever: ret, Generator: gen})

	ans, err := a.Answer(context.Background(), "What are symptoms of diabetes?", "")
	if err != nil {
		t.Fatalf("Answer() unexpected error: %v", err)
	}
	if ans.Tier != TierRetrieval {
		t.Errorf("Tier = %v, want retrieval", ans.Tier)
	}
	if !ans.Fallback {
		t.Error("Fallback = false after generator failure")
	}
	if !strings.Contains(ans.Text, "Doc 1: Diabetes symptoms include") {
		t.Errorf("retrieval reply missing numbered excerpts:\n%s", ans.Text)
	}
	if !strings.Contains(ans.Text, "Doc 2: Docify connects") {
		t.Errorf("retrieval reply missing second excerpt:\n%s", ans.Text)
	}
}

func TestAnswerDegradesToRules(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{err: generator.ErrUnavailable}
	ret := &fakeRetriever{err: rag.ErrRetrieverUnavailable}
	a := New(&Config{Retriever: ret, Generator: gen})

	ans, err := a.Answer(context.Background(), "How do I manage a fever?", "")
	if err != nil {
		t.Fatalf("Answer() unexpected error: %v", err)
	}
	if ans.Tier != TierRules {
		t.Errorf("Tier = %v, want rules", ans.Tier)
	}
	if !ans.Fallback {
		t.Error("Fallback = false on the bottom tier")
	}
	if !strings.Contains(ans.Text, "fever") {
		t.Errorf("rules reply should address fever:\n%s", ans.Text)
	}
}

func TestAnswerRulesHandleNonsense(t *testing.T) {
	t.Parallel()

	// Everything down, query matches no rule: the generic platform reply
	// still comes back rather than an error or an empty string.
	gen := &fakeGenerator{err: errors.New("boom")}
	ret := &fakeRetriever{err: errors.New("boom")}
	a := New(&Config{Retriever: ret, Generator: gen})

	ans, err := a.Answer(context.Background(), "xylophone quantum baseball", "")
	if err != nil {
		t.Fatalf("Answer() unexpected error: %v", err)
	}
	if ans.Tier != TierRules {
		t.Errorf("Tier = %v, want rules", ans.Tier)
	}
	if ans.Text == "" {
		t.Fatal("reply is empty")
	}
	if !strings.Contains(ans.Text, "Docify Online") {
		t.Errorf("generic reply should describe the platform:\n%s", ans.Text)
	}
}

func TestAnswerRetrievalOnlyDeployment(t *testing.T) {
	t.Parallel()

	// No generator configured at all: retrieval is the best tier, so its
	// answers are not fallbacks.
	ret := &fakeRetriever{docs: testDocs}
	a := New(&Config{Retriever: ret})

	ans, err := a.Answer(context.Background(), "What are symptoms of diabetes?", "")
	if err != nil {
		t.Fatalf("Answer() unexpected error: %v", err)
	}
	if ans.Tier != TierRetrieval {
		t.Errorf("Tier = %v, want retrieval", ans.Tier)
	}
	if ans.Fallback {
		t.Error("Fallback = true with no generator configured")
	}
}

func TestAnswerNoDependenciesConfigured(t *testing.T) {
	t.Parallel()

	a := New(&Config{})
	ans, err := a.Answer(context.Background(), "hello", "")
	if err != nil {
		t.Fatalf("Answer() unexpected error: %v", err)
	}
	if ans.Tier != TierRules {
		t.Errorf("Tier = %v, want rules", ans.Tier)
	}
	if ans.Fallback {
		t.Error("Fallback = true with nothing configured above the rules tier")
	}
	if !strings.Contains(ans.Text, "Welcome to Docify Online") {
		t.Errorf("greeting rule should fire for %q:\n%s", "hello", ans.Text)
	}
}

func TestAnswerEmptyRetrievalFallsThrough(t *testing.T) {
	t.Parallel()

	// Retrieval succeeds but finds nothing: with no generator, the rules
	// tier answers and marks the fallback.
	ret := &fakeRetriever{docs: nil}
	a := New(&Config{Retriever: ret})

	ans, err := a.Answer(context.Background(), "hello", "")
	if err != nil {
		t.Fatalf("Answer() unexpected error: %v", err)
	}
	if ans.Tier != TierRules {
		t.Errorf("Tier = %v, want rules", ans.Tier)
	}
	if !ans.Fallback {
		t.Error("Fallback = false when a configured retriever produced nothing")
	}
}

func TestTierString(t *testing.T) {
	t.Parallel()

	cases := map[Tier]string{
		TierGenerator: "generator",
		TierRetrieval: "retrieval",
		TierRules:     "rules",
		Tier(99):      "unknown",
	}
	for tier, want := range cases {
		if got := tier.String(); got != want {
			t.Errorf("Tier(%d).String() = %q, want %q", tier, got, want)
		}
	}
}
