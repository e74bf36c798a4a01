package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/docify-online/docify-go/internal/rag"
	"github.com/docify-online/docify-go/internal/splitter"
)

// Options configures BuildOrLoad.
type Options struct {
	// CorpusPath is the UTF-8 plain-text corpus file.
	CorpusPath string

	// IndexPath is where the persisted index lives (or will be written).
	IndexPath string

	// ChunkSize is the maximum chunk length in bytes. Defaults to 200,
	// matching the corpus chunking the FAQ data was tuned for.
	ChunkSize int

	// ChunkOverlap is the shared byte count between neighbouring chunks.
	// Defaults to 50.
	ChunkOverlap int

	// Embedder produces the chunk and query vectors.
	Embedder rag.Embedder

	// ExpectDim is the embedder's output dimension, used to reject a
	// persisted index built with a different model. 0 skips the check.
	ExpectDim int

	// Logger receives build/load progress. Defaults to slog.Default.
	Logger *slog.Logger
}

// BuildOrLoad implements the build-once/load-many policy: if a persisted
// index exists at IndexPath it is loaded; otherwise the corpus is read,
// chunked, embedded, and the result persisted before returning. A corrupt or
// dimension-incompatible persisted index triggers a rebuild from the corpus.
//
// Corpus-content changes after the first build are not detected; operators
// invalidate a stale index by deleting the file at IndexPath.
func BuildOrLoad(ctx context.Context, opts Options) (*Index, error) {
	if opts.CorpusPath == "" {
		return nil, fmt.Errorf("index: corpus path must not be empty")
	}
	if opts.IndexPath == "" {
		return nil, fmt.Errorf("index: index path must not be empty")
	}
	if opts.Embedder == nil {
		return nil, fmt.Errorf("index: embedder must not be nil")
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 200
	}
	if opts.ChunkOverlap <= 0 {
		opts.ChunkOverlap = 50
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	idx, err := Load(opts.IndexPath, opts.ExpectDim)
	if err == nil {
		log.Info("index: loaded persisted index",
			slog.String("path", opts.IndexPath),
			slog.Int("chunks", idx.Len()),
			slog.Int("dimension", idx.Dimension()),
		)
		return idx, nil
	}

	switch {
	case errors.Is(err, ErrNotFound):
		log.Info("index: no persisted index, building from corpus",
			slog.String("corpus", opts.CorpusPath),
		)
	case errors.Is(err, ErrCorrupt):
		log.Warn("index: persisted index unusable, rebuilding from corpus",
			slog.String("path", opts.IndexPath),
			slog.Any("error", err),
		)
	default:
		return nil, err
	}

	idx, err = buildFromCorpus(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := idx.Persist(opts.IndexPath); err != nil {
		// A failed persist is not fatal for this process; the next start
		// pays the build cost again.
		log.Warn("index: failed to persist freshly built index",
			slog.String("path", opts.IndexPath),
			slog.Any("error", err),
		)
	} else {
		log.Info("index: built and persisted",
			slog.String("path", opts.IndexPath),
			slog.Int("chunks", idx.Len()),
		)
	}

	return idx, nil
}

// buildFromCorpus reads, chunks, and embeds the corpus file.
func buildFromCorpus(ctx context.Context, opts Options) (*Index, error) {
	raw, err := os.ReadFile(opts.CorpusPath)
	if err != nil {
		return nil, fmt.Errorf("index: reading corpus %s: %w", opts.CorpusPath, err)
	}

	chunks, err := splitter.Split(string(raw), opts.ChunkSize, opts.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("index: chunking corpus: %w", err)
	}

	return Build(ctx, opts.CorpusPath, chunks, opts.Embedder)
}

// Handle owns the live Index reference for a process. The first Get builds
// or loads the index exactly once (concurrent callers wait for the single
// winner); Rebuild constructs a fresh index and swaps the reference
// atomically so concurrent searches never observe a partial update.
type Handle struct {
	// opts are the build/load parameters, fixed at construction.
	opts Options

	// once guards the initial build/load.
	once sync.Once

	// initErr records the first build/load failure for replay to all callers.
	initErr error

	// current holds the live index after a successful init or rebuild.
	current atomic.Pointer[Index]
}

// NewHandle constructs a Handle; no work happens until the first Get.
func NewHandle(opts Options) *Handle {
	return &Handle{opts: opts}
}

// Get returns the live index, building or loading it on first use.
func (h *Handle) Get(ctx context.Context) (*Index, error) {
	h.once.Do(func() {
		idx, err := BuildOrLoad(ctx, h.opts)
		if err != nil {
			h.initErr = err
			return
		}
		h.current.Store(idx)
	})
	if h.initErr != nil {
		return nil, h.initErr
	}
	return h.current.Load(), nil
}

// Rebuild discards the persisted index, builds a fresh one from the corpus,
// persists it, and swaps it in. In-flight searches keep using the old index
// until they complete.
func (h *Handle) Rebuild(ctx context.Context) (*Index, error) {
	idx, err := buildFromCorpus(ctx, h.opts)
	if err != nil {
		return nil, err
	}
	if err := idx.Persist(h.opts.IndexPath); err != nil {
		return nil, err
	}
	h.current.Store(idx)
	return idx, nil
}

// Search delegates to the live index, initializing it on first use. Handle
// itself satisfies rag.VectorStore so a retriever can be wired before the
// index has been built.
func (h *Handle) Search(ctx context.Context, queryVec []float32, topK int) ([]rag.Document, error) {
	idx, err := h.Get(ctx)
	if err != nil {
		return nil, err
	}
	return idx.Search(ctx, queryVec, topK)
}

// Upsert is unsupported, matching the underlying read-only index.
func (h *Handle) Upsert(ctx context.Context, docs []rag.Document, vecs [][]float32) error {
	idx, err := h.Get(ctx)
	if err != nil {
		return err
	}
	return idx.Upsert(ctx, docs, vecs)
}

// Delete is unsupported, matching the underlying read-only index.
func (h *Handle) Delete(ctx context.Context, ids []string) error {
	idx, err := h.Get(ctx)
	if err != nil {
		return err
	}
	return idx.Delete(ctx, ids)
}

// Close is a no-op; the underlying index holds no external resources.
func (h *Handle) Close() error { return nil }
