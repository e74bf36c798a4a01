// Package index implements the file-backed local vector index: an in-memory
// set of chunk embeddings with exact cosine similarity search, persisted to a
// single gob file. It is the default vector store for single-host
// deployments; Qdrant (internal/rag) is the remote alternative.
//
// Lifecycle follows a build-once/load-many policy: BuildOrLoad loads the
// persisted index when the file exists and otherwise builds it from the
// corpus file and persists it immediately, so the embedding cost is paid at
// most once per index path.
package index

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/docify-online/docify-go/internal/rag"
	"github.com/docify-online/docify-go/internal/splitter"
)

// ErrNotFound indicates no persisted index exists at the given path.
var ErrNotFound = errors.New("index: no persisted index at path")

// ErrCorrupt indicates the persisted index could not be decoded or does not
// match the current embedder's output dimension. Callers should rebuild from
// the corpus.
var ErrCorrupt = errors.New("index: persisted index is corrupt or incompatible")

// ErrInvalidTopK is returned when Search is called with k <= 0.
var ErrInvalidTopK = errors.New("index: top-k must be positive")

// entry is one embedded chunk held by the index.
type entry struct {
	// Doc carries the chunk text and provenance.
	Doc rag.Document
	// Vector is the chunk embedding, always of the index dimension.
	Vector []float32
}

// Index is an in-memory vector index over corpus chunks. After construction
// (Build or Load) it is read-only and safe for concurrent searches; rebuilds
// produce a new Index that callers swap in atomically via Handle.
type Index struct {
	// entries holds the embedded chunks in corpus order.
	entries []entry

	// dimension is the embedding vector length shared by all entries.
	dimension int

	// source is the corpus file the index was built from.
	source string
}

// persisted is the gob serialization shape. Kept separate from Index so the
// on-disk layout can evolve without leaking into the search path.
type persisted struct {
	Texts        []string
	ChunkIndexes []int
	Vectors      [][]float32
	Dimension    int
	Source       string
}

// Build embeds every chunk with the given embedder and assembles an Index.
// All returned vectors must share one dimension; a ragged result from the
// embedder is reported as an embedding failure.
func Build(ctx context.Context, source string, chunks []splitter.Chunk, embedder rag.Embedder) (*Index, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("index: no chunks to build from (empty corpus?)")
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("index: embedding %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: embedder returned %d vectors for %d chunks",
			rag.ErrEmbeddingUnavailable, len(vectors), len(chunks))
	}

	dim := len(vectors[0])
	idx := &Index{dimension: dim, source: source, entries: make([]entry, 0, len(chunks))}
	for i, c := range chunks {
		if len(vectors[i]) != dim {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, expected %d",
				rag.ErrEmbeddingUnavailable, i, len(vectors[i]), dim)
		}
		idx.entries = append(idx.entries, entry{
			Doc: rag.Document{
				ID:         fmt.Sprintf("%s#%d", source, c.Index),
				Content:    c.Text,
				Source:     source,
				ChunkIndex: c.Index,
			},
			Vector: vectors[i],
		})
	}

	return idx, nil
}

// Len returns the number of embedded chunks in the index.
func (x *Index) Len() int { return len(x.entries) }

// Dimension returns the embedding vector length of the index.
func (x *Index) Dimension() int { return x.dimension }

// Persist serializes the index (vectors, chunk text, dimension) to path.
// The write goes through a temp file and rename so a crash mid-write never
// leaves a truncated index behind.
func (x *Index) Persist(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("index: creating directory for %s: %w", path, err)
	}

	p := persisted{
		Texts:        make([]string, len(x.entries)),
		ChunkIndexes: make([]int, len(x.entries)),
		Vectors:      make([][]float32, len(x.entries)),
		Dimension:    x.dimension,
		Source:       x.source,
	}
	for i, e := range x.entries {
		p.Texts[i] = e.Doc.Content
		p.ChunkIndexes[i] = e.Doc.ChunkIndex
		p.Vectors[i] = e.Vector
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("index: creating %s: %w", tmp, err)
	}
	if err := gob.NewEncoder(f).Encode(&p); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("index: encoding index: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("index: closing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("index: renaming %s: %w", tmp, err)
	}
	return nil
}

// Load deserializes a persisted index from path. expectDim is the current
// embedder's output dimension; a stored dimension that differs means the
// index was built with a different embedding model and is reported as
// ErrCorrupt so the caller rebuilds. Pass expectDim 0 to skip the check.
func Load(path string, expectDim int) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("index: opening %s: %w", path, err)
	}
	defer f.Close()

	var p persisted
	if err := gob.NewDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrCorrupt, path, err)
	}
	if len(p.Texts) != len(p.Vectors) || len(p.Texts) != len(p.ChunkIndexes) {
		return nil, fmt.Errorf("%w: %s has mismatched lengths", ErrCorrupt, path)
	}
	if expectDim > 0 && p.Dimension != expectDim {
		return nil, fmt.Errorf("%w: stored dimension %d does not match embedder dimension %d",
			ErrCorrupt, p.Dimension, expectDim)
	}

	idx := &Index{dimension: p.Dimension, source: p.Source, entries: make([]entry, 0, len(p.Texts))}
	for i := range p.Texts {
		if len(p.Vectors[i]) != p.Dimension {
			return nil, fmt.Errorf("%w: vector %d has wrong dimension", ErrCorrupt, i)
		}
		idx.entries = append(idx.entries, entry{
			Doc: rag.Document{
				ID:         fmt.Sprintf("%s#%d", p.Source, p.ChunkIndexes[i]),
				Content:    p.Texts[i],
				Source:     p.Source,
				ChunkIndex: p.ChunkIndexes[i],
			},
			Vector: p.Vectors[i],
		})
	}
	return idx, nil
}

// Search returns the topK entries most similar to queryVec by cosine
// similarity, ordered by descending score with ties broken by chunk index.
// When the index holds fewer than topK entries all of them are returned.
// The query vector dimension must match the index dimension.
func (x *Index) Search(_ context.Context, queryVec []float32, topK int) ([]rag.Document, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopK, topK)
	}
	if len(queryVec) != x.dimension {
		return nil, fmt.Errorf("index: query dimension %d does not match index dimension %d",
			len(queryVec), x.dimension)
	}

	docs := make([]rag.Document, 0, len(x.entries))
	for _, e := range x.entries {
		d := e.Doc
		d.Score = cosineSimilarity(queryVec, e.Vector)
		docs = append(docs, d)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].Score != docs[j].Score {
			return docs[i].Score > docs[j].Score
		}
		return docs[i].ChunkIndex < docs[j].ChunkIndex
	})

	if topK < len(docs) {
		docs = docs[:topK]
	}
	return docs, nil
}

// Upsert is not supported on the read-only file index; the index is rebuilt
// from the corpus instead. It exists to satisfy rag.VectorStore so the
// retriever works over either backend.
func (x *Index) Upsert(context.Context, []rag.Document, [][]float32) error {
	return fmt.Errorf("index: the local index is immutable; rebuild from the corpus instead")
}

// Delete is not supported on the read-only file index.
func (x *Index) Delete(context.Context, []string) error {
	return fmt.Errorf("index: the local index is immutable; rebuild from the corpus instead")
}

// Close is a no-op; the index holds no external resources once loaded.
func (x *Index) Close() error { return nil }

// cosineSimilarity computes the cosine of the angle between a and b.
// Returns 0 when either vector has zero magnitude.
func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
