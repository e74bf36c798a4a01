// Package rag defines the interfaces for the retrieval side of the Docify
// assistant: vector storage, chunk retrieval, and embedding. Concrete
// implementations (the file-backed local index, Qdrant, the HTTP embedders)
// satisfy these interfaces so the assistant layer never depends on a
// specific backend.
package rag

import (
	"context"
	"errors"
)

// ErrEmbeddingUnavailable indicates the embedding backend could not be
// reached or could not produce vectors. It is distinguishable from a
// malformed-input error so callers can degrade instead of crashing.
var ErrEmbeddingUnavailable = errors.New("rag: embedding backend unavailable")

// ErrRetrieverUnavailable indicates the retrieval subsystem (embedder or
// vector store) is down. An empty-but-successful retrieval never carries
// this error, so callers can tell "nothing relevant" from "subsystem down".
var ErrRetrieverUnavailable = errors.New("rag: retrieval subsystem unavailable")

// Document is a unit of retrieved or stored corpus knowledge.
type Document struct {
	// ID is the unique identifier for this chunk.
	ID string

	// Content is the raw chunk text.
	Content string

	// Source is the corpus file the chunk came from.
	Source string

	// ChunkIndex is the position of the chunk within its source corpus,
	// used as the stable tie-breaker when search scores are equal.
	ChunkIndex int

	// Score is the similarity score assigned during retrieval.
	// Zero value means the score was not computed.
	Score float32
}

// VectorStore persists and searches chunk embeddings.
// Implementations must be safe to call from multiple goroutines.
type VectorStore interface {
	// Upsert stores or updates a batch of documents with their pre-computed
	// embeddings. embeddings[i] is the vector for docs[i].
	Upsert(ctx context.Context, docs []Document, embeddings [][]float32) error

	// Search returns the top-k most similar documents for the query
	// embedding, ordered by descending similarity. When the store holds
	// fewer than k entries all of them are returned.
	Search(ctx context.Context, queryEmbedding []float32, topK int) ([]Document, error)

	// Delete removes documents by their IDs.
	Delete(ctx context.Context, ids []string) error

	// Close releases any resources held by the store.
	Close() error
}

// Embedder converts text into dense vector embeddings.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedQuery embeds a single query string, the common query-time case.
func EmbedQuery(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, ErrEmbeddingUnavailable
	}
	return vecs[0], nil
}

// Retriever is the high-level interface the assistant uses to fetch relevant
// corpus context for a query. It combines embedding and vector search.
// Implementations must be safe to call from multiple goroutines and must not
// mutate store state.
type Retriever interface {
	// Retrieve returns the top-k most relevant documents for the query.
	Retrieve(ctx context.Context, query string, topK int) ([]Document, error)
}
